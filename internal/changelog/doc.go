// Package changelog renders release changelogs for image distributions.
//
// This package implements:
//   - A structured placeholder template model ({field} and {pkgrel:name})
//   - Markdown package tables for the common and per-group diffs
//   - Commit history and upstream base image sections
//   - YAML summaries and a colored terminal preview
//
// The default document template is embedded at build time from
// templates/changelog.md and can be replaced by a file on disk.
package changelog
