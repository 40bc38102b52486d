package changelog

import "github.com/ariel-frischer/imagelog/internal/diff"

// Release is the previous and current version of one package.
// Previous is empty when the package is new.
type Release struct {
	Previous string
	Current  string
}

// String renders the release as a single version when the package is
// unchanged or new, and as "previous ➡️ current" otherwise.
func (r Release) String() string {
	if r.Previous == "" || r.Previous == r.Current {
		return r.Current
	}
	return r.Previous + " ➡️ " + r.Current
}

// Releases pairs every package of curr with its version in prev.
func Releases(prev, curr map[string]string) map[string]Release {
	out := make(map[string]Release, len(curr))
	for name, v := range curr {
		out[name] = Release{Previous: prev[name], Current: v}
	}
	return out
}

// Commit is one row of the commit history section.
type Commit struct {
	Hash      string
	ShortHash string
	Author    string
	Subject   string
}

// Section is a titled package diff.
type Section struct {
	// Name identifies the section in summaries, e.g. "common" or a group name.
	Name    string
	Title   string
	Changes diff.Result
}

// Upstream is the base image comparison.
type Upstream struct {
	Image   string
	Tag     string
	Created string
	// Releases feeds the {pkgrel:name} placeholders of the upstream section.
	Releases map[string]Release
	Changes  diff.Result
}

// Content is everything a document is assembled from.
type Content struct {
	Target      string
	Previous    string
	Current     string
	Pretty      string
	Product     string
	Handwritten string
	Commits     []Commit
	Upstream    *Upstream
	Sections    []Section
	Releases    map[string]Release
}

// Document is the rendered changelog.
type Document struct {
	Title    string
	Tag      string
	Previous string
	Channel  string
	Body     string
	Summary  Summary
	// Unresolved lists {pkgrel:name} placeholders left without data.
	Unresolved []string
}

// Summary is the machine-readable digest of a document.
type Summary struct {
	Title    string           `yaml:"title"`
	Tag      string           `yaml:"tag"`
	Previous string           `yaml:"previous"`
	Channel  string           `yaml:"channel"`
	Commits  int              `yaml:"commits,omitempty"`
	Sections []SectionSummary `yaml:"sections,omitempty"`
}

// SectionSummary lists the package names reported by one section.
type SectionSummary struct {
	Name    string   `yaml:"name"`
	Added   []string `yaml:"added,omitempty"`
	Changed []string `yaml:"changed,omitempty"`
	Removed []string `yaml:"removed,omitempty"`
}

// IsEmpty reports whether the section reports no packages.
func (s SectionSummary) IsEmpty() bool {
	return len(s.Added) == 0 && len(s.Changed) == 0 && len(s.Removed) == 0
}

// Count returns the number of reported packages.
func (s SectionSummary) Count() int {
	return len(s.Added) + len(s.Changed) + len(s.Removed)
}
