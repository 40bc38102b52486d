// Package build provides version and build information for imagelog.
// This package intentionally has no dependencies on other internal packages
// to avoid import cycles.
package build

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	// Version information - set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// IsDevBuild returns true if running a development build (not a release).
func IsDevBuild() bool {
	return Version == "dev"
}

// Info returns the plain multi-line version report printed by --version.
func Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "imagelog %s\n", Version)
	fmt.Fprintf(&b, "commit: %s\n", ShortCommit())
	fmt.Fprintf(&b, "built: %s\n", BuildDate)
	fmt.Fprintf(&b, "go: %s\n", runtime.Version())
	fmt.Fprintf(&b, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return b.String()
}

// ShortCommit truncates the commit hash to 8 characters.
func ShortCommit() string {
	if len(Commit) > 8 {
		return Commit[:8]
	}
	return Commit
}
