// Package packages reads the package list embedded in an image manifest and
// reconciles package listings across image variants.
package packages

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/goccy/go-json"

	"github.com/ariel-frischer/imagelog/internal/manifest"
)

// DefaultLabel is the manifest label carrying the JSON package list.
const DefaultLabel = "dev.hhd.rechunk.info"

// ErrNoPackageLabel is returned when a manifest lacks the package label.
var ErrNoPackageLabel = errors.New("package label not set")

// fedoraSuffix matches the distribution build suffix, e.g. ".fc41".
var fedoraSuffix = regexp.MustCompile(`(?i)\.fc\d\d`)

// Set maps package name to its raw version string.
type Set map[string]string

// Names returns the package names of s in no particular order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

type rechunkInfo struct {
	Packages map[string]string `json:"packages"`
}

// Extract decodes the package list stored in label of m.
func Extract(m manifest.Manifest, label string) (Set, error) {
	raw, ok := m.Label(label)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPackageLabel, label)
	}

	var info rechunkInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", label, err)
	}
	if info.Packages == nil {
		return Set{}, nil
	}
	return Set(info.Packages), nil
}

// Normalize strips distribution build suffixes from a version string.
func Normalize(version string) string {
	return fedoraSuffix.ReplaceAllString(version, "")
}

// Versions merges the sets of several variants into a single normalized
// name -> version view. Sets are applied in order, so a later variant wins
// when two variants disagree.
func Versions(sets []Set) map[string]string {
	versions := make(map[string]string)
	for _, s := range sets {
		for name, v := range s {
			versions[name] = Normalize(v)
		}
	}
	return versions
}
