// Package tags picks the pair of release tags a changelog compares.
package tags

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/fvbommel/sortorder"

	"github.com/ariel-frischer/imagelog/internal/manifest"
)

// StableChannel is the channel whose tags carry no channel prefix.
const StableChannel = "stable"

// excludedSuffix marks patch tags that are never compared.
const excludedSuffix = ".0"

// ErrNotEnoughTags is returned when fewer than two tags qualify.
var ErrNotEnoughTags = errors.New("not enough release tags to compare")

var stablePattern = regexp.MustCompile(`^\d\d\.\d`)

// Pair is the previous and current release of a channel.
type Pair struct {
	Previous string
	Current  string
}

// Pattern returns the tag pattern for a channel.
func Pattern(channel string) *regexp.Regexp {
	if channel == StableChannel {
		return stablePattern
	}
	return regexp.MustCompile(`^` + regexp.QuoteMeta(channel) + `-\d\d\.\d`)
}

// Qualifying returns the tags of the first manifest that match the channel
// pattern, do not end in ".0", and are published for every manifest. The result
// is sorted in release order.
func Qualifying(channel string, manifests []manifest.Manifest) []string {
	if len(manifests) == 0 {
		return nil
	}

	pattern := Pattern(channel)
	var tags []string
	for _, tag := range manifests[0].Tags {
		if strings.HasSuffix(tag, excludedSuffix) || !pattern.MatchString(tag) {
			continue
		}
		if slices.Contains(tags, tag) {
			continue
		}
		if publishedEverywhere(tag, manifests[1:]) {
			tags = append(tags, tag)
		}
	}

	slices.SortFunc(tags, Compare)
	return tags
}

// Select returns the two most recent qualifying tags.
func Select(channel string, manifests []manifest.Manifest) (Pair, error) {
	tags := Qualifying(channel, manifests)
	if len(tags) < 2 {
		return Pair{}, fmt.Errorf("%w: channel %q has %d qualifying tag(s)", ErrNotEnoughTags, channel, len(tags))
	}
	return Pair{Previous: tags[len(tags)-2], Current: tags[len(tags)-1]}, nil
}

// Compare orders tags lexicographically, comparing digit runs numerically,
// so "23.9" sorts before "23.10".
func Compare(a, b string) int {
	switch {
	case a == b:
		return 0
	case sortorder.NaturalLess(a, b):
		return -1
	default:
		return 1
	}
}

func publishedEverywhere(tag string, manifests []manifest.Manifest) bool {
	for _, m := range manifests {
		if !m.HasTag(tag) {
			return false
		}
	}
	return true
}
