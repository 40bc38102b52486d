package generator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ariel-frischer/imagelog/internal/tags"
)

// ErrInvalidTarget is returned for a target that names no channel.
var ErrInvalidTarget = errors.New("invalid target")

// mainBranch is the branch name that releases to the stable channel.
const mainBranch = "main"

var (
	buildSuffix   = regexp.MustCompile(`\.\d{1,2}$`)
	channelPrefix = regexp.MustCompile(`^[a-z]+-`)
)

// NormalizeTarget turns a target argument into a channel name. Git refs such
// as refs/heads/main are reduced to their last segment, and main is an alias
// for stable. An empty argument means stable.
func NormalizeTarget(arg string) (string, error) {
	if arg == "" {
		return tags.StableChannel, nil
	}

	target := arg[strings.LastIndex(arg, "/")+1:]
	if target == "" || strings.ContainsAny(target, " \t\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, arg)
	}
	if target == mainBranch {
		return tags.StableChannel, nil
	}
	return target, nil
}

// PrettyName builds the default title suffix, e.g. "Stable (F41.20241027)"
// or "Testing (F41.20241027, #0123456)". The revision is shown only for
// channels other than stable.
func PrettyName(target, current, revision string) string {
	version := buildSuffix.ReplaceAllString(current, "")
	version = channelPrefix.ReplaceAllString(version, "")

	var b strings.Builder
	b.WriteString(capitalize(target))
	b.WriteString(" (F")
	b.WriteString(version)
	if revision != "" && target != tags.StableChannel {
		b.WriteString(", #")
		b.WriteString(revision[:min(len(revision), 7)])
	}
	b.WriteString(")")
	return b.String()
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
