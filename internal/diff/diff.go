// Package diff compares two name -> version maps over a package-name universe.
//
// Anchor packages are reported elsewhere (as major packages), and many packages
// are released in lockstep with them. To keep the generic diff readable, any
// package whose version string equals a version already seen is suppressed:
// the seen set starts with the anchors' current versions and grows with the
// previous and current version of every package processed, reported or not.
// The result depends on universe order.
package diff

import "slices"

// Kind classifies a reported package.
type Kind int

const (
	Added Kind = iota
	Changed
	Removed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one reported package.
type Change struct {
	Kind     Kind
	Name     string
	Previous string
	Current  string
}

// Result holds the reported packages grouped by kind, each in universe order.
type Result struct {
	Added   []Change
	Changed []Change
	Removed []Change
}

// IsEmpty reports whether nothing changed.
func (r Result) IsEmpty() bool {
	return len(r.Added) == 0 && len(r.Changed) == 0 && len(r.Removed) == 0
}

// Count returns the number of reported packages.
func (r Result) Count() int {
	return len(r.Added) + len(r.Changed) + len(r.Removed)
}

// Rows returns every change: added first, then changed, then removed.
func (r Result) Rows() []Change {
	rows := make([]Change, 0, r.Count())
	rows = append(rows, r.Added...)
	rows = append(rows, r.Changed...)
	return append(rows, r.Removed...)
}

// Names returns the names of the added, changed and removed packages.
func (r Result) Names() (added, changed, removed []string) {
	return names(r.Added), names(r.Changed), names(r.Removed)
}

func names(cs []Change) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

// Engine computes diffs. The anchor list is fixed for the engine's lifetime.
type Engine struct {
	Anchors []string
}

// NewEngine returns an Engine for the given anchor packages.
func NewEngine(anchors []string) Engine {
	return Engine{Anchors: slices.Clone(anchors)}
}

// IsAnchor reports whether name is an anchor package.
func (e Engine) IsAnchor(name string) bool {
	return slices.Contains(e.Anchors, name)
}

// Compute diffs prev against curr for every name in universe.
func (e Engine) Compute(universe []string, prev, curr map[string]string) Result {
	seen := make(map[string]struct{})
	for _, anchor := range e.Anchors {
		if v, ok := curr[anchor]; ok {
			seen[v] = struct{}{}
		}
	}

	var r Result
	for _, name := range universe {
		if e.IsAnchor(name) {
			continue
		}

		p, inPrev := prev[name]
		c, inCurr := curr[name]
		if inCurr && contains(seen, c) {
			continue
		}
		if inPrev && contains(seen, p) {
			continue
		}

		switch {
		case !inPrev && inCurr:
			r.Added = append(r.Added, Change{Kind: Added, Name: name, Current: c})
		case inPrev && !inCurr:
			r.Removed = append(r.Removed, Change{Kind: Removed, Name: name, Previous: p})
		case inPrev && inCurr && p != c:
			r.Changed = append(r.Changed, Change{Kind: Changed, Name: name, Previous: p, Current: c})
		}

		if inPrev {
			seen[p] = struct{}{}
		}
		if inCurr {
			seen[c] = struct{}{}
		}
	}
	return r
}

func contains(set map[string]struct{}, v string) bool {
	_, ok := set[v]
	return ok
}
