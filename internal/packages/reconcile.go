package packages

import (
	"sort"

	"github.com/ariel-frischer/imagelog/internal/variant"
)

// Groups is the partition of package names produced by Reconcile.
type Groups struct {
	// Common holds packages present in every variant.
	Common []string
	// ByGroup holds, per group name, packages present in every variant of the
	// group that are not already in Common.
	ByGroup map[string][]string
	// Order lists group names in the order they were given.
	Order []string
}

// Reconcile partitions package names into a common set and per-group sets.
//
// A variant's universe is the union of its previous and current package
// names. Variants missing from both snapshots take no part. The common set is
// the intersection of all universes; a group set is the intersection of the
// universes of the group's variants, minus the common set.
func Reconcile(matrix variant.Matrix, prev, curr map[string]Set, groups []variant.Group) Groups {
	universes := make(map[string]map[string]struct{})
	var present variant.Matrix
	for _, v := range matrix {
		p, inPrev := prev[v.Image]
		c, inCurr := curr[v.Image]
		if !inPrev && !inCurr {
			continue
		}
		present = append(present, v)
		universes[v.Image] = union(p, c)
	}

	common := intersect(present, universes, nil)

	out := Groups{
		Common:  sorted(common),
		ByGroup: make(map[string][]string, len(groups)),
	}
	for _, g := range groups {
		out.Order = append(out.Order, g.Name)
		out.ByGroup[g.Name] = sorted(intersect(g.Select(present), universes, common))
	}
	return out
}

func union(sets ...Set) map[string]struct{} {
	u := make(map[string]struct{})
	for _, s := range sets {
		for name := range s {
			u[name] = struct{}{}
		}
	}
	return u
}

// intersect returns the names shared by the universes of every variant in
// vs, leaving out anything in exclude. The first variant seeds the result.
func intersect(vs variant.Matrix, universes map[string]map[string]struct{}, exclude map[string]struct{}) map[string]struct{} {
	result := make(map[string]struct{})
	for i, v := range vs {
		u := universes[v.Image]
		if i == 0 {
			for name := range u {
				if _, skip := exclude[name]; !skip {
					result[name] = struct{}{}
				}
			}
			continue
		}
		for name := range result {
			if _, ok := u[name]; !ok {
				delete(result, name)
			}
		}
	}
	return result
}

func sorted(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
