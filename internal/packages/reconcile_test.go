package packages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariel-frischer/imagelog/internal/variant"
)

func names(ns ...string) Set {
	s := Set{}
	for _, n := range ns {
		s[n] = "1"
	}
	return s
}

func TestReconcile_TwoVariants(t *testing.T) {
	t.Parallel()

	matrix := variant.Matrix{
		{Image: "a", Base: variant.BaseDesktop, Desktop: variant.DesktopKDE},
		{Image: "b", Base: variant.BaseDeck, Desktop: variant.DesktopKDE},
	}
	onlyB := variant.Group{Name: "only-b", Matches: func(v variant.Variant) bool { return v.Image == "b" }}

	got := Reconcile(matrix,
		map[string]Set{},
		map[string]Set{"a": names("x", "y"), "b": names("x", "z")},
		[]variant.Group{onlyB},
	)

	assert.Equal(t, []string{"x"}, got.Common)
	assert.Equal(t, []string{"z"}, got.ByGroup["only-b"])
	assert.Equal(t, []string{"only-b"}, got.Order)
}

func TestReconcile_UniverseIsUnionOfSnapshots(t *testing.T) {
	t.Parallel()

	matrix := variant.Matrix{
		{Image: "a", Base: variant.BaseDesktop, Desktop: variant.DesktopKDE},
		{Image: "b", Base: variant.BaseDesktop, Desktop: variant.DesktopGNOME},
	}

	got := Reconcile(matrix,
		map[string]Set{"a": names("old", "shared"), "b": names("old", "shared")},
		map[string]Set{"a": names("new", "shared"), "b": names("shared")},
		nil,
	)

	// "old" left both variants, "new" only ever reached a.
	assert.Equal(t, []string{"old", "shared"}, got.Common)
	assert.Empty(t, got.ByGroup)
}

func TestReconcile_DefaultGroups(t *testing.T) {
	t.Parallel()

	matrix := variant.DefaultMatrix("bazzite")
	curr := map[string]Set{}
	for _, v := range matrix {
		s := names("kernel", "mesa")
		if v.Base == variant.BaseDeck {
			s["jupiter-hw-support"] = "1"
		} else {
			s["desktop-only"] = "1"
		}
		if v.Desktop == variant.DesktopKDE {
			s["plasma-desktop"] = "1"
		} else {
			s["gnome-shell"] = "1"
		}
		if v.Base.IsGPUVendor() {
			s["nvidia-driver"] = "1"
		}
		curr[v.Image] = s
	}

	got := Reconcile(matrix, map[string]Set{}, curr, variant.DefaultGroups())

	assert.Equal(t, []string{"kernel", "mesa"}, got.Common)
	assert.Equal(t, []string{"desktop-only"}, got.ByGroup[variant.GroupDesktop])
	assert.Equal(t, []string{"jupiter-hw-support"}, got.ByGroup[variant.GroupDeck])
	assert.Equal(t, []string{"plasma-desktop"}, got.ByGroup[variant.GroupKDE])
	assert.Equal(t, []string{"gnome-shell"}, got.ByGroup[variant.GroupGNOME])
	assert.Equal(t, []string{"desktop-only", "nvidia-driver"}, got.ByGroup[variant.GroupNvidia])
	assert.Equal(t, []string{"desktop", "deck", "kde", "gnome", "nvidia"}, got.Order)
}

func TestReconcile_MissingVariantsIgnored(t *testing.T) {
	t.Parallel()

	matrix := variant.Matrix{
		{Image: "a", Base: variant.BaseDesktop, Desktop: variant.DesktopKDE},
		{Image: "b", Base: variant.BaseDeck, Desktop: variant.DesktopKDE},
		{Image: "c", Base: variant.BaseNvidia, Desktop: variant.DesktopKDE},
	}
	deck := variant.Group{Name: "deck", Matches: func(v variant.Variant) bool { return v.Base == variant.BaseDeck }}
	nvidia := variant.Group{Name: "nvidia", Matches: func(v variant.Variant) bool { return v.Base.IsGPUVendor() }}

	// c failed to extract in both snapshots.
	got := Reconcile(matrix,
		map[string]Set{"a": names("x")},
		map[string]Set{"a": names("x", "y"), "b": names("x", "y", "z")},
		[]variant.Group{deck, nvidia},
	)

	assert.Equal(t, []string{"x", "y"}, got.Common)
	assert.Equal(t, []string{"z"}, got.ByGroup["deck"])
	assert.Empty(t, got.ByGroup["nvidia"], "group without present variants is empty")
	assert.NotNil(t, got.ByGroup["nvidia"])
}

func TestReconcile_NoVariants(t *testing.T) {
	t.Parallel()

	got := Reconcile(variant.DefaultMatrix("bazzite"), nil, nil, variant.DefaultGroups())
	assert.Empty(t, got.Common)
	for _, g := range got.Order {
		assert.Empty(t, got.ByGroup[g])
	}
}

// TestReconcile_Partition checks that the common set and the group sets are
// pairwise disjoint and drawn from the variants' universes.
func TestReconcile_Partition(t *testing.T) {
	t.Parallel()

	matrix := variant.DefaultMatrix("p")
	prev := map[string]Set{}
	curr := map[string]Set{}
	all := map[string]struct{}{}
	for _, v := range matrix {
		p := names("base", "lib"+v.Image)
		c := names("base", "tool"+string(v.Desktop), "drv"+string(v.Base))
		prev[v.Image], curr[v.Image] = p, c
		for n := range p {
			all[n] = struct{}{}
		}
		for n := range c {
			all[n] = struct{}{}
		}
	}

	got := Reconcile(matrix, prev, curr, variant.DefaultGroups())

	seenCommon := map[string]struct{}{}
	for _, n := range got.Common {
		seenCommon[n] = struct{}{}
		assert.Contains(t, all, n)
	}
	for _, g := range got.Order {
		for _, n := range got.ByGroup[g] {
			assert.NotContains(t, seenCommon, n, "group %s overlaps common", g)
			assert.Contains(t, all, n)
		}
	}
	assert.Equal(t, []string{"base"}, got.Common)
	assert.Equal(t, []string{"toolkde"}, got.ByGroup[variant.GroupKDE])
	assert.Equal(t, []string{"drvdeck"}, got.ByGroup[variant.GroupDeck])
}
