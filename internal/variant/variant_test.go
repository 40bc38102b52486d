package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageName(t *testing.T) {
	tests := map[string]struct {
		base Base
		de   Desktop
		want string
	}{
		"desktop kde":       {base: BaseDesktop, de: DesktopKDE, want: "bazzite"},
		"desktop gnome":     {base: BaseDesktop, de: DesktopGNOME, want: "bazzite-gnome"},
		"deck kde":          {base: BaseDeck, de: DesktopKDE, want: "bazzite-deck"},
		"deck gnome":        {base: BaseDeck, de: DesktopGNOME, want: "bazzite-deck-gnome"},
		"nvidia kde":        {base: BaseNvidia, de: DesktopKDE, want: "bazzite-nvidia"},
		"nvidia-open gnome": {base: BaseNvidiaOpen, de: DesktopGNOME, want: "bazzite-gnome-nvidia-open"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ImageName("bazzite", tc.base, tc.de))
		})
	}
}

func TestDefaultMatrix_DeclarationOrder(t *testing.T) {
	t.Parallel()

	m := DefaultMatrix("bazzite")
	require.Len(t, m, len(Bases())*len(Desktops()))

	assert.Equal(t, "bazzite", m[0].Image, "first variant seeds tag selection")
	assert.Equal(t, []string{
		"bazzite",
		"bazzite-gnome",
		"bazzite-deck",
		"bazzite-deck-gnome",
		"bazzite-nvidia",
		"bazzite-gnome-nvidia",
		"bazzite-nvidia-open",
		"bazzite-gnome-nvidia-open",
	}, m.Images())

	v, ok := m.Lookup("bazzite-deck-gnome")
	require.True(t, ok)
	assert.Equal(t, BaseDeck, v.Base)
	assert.Equal(t, DesktopGNOME, v.Desktop)

	_, ok = m.Lookup("missing")
	assert.False(t, ok)
}

func TestDefaultGroups_Select(t *testing.T) {
	t.Parallel()

	m := DefaultMatrix("bazzite")
	counts := map[string]int{}
	for _, g := range DefaultGroups() {
		counts[g.Name] = len(g.Select(m))
	}

	assert.Equal(t, map[string]int{
		GroupDesktop: 6,
		GroupDeck:    2,
		GroupKDE:     4,
		GroupGNOME:   4,
		GroupNvidia:  4,
	}, counts)
}

func TestBase_IsGPUVendor(t *testing.T) {
	t.Parallel()

	assert.False(t, BaseDesktop.IsGPUVendor())
	assert.False(t, BaseDeck.IsGPUVendor())
	assert.True(t, BaseNvidia.IsGPUVendor())
	assert.True(t, BaseNvidiaOpen.IsGPUVendor())
}
