package variant

// Group is a named subset of the matrix whose package differences are reported
// in their own changelog section.
type Group struct {
	Name    string
	Title   string
	Matches func(Variant) bool
}

// Group names, in rendering order.
const (
	GroupDesktop = "desktop"
	GroupDeck    = "deck"
	GroupKDE     = "kde"
	GroupGNOME   = "gnome"
	GroupNvidia  = "nvidia"
)

// DefaultGroups returns the predefined groups in rendering order.
func DefaultGroups() []Group {
	return []Group{
		{
			Name:    GroupDesktop,
			Title:   "Desktop Images",
			Matches: func(v Variant) bool { return v.Base != BaseDeck },
		},
		{
			Name:    GroupDeck,
			Title:   "Deck Images",
			Matches: func(v Variant) bool { return v.Base == BaseDeck },
		},
		{
			Name:    GroupKDE,
			Title:   "KDE Images",
			Matches: func(v Variant) bool { return v.Desktop == DesktopKDE },
		},
		{
			Name:    GroupGNOME,
			Title:   "GNOME Images",
			Matches: func(v Variant) bool { return v.Desktop == DesktopGNOME },
		},
		{
			Name:    GroupNvidia,
			Title:   "Nvidia Images",
			Matches: func(v Variant) bool { return v.Base.IsGPUVendor() },
		},
	}
}

// Select returns the variants of m matching g, in declaration order.
func (g Group) Select(m Matrix) Matrix {
	var out Matrix
	for _, v := range m {
		if g.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}
