// Package variant enumerates the published images of the distribution and the
// two axes they are classified by: the hardware base and the desktop environment.
//
// Variants are declared, never derived from registry data. Declaration order is
// significant: the first variant of a matrix is the one whose tag list seeds tag
// selection, and it is the iteration order for every per-variant step.
package variant

import "fmt"

// Base is the hardware target of an image.
type Base string

const (
	// BaseDesktop is the default desktop/laptop image.
	BaseDesktop Base = "desktop"
	// BaseDeck is the handheld image.
	BaseDeck Base = "deck"
	// BaseNvidia ships the proprietary GPU driver.
	BaseNvidia Base = "nvidia"
	// BaseNvidiaOpen ships the open GPU kernel modules.
	BaseNvidiaOpen Base = "nvidia-open"
)

// IsGPUVendor reports whether the base is specific to a GPU vendor.
func (b Base) IsGPUVendor() bool {
	return b == BaseNvidia || b == BaseNvidiaOpen
}

// Desktop is the desktop environment of an image.
type Desktop string

const (
	DesktopKDE   Desktop = "kde"
	DesktopGNOME Desktop = "gnome"
)

// Variant identifies one published image.
type Variant struct {
	Image   string  `koanf:"image"   yaml:"image"   validate:"required"`
	Base    Base    `koanf:"base"    yaml:"base"    validate:"oneof=desktop deck nvidia nvidia-open"`
	Desktop Desktop `koanf:"desktop" yaml:"desktop" validate:"oneof=kde gnome"`
}

func (v Variant) String() string {
	return fmt.Sprintf("%s (%s/%s)", v.Image, v.Base, v.Desktop)
}

// Matrix is an ordered list of variants.
type Matrix []Variant

// Images returns the image names in declaration order.
func (m Matrix) Images() []string {
	images := make([]string, len(m))
	for i, v := range m {
		images[i] = v.Image
	}
	return images
}

// Lookup returns the variant for an image name.
func (m Matrix) Lookup(image string) (Variant, bool) {
	for _, v := range m {
		if v.Image == image {
			return v, true
		}
	}
	return Variant{}, false
}

// Bases lists every base in matrix declaration order.
func Bases() []Base {
	return []Base{BaseDesktop, BaseDeck, BaseNvidia, BaseNvidiaOpen}
}

// Desktops lists every desktop environment in matrix declaration order.
func Desktops() []Desktop {
	return []Desktop{DesktopKDE, DesktopGNOME}
}

// DefaultMatrix builds the full base x desktop matrix for a product name.
// Image names follow the registry convention: product, then "-deck",
// "-gnome" and the GPU vendor suffix when they apply.
func DefaultMatrix(product string) Matrix {
	var m Matrix
	for _, base := range Bases() {
		for _, de := range Desktops() {
			m = append(m, Variant{
				Image:   ImageName(product, base, de),
				Base:    base,
				Desktop: de,
			})
		}
	}
	return m
}

// ImageName returns the registry image name for a variant of product.
func ImageName(product string, base Base, de Desktop) string {
	name := product
	if base == BaseDeck {
		name += "-deck"
	}
	if de == DesktopGNOME {
		name += "-gnome"
	}
	switch base {
	case BaseNvidia:
		name += "-nvidia"
	case BaseNvidiaOpen:
		name += "-nvidia-open"
	}
	return name
}
