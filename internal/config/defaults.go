package config

import (
	"github.com/ariel-frischer/imagelog/internal/manifest"
	"github.com/ariel-frischer/imagelog/internal/packages"
	"github.com/ariel-frischer/imagelog/internal/retry"
)

// DefaultAnchors are the major packages of the distribution.
var DefaultAnchors = []string{
	"kernel",
	"mesa-filesystem",
	"gamescope",
	"plasma-desktop",
	"atheros-firmware",
}

// Upstream base image compared by default.
const (
	DefaultUpstreamImage      = "ublue-os/bazzite-deck"
	DefaultUpstreamReleaseURL = "https://github.com/ublue-os/bazzite/releases/tag/{upstream_tag}"
)

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# imagelog configuration
# Precedence: IMAGELOG_* env > .imagelog/config.yml > ~/.config/imagelog/config.yml > defaults

# Images
product: bazzite                      # Base image name; variants derive from it
registry: ghcr.io/ublue-os/           # Prefix for every image name
inspect_command: skopeo inspect       # Prints image metadata as JSON; reference is appended
transport: docker://                  # Added to references without a transport

# Fetching
retries: 3                            # Attempts per manifest (1-20)
retry_delay: 5s                       # Fixed wait between attempts

# Labels
package_label: dev.hhd.rechunk.info   # JSON package list
revision_label: org.opencontainers.image.revision

# Rendering
commit_url: ""                        # e.g. https://github.com/ublue-os/bazzite/commit/
template_path: ""                     # Replaces the embedded document template
anchors:                              # Major packages, reported separately
  - kernel
  - mesa-filesystem
  - gamescope
  - plasma-desktop
  - atheros-firmware

# Variants (default: every base x desktop combination of product)
# variants:
#   - image: bazzite
#     base: desktop                   # desktop | deck | nvidia | nvidia-open
#     desktop: kde                    # kde | gnome

# Upstream base image comparison (set image to "" to disable)
upstream:
  image: ublue-os/bazzite-deck
  registry: ghcr.io/
  channel: ""                         # Empty = same channel as the target
  package_label: dev.hhd.rechunk.info
  release_url: https://github.com/ublue-os/bazzite/releases/tag/{upstream_tag}
  template_path: ""                   # Replaces the embedded upstream section template
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"product":         "bazzite",
		"registry":        "ghcr.io/ublue-os/",
		"inspect_command": manifest.DefaultInspectCommand,
		"transport":       manifest.DefaultTransport,
		"retries":         int(retry.DefaultAttempts),
		// retry_delay: koanf decodes duration strings into time.Duration.
		"retry_delay":    (retry.DefaultDelay).String(),
		"package_label":  packages.DefaultLabel,
		"revision_label": manifest.LabelRevision,
		"commit_url":     "",
		"anchors":        DefaultAnchors,
		"template_path":  "",
		"upstream": map[string]interface{}{
			"image":         DefaultUpstreamImage,
			"registry":      "ghcr.io/",
			"channel":       "",
			"package_label": packages.DefaultLabel,
			"release_url":   DefaultUpstreamReleaseURL,
			"template_path": "",
		},
	}
}
