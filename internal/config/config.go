// Package config provides hierarchical configuration management for imagelog using koanf.
// Configuration is loaded with priority: environment variables > project config (.imagelog/config.yml)
// > user config (~/.config/imagelog/config.yml) > defaults. Project configs may also be
// written as JSON (.imagelog/config.json or any --config path ending in .json).
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ariel-frischer/imagelog/internal/variant"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: IMAGELOG_UPSTREAM__IMAGE sets upstream.image.
const EnvPrefix = "IMAGELOG_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the imagelog configuration
type Configuration struct {
	// Product is the base image name; variant names derive from it.
	Product string `koanf:"product" yaml:"product" validate:"required"`
	// Registry is prepended to every downstream image name, e.g. "ghcr.io/ublue-os/".
	Registry string `koanf:"registry" yaml:"registry" validate:"required"`
	// InspectCommand prints an image's registry metadata as JSON when the
	// image reference is appended to it.
	InspectCommand string `koanf:"inspect_command" yaml:"inspect_command" validate:"required"`
	// Transport prefixes references without one, e.g. "docker://".
	Transport string `koanf:"transport" yaml:"transport"`

	Retries    int           `koanf:"retries" yaml:"retries" validate:"min=1,max=20"`
	RetryDelay time.Duration `koanf:"retry_delay" yaml:"retry_delay" validate:"min=0"`

	PackageLabel  string `koanf:"package_label" yaml:"package_label" validate:"required"`
	RevisionLabel string `koanf:"revision_label" yaml:"revision_label" validate:"required"`
	// CommitURL is the prefix commit hashes are appended to; empty disables links.
	CommitURL string `koanf:"commit_url" yaml:"commit_url" validate:"omitempty,url"`

	// Anchors are reported as major packages and seed co-release suppression.
	Anchors []string `koanf:"anchors" yaml:"anchors"`
	// Variants overrides the default image matrix derived from Product.
	Variants []variant.Variant `koanf:"variants" yaml:"variants,omitempty" validate:"dive"`

	Upstream UpstreamConfig `koanf:"upstream" yaml:"upstream"`

	// TemplatePath replaces the embedded document template.
	TemplatePath string `koanf:"template_path" yaml:"template_path,omitempty"`
}

// UpstreamConfig configures the base image comparison. An empty Image
// disables it.
type UpstreamConfig struct {
	Image    string `koanf:"image" yaml:"image"`
	Registry string `koanf:"registry" yaml:"registry" validate:"required_with=Image"`
	// Channel is the upstream tag to compare; empty means the downstream target.
	Channel      string `koanf:"channel" yaml:"channel,omitempty"`
	PackageLabel string `koanf:"package_label" yaml:"package_label" validate:"required_with=Image"`
	// ReleaseURL links the section header and may contain {upstream_tag}.
	ReleaseURL string `koanf:"release_url" yaml:"release_url,omitempty"`
	// TemplatePath replaces the embedded upstream section template.
	TemplatePath string `koanf:"template_path" yaml:"template_path,omitempty"`
}

// Enabled reports whether an upstream image is configured.
func (u UpstreamConfig) Enabled() bool {
	return u.Image != ""
}

// Matrix returns the configured variants, or the default matrix for Product.
func (c *Configuration) Matrix() variant.Matrix {
	if len(c.Variants) > 0 {
		return variant.Matrix(c.Variants)
	}
	return variant.DefaultMatrix(c.Product)
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .imagelog/config.yml)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (default: ~/.config/imagelog/config.yml)
	UserConfigPath string
	// SkipUser ignores the user config entirely.
	SkipUser bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUser {
		if err := loadUserConfig(k, opts.UserConfigPath); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config when it exists.
func loadUserConfig(k *koanf.Koanf, customPath string) error {
	path := customPath
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadConfigFile(k, path, SourceUser); err != nil {
		return fmt.Errorf("loading user config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the project-level config. An explicit path must
// exist; the default locations are optional, with YAML preferred over JSON.
func loadProjectConfig(k *koanf.Koanf, customPath string) error {
	if customPath != "" {
		if !fileExists(customPath) {
			return &ValidationError{FilePath: customPath, Message: "config file not found"}
		}
		if err := loadConfigFile(k, customPath, SourceProject); err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		return nil
	}

	for _, path := range []string{ProjectConfigPath(), ProjectJSONConfigPath()} {
		if !fileExists(path) {
			continue
		}
		if err := loadConfigFile(k, path, SourceProject); err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		return nil
	}
	return nil
}

// loadConfigFile picks the parser by extension: .json files are JSON,
// everything else is YAML and gets a syntax check first.
func loadConfigFile(k *koanf.Koanf, path string, source ConfigSource) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
		}
		return nil
	}

	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", source, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Anchors = splitList(cfg.Anchors)
	cfg.TemplatePath = expandHomePath(cfg.TemplatePath)
	cfg.Upstream.TemplatePath = expandHomePath(cfg.Upstream.TemplatePath)

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// splitList expands comma-separated entries, as set from a single
// environment variable, into separate values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// envTransform converts environment variable names to config keys
// Example: IMAGELOG_RETRY_DELAY -> retry_delay, IMAGELOG_UPSTREAM__IMAGE -> upstream.image
func envTransform(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}
