package errors

import "fmt"

// Common error messages for the imagelog CLI.
// These templates ensure consistent, actionable error messages.

// NotEnoughTags creates an error when a channel has fewer than two comparable tags.
func NotEnoughTags(channel string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("cannot select a version pair for channel %q", channel),
		"Check that at least two dated releases of the channel are published",
		"Tags ending in .0 are never compared",
		"Verify the channel name, e.g.: imagelog testing",
	)
}

// NoManifests creates an error when no image of the product could be inspected.
func NoManifests(tag string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("no image manifests available for %s", tag),
		"Check registry access: skopeo inspect docker://<registry>/<image>:"+tag,
		"Verify the registry and variants in your config: imagelog --debug",
		"Increase retries with IMAGELOG_RETRIES=5",
	)
}

// InvalidTarget creates an error for an unusable target argument.
func InvalidTarget(provided string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid target: %q", provided),
		"imagelog [target] [output] [changelog]",
		"Use a channel name such as stable or testing",
		"Git refs are accepted: refs/heads/main resolves to stable",
	)
}

// TooManyArguments creates an error when more positional arguments are given than accepted.
func TooManyArguments(n int) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("accepts at most 3 arguments, received %d", n),
		"imagelog [target] [output] [changelog]",
		"Quote --handwritten text that contains spaces",
	)
}

// ConfigInvalid creates an error for a configuration that failed to load or validate.
func ConfigInvalid(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"invalid configuration",
		"Check ~/.config/imagelog/config.yml and .imagelog/config.yml",
		"Environment overrides use the IMAGELOG_ prefix, e.g. IMAGELOG_REGISTRY",
	)
}

// TemplateInvalid creates an error when the document or upstream template cannot be rendered.
func TemplateInvalid(path string, err error) *CLIError {
	source := "embedded template"
	if path != "" {
		source = path
	}
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("cannot render %s", source),
		"Document placeholders: {handwritten} {target} {prev} {curr} {changes} {product} {pretty}",
		"Upstream placeholders: {upstream_link} {upstream_image} {upstream_tag} {upstream_created} {changes}",
		"Remove template_path or upstream.template_path from your config to use the embedded templates",
	)
}

// FileNotWritable creates an error when an output artifact cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("cannot write to file: %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure parent directory exists and is writable",
	)
}
