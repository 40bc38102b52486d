package changelog

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed templates/changelog.md
var embeddedBody string

//go:embed templates/upstream.md
var embeddedUpstream string

// DefaultBody returns the embedded document template.
func DefaultBody() string {
	return embeddedBody
}

// DefaultUpstream returns the embedded upstream section template.
func DefaultUpstream() string {
	return embeddedUpstream
}

// LoadBody reads a document template from path, or returns the embedded
// template when path is empty.
func LoadBody(path string) (string, error) {
	return load(path, embeddedBody)
}

// LoadUpstream reads an upstream section template from path, or returns the
// embedded one when path is empty.
func LoadUpstream(path string) (string, error) {
	return load(path, embeddedUpstream)
}

func load(path, embedded string) (string, error) {
	if path == "" {
		return embedded, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", path, err)
	}
	return string(data), nil
}
