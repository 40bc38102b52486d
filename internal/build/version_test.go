package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tests that modify the global Version variable cannot run in parallel.

func TestIsDevBuild(t *testing.T) {
	tests := map[string]struct {
		version string
		want    bool
	}{
		"dev version":     {version: "dev", want: true},
		"release version": {version: "v0.2.0", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			orig := Version
			Version = tt.version
			defer func() { Version = orig }()

			assert.Equal(t, tt.want, IsDevBuild())
		})
	}
}

func TestInfo(t *testing.T) {
	origVersion, origCommit := Version, Commit
	Version, Commit = "v0.2.0", "0123456789abcdef"
	defer func() { Version, Commit = origVersion, origCommit }()

	info := Info()
	assert.Contains(t, info, "imagelog v0.2.0\n")
	assert.Contains(t, info, "commit: 01234567\n")
	assert.Contains(t, info, "platform: ")
}

func TestShortCommit(t *testing.T) {
	orig := Commit
	defer func() { Commit = orig }()

	Commit = "abc"
	assert.Equal(t, "abc", ShortCommit())
	Commit = "0123456789"
	assert.Equal(t, "01234567", ShortCommit())
}
