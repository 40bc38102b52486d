package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/imagelog/internal/config"
	clierrors "github.com/ariel-frischer/imagelog/internal/errors"
)

func TestConfigShow(t *testing.T) {
	cfg := writeFile(t, "config.yml", "product: serpentine\nretries: 4\n")

	stdout, _, err := execute(t, &memoryStore{}, "config", "show", "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, stdout, "product: serpentine")
	assert.Contains(t, stdout, "retries: 4")
	assert.Contains(t, stdout, "retry_delay: 5s")
	assert.Contains(t, stdout, "registry: ghcr.io/ublue-os/")
}

func TestConfigInit(t *testing.T) {
	stdout, _, err := execute(t, &memoryStore{}, "config", "init")
	require.NoError(t, err)

	path, err := config.UserConfigPath()
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.GetDefaultConfigTemplate(), string(data))
}

func TestWriteConfigTemplate(t *testing.T) {
	tests := map[string]struct {
		existing    bool
		force       bool
		wantCreated bool
		wantContent string
	}{
		"new file": {
			wantCreated: true,
			wantContent: config.GetDefaultConfigTemplate(),
		},
		"existing kept": {
			existing:    true,
			wantContent: "product: mine\n",
		},
		"existing forced": {
			existing:    true,
			force:       true,
			wantCreated: true,
			wantContent: config.GetDefaultConfigTemplate(),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".imagelog", "config.yml")
			if tt.existing {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
				require.NoError(t, os.WriteFile(path, []byte("product: mine\n"), 0o644))
			}

			created, err := writeConfigTemplate(path, tt.force)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, string(data))
		})
	}
}

func TestDoctor(t *testing.T) {
	tests := map[string]struct {
		config   string
		wantErr  bool
		contains []string
	}{
		"healthy": {
			config:   "inspect_command: sh -c 'cat'\n",
			contains: []string{"✓ Inspect command: sh found at", "✓ Template: embedded template", "✓ Commit history: disabled"},
		},
		"missing inspector": {
			config:   "inspect_command: imagelog-no-such-inspector\n",
			wantErr:  true,
			contains: []string{"✗ Inspect command: imagelog-no-such-inspector not found in PATH"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := writeFile(t, "config.yml", tt.config)
			doctorWorkdir = ""

			stdout, _, err := execute(t, &memoryStore{}, "doctor", "--config", cfg, "--workdir", "")
			if tt.wantErr {
				cliErr := clierrors.AsCLIError(err)
				require.NotNil(t, cliErr)
				assert.Equal(t, clierrors.Prerequisite, cliErr.Category)
			} else {
				require.NoError(t, err)
			}
			for _, s := range tt.contains {
				assert.Contains(t, stdout, s)
			}
		})
	}
}
