package testutil

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelperProcessFunc(t *testing.T) {
	TestHelperProcess(t)
}

func envSliceToMap(env []string) map[string]string {
	m := make(map[string]string, len(env))
	for _, e := range env {
		k, v, _ := strings.Cut(e, "=")
		m[k] = v
	}
	return m
}

func TestConfigureTestCommand(t *testing.T) {
	tests := map[string]struct {
		config HelperProcessConfig
		args   []string
	}{
		"default config": {
			config: HelperProcessConfig{},
			args:   []string{"docker://ghcr.io/org/image:stable"},
		},
		"with outputs": {
			config: HelperProcessConfig{Outputs: map[string]string{"a": "{}"}},
			args:   []string{"a"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cmd := ConfigureTestCommand(t, "TestHelperProcessFunc", tt.config, tt.args...)
			require.NotNil(t, cmd)

			env := envSliceToMap(cmd.Env)
			assert.Equal(t, "1", env[EnvWantHelperProcess])
			assert.Contains(t, env, EnvHelperProcessConfig)
			assert.Contains(t, env, EnvHelperProcessArgs)
		})
	}
}

func TestFakeCommand_Run(t *testing.T) {
	tests := map[string]struct {
		config     HelperProcessConfig
		args       []string
		wantStdout string
		wantErr    bool
	}{
		"plain stdout": {
			config:     HelperProcessConfig{Stdout: "hello"},
			args:       []string{"ref"},
			wantStdout: "hello",
		},
		"exit code": {
			config:  HelperProcessConfig{ExitCode: 2},
			args:    []string{"ref"},
			wantErr: true,
		},
		"output keyed by last arg": {
			config:     HelperProcessConfig{Outputs: map[string]string{"ref-b": "B"}},
			args:       []string{"--flag", "ref-b"},
			wantStdout: "B",
		},
		"unknown ref": {
			config:  HelperProcessConfig{Outputs: map[string]string{"ref-b": "B"}},
			args:    []string{"ref-c"},
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fn := FakeCommand(t, "TestHelperProcessFunc", tt.config)
			cmd := fn(context.Background(), "skopeo", tt.args...)

			var stdout bytes.Buffer
			cmd.Stdout = &stdout
			err := cmd.Run()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStdout, stdout.String())
		})
	}
}

func TestFakeCommand_FailTimes(t *testing.T) {
	counter := filepath.Join(t.TempDir(), "count")
	fn := FakeCommand(t, "TestHelperProcessFunc", HelperProcessConfig{
		Stdout:      "ok",
		FailTimes:   2,
		FailStderr:  "transient",
		CounterFile: counter,
	})

	assert.Error(t, fn(context.Background(), "x").Run())
	assert.Error(t, fn(context.Background(), "x").Run())
	assert.NoError(t, fn(context.Background(), "x").Run())
	assert.Equal(t, 3, ReadCounter(t, counter))
}
