package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTarget(t *testing.T) {
	tests := map[string]struct {
		arg     string
		want    string
		wantErr bool
	}{
		"empty":          {arg: "", want: "stable"},
		"stable":         {arg: "stable", want: "stable"},
		"main alias":     {arg: "main", want: "stable"},
		"branch ref":     {arg: "refs/heads/main", want: "stable"},
		"tag ref":        {arg: "refs/tags/testing", want: "testing"},
		"remote ref":     {arg: "refs/remotes/origin/unstable", want: "unstable"},
		"trailing slash": {arg: "refs/heads/", wantErr: true},
		"whitespace":     {arg: "my channel", wantErr: true},
		"mainline kept":  {arg: "mainline", want: "mainline"},
		"named channel":  {arg: "testing", want: "testing"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeTarget(tc.arg)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPrettyName(t *testing.T) {
	tests := map[string]struct {
		target   string
		current  string
		revision string
		want     string
	}{
		"stable hides revision": {
			target: "stable", current: "41.20241027", revision: "0123456789", want: "Stable (F41.20241027)",
		},
		"stable build suffix": {
			target: "stable", current: "41.20241027.1", want: "Stable (F41.20241027)",
		},
		"named channel": {
			target: "testing", current: "testing-41.20241027.2", revision: "0123456789", want: "Testing (F41.20241027, #0123456)",
		},
		"short revision": {
			target: "unstable", current: "unstable-41.20241027", revision: "abc", want: "Unstable (F41.20241027, #abc)",
		},
		"no revision": {
			target: "testing", current: "testing-41.20241027", want: "Testing (F41.20241027)",
		},
		"capitalized": {
			target: "TESTING", current: "41.20241027", want: "Testing (F41.20241027)",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, PrettyName(tc.target, tc.current, tc.revision))
		})
	}
}
