package changelog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/imagelog/internal/diff"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	c := sampleContent()
	c.Upstream = &Upstream{
		Image:   "ublue-os/bazzite-deck",
		Changes: diff.Result{Removed: []diff.Change{{Kind: diff.Removed, Name: "steam", Previous: "1.0"}}},
	}

	s := Summarize("41.20241027: Stable", c)

	assert.Equal(t, "41.20241027: Stable", s.Title)
	assert.Equal(t, "41.20241027", s.Tag)
	assert.Equal(t, "41.20241020", s.Previous)
	assert.Equal(t, "stable", s.Channel)
	assert.Equal(t, 1, s.Commits)
	assert.Equal(t, []SectionSummary{
		{Name: "upstream", Added: []string{}, Changed: []string{}, Removed: []string{"steam"}},
		{Name: "common", Added: []string{"bar"}, Changed: []string{"foo"}, Removed: []string{"old"}},
		{Name: "kde", Added: []string{"bar"}, Changed: []string{}, Removed: []string{}},
	}, s.Sections)
}

func TestSummary_MarshalRoundTrip(t *testing.T) {
	t.Parallel()

	s := Summarize("title", sampleContent())
	data, err := s.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "channel: stable")
	assert.NotContains(t, string(data), "removed: []", "empty lists are omitted")

	parsed, err := ParseSummary(data)
	require.NoError(t, err)
	assert.Equal(t, s.Tag, parsed.Tag)
	require.Len(t, parsed.Sections, 2)
	assert.Equal(t, []string{"old"}, parsed.Sections[0].Removed)
}

func TestParseSummary_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseSummary([]byte("sections: [unclosed"))
	require.Error(t, err)
}

func TestWriteFiles_Single(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.env")
	require.NoError(t, WriteFiles([]File{{Path: path, Data: []byte("TAG=1\n")}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "TAG=1\n", string(data))
	assert.NoFileExists(t, path+".tmp")
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := filepath.Join(dir, "changelog.md")
	require.NoError(t, os.WriteFile(doc, []byte("old"), 0o644))
	missing := filepath.Join(dir, "missing", "output.env")

	err := WriteFiles([]File{{Path: doc, Data: []byte("new")}, {Path: missing, Data: []byte("x")}})
	var fileErr *FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, missing, fileErr.Path)

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data), "staged files are not renamed")
	assert.NoFileExists(t, doc+".tmp")

	out := filepath.Join(dir, "output.env")
	require.NoError(t, WriteFiles([]File{{Path: doc, Data: []byte("new")}, {Path: out, Data: []byte("TAG=1\n")}}))
	data, err = os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.FileExists(t, out)
}

func TestOutputVars(t *testing.T) {
	tests := map[string]struct {
		title string
		want  string
	}{
		"plain": {
			title: "41.20241027: Stable (F41.20241027)",
			want:  "TITLE=\"41.20241027: Stable (F41.20241027)\"\nTAG=41.20241027\n",
		},
		"quotes and shell characters": {
			title: `41.20241027: The "Fall" $HOME ` + "`id` \\o/",
			want:  `TITLE="41.20241027: The \"Fall\" \$HOME \` + "`id\\` \\\\o/\"\nTAG=41.20241027\n",
		},
		"newline": {
			title: "41.20241027: a\nb",
			want:  "TITLE=\"41.20241027: a b\"\nTAG=41.20241027\n",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, OutputVars(&Document{Title: tc.title, Tag: "41.20241027"}))
		})
	}
}

func TestFormatTerminal(t *testing.T) {
	tests := map[string]struct {
		summary  Summary
		contains []string
	}{
		"sections listed": {
			summary: Summarize("t", sampleContent()),
			contains: []string{
				"## t (41.20241020 ➡️ 41.20241027)",
				"1 commits",
				"common (3)",
				"added: bar",
				"changed: foo",
				"removed: old",
			},
		},
		"no changes": {
			summary:  Summary{Title: "t", Tag: "b", Previous: "a"},
			contains: []string{"no package changes"},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, FormatTerminal(tc.summary, &buf, FormatOptions{Plain: true, MaxWidth: 80}))
			for _, s := range tc.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", wrapText("short", 10, "  "))
	assert.Equal(t, "aaa bbb\n  ccc", wrapText("aaa bbb ccc", 8, "  "))
}
