package changelog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Summarize builds the summary of a document assembled from c.
func Summarize(title string, c Content) Summary {
	s := Summary{
		Title:    title,
		Tag:      c.Current,
		Previous: c.Previous,
		Channel:  c.Target,
		Commits:  len(c.Commits),
	}

	if c.Upstream != nil && !c.Upstream.Changes.IsEmpty() {
		s.Sections = append(s.Sections, sectionSummary("upstream", c.Upstream.Changes.Names))
	}
	for _, sec := range c.Sections {
		if sec.Changes.IsEmpty() {
			continue
		}
		s.Sections = append(s.Sections, sectionSummary(sec.Name, sec.Changes.Names))
	}
	return s
}

func sectionSummary(name string, names func() (added, changed, removed []string)) SectionSummary {
	added, changed, removed := names()
	return SectionSummary{Name: name, Added: added, Changed: changed, Removed: removed}
}

// Marshal encodes the summary as YAML.
func (s Summary) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling summary: %w", err)
	}
	return data, nil
}

// ParseSummary decodes a summary written by Marshal.
func ParseSummary(data []byte) (*Summary, error) {
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing summary: %w", err)
	}
	return &s, nil
}

// File is one artifact for WriteFiles.
type File struct {
	Path string
	Data []byte
}

// FileError names the artifact that could not be written.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// WriteFiles writes every file to a temporary path first and renames them
// into place only once all of them were written, so readers never see a
// partial artifact. When a temporary file
// cannot be written, none of the targets is touched.
func WriteFiles(files []File) error {
	var staged []string
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, f := range files {
		tmpPath := f.Path + ".tmp"
		if err := os.WriteFile(tmpPath, f.Data, 0o644); err != nil {
			cleanup()
			return &FileError{Path: f.Path, Err: fmt.Errorf("writing temp file: %w", err)}
		}
		staged = append(staged, tmpPath)
	}

	var errs []error
	for i, f := range files {
		if err := os.Rename(staged[i], f.Path); err != nil {
			os.Remove(staged[i])
			errs = append(errs, &FileError{Path: f.Path, Err: fmt.Errorf("renaming temp file: %w", err)})
		}
	}
	return errors.Join(errs...)
}

var shellEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"$", `\$`,
	"`", "\\`",
	"\n", " ",
	"\r", " ",
)

// OutputVars renders the key=value artifact consumed by release pipelines.
// Values are safe inside shell double quotes.
func OutputVars(d *Document) string {
	return fmt.Sprintf("TITLE=\"%s\"\nTAG=%s\n", shellEscaper.Replace(d.Title), d.Tag)
}
