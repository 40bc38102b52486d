package changelog

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ariel-frischer/imagelog/internal/diff"
)

const (
	// DefaultTitle is the title template.
	DefaultTitle = "{tag}: {pretty}"
	// DefaultIntro is the paragraph used when no handwritten intro is given.
	DefaultIntro = "This is an automatically generated changelog for release `{curr}`."

	tableHeader = "| | Name | Previous | New |\n| --- | --- | --- | --- |"
)

// BodyFields are the scalar fields a document template may reference.
var BodyFields = []string{"handwritten", "target", "prev", "curr", "changes", "product", "pretty"}

// UpstreamFields are the scalar fields an upstream section template may
// reference.
var UpstreamFields = []string{"upstream_link", "upstream_image", "upstream_tag", "upstream_created", "changes"}

// CheckBody reports scalar fields in a document template that Render would
// not be able to fill.
func CheckBody(text string) error {
	return checkFields(text, BodyFields)
}

// CheckUpstream is CheckBody for the upstream section template.
func CheckUpstream(text string) error {
	return checkFields(text, UpstreamFields)
}

func checkFields(text string, known []string) error {
	var unknown []string
	for _, f := range ParseTemplate(text).Fields() {
		if !slices.Contains(known, f) {
			unknown = append(unknown, f)
		}
	}
	if len(unknown) > 0 {
		return &UnresolvedFieldError{Fields: unknown}
	}
	return nil
}

// Renderer assembles documents. It holds no per-document state, so one
// Renderer can render any number of documents.
type Renderer struct {
	title    *Template
	intro    *Template
	body     *Template
	upstream *Template
	// upstreamURL links the upstream header; it may use {upstream_tag}.
	upstreamURL *Template
	commitURL   string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithIntro replaces the default intro template.
func WithIntro(text string) Option {
	return func(r *Renderer) { r.intro = ParseTemplate(text) }
}

// WithUpstreamTemplate replaces the embedded upstream section template.
func WithUpstreamTemplate(text string) Option {
	return func(r *Renderer) { r.upstream = ParseTemplate(text) }
}

// WithUpstreamURL links the upstream section header. The URL may contain
// {upstream_tag}.
func WithUpstreamURL(url string) Option {
	return func(r *Renderer) {
		if url == "" {
			r.upstreamURL = nil
			return
		}
		r.upstreamURL = ParseTemplate(url)
	}
}

// WithCommitURL sets the prefix commit hashes are appended to when linking
// commits. Without it, commit hashes are not linked.
func WithCommitURL(prefix string) Option {
	return func(r *Renderer) { r.commitURL = prefix }
}

// NewRenderer returns a Renderer for the given document template.
func NewRenderer(body string, opts ...Option) *Renderer {
	r := &Renderer{
		title:    ParseTemplate(DefaultTitle),
		intro:    ParseTemplate(DefaultIntro),
		body:     ParseTemplate(body),
		upstream: ParseTemplate(DefaultUpstream()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the document for c. Given identical content, the output is
// byte-identical.
func (r *Renderer) Render(c Content) (*Document, error) {
	title, err := r.title.RenderString(map[string]string{"tag": c.Current, "pretty": c.Pretty})
	if err != nil {
		return nil, fmt.Errorf("rendering title: %w", err)
	}

	handwritten := c.Handwritten
	if handwritten == "" {
		handwritten, err = r.intro.RenderString(c.scalars())
		if err != nil {
			return nil, fmt.Errorf("rendering intro: %w", err)
		}
	}

	var changes strings.Builder
	if err := writeCommits(&changes, c.Commits, r.commitURL); err != nil {
		return nil, fmt.Errorf("rendering commits: %w", err)
	}
	upstreamUnresolved, err := r.writeUpstream(&changes, c.Upstream)
	if err != nil {
		return nil, fmt.Errorf("rendering upstream section: %w", err)
	}
	for _, s := range c.Sections {
		if err := writeSection(&changes, s.Title, s.Changes); err != nil {
			return nil, fmt.Errorf("rendering section %s: %w", s.Name, err)
		}
	}

	fields := c.scalars()
	fields["handwritten"] = handwritten
	fields["changes"] = changes.String()

	body, unresolved, err := r.body.Render(Values{Fields: fields, Releases: c.Releases})
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}
	for _, name := range upstreamUnresolved {
		unresolved = appendUnique(unresolved, "upstream:"+name)
	}

	return &Document{
		Title:      title,
		Tag:        c.Current,
		Previous:   c.Previous,
		Channel:    c.Target,
		Body:       body,
		Summary:    Summarize(title, c),
		Unresolved: unresolved,
	}, nil
}

func (c Content) scalars() map[string]string {
	return map[string]string{
		"target":  c.Target,
		"prev":    c.Previous,
		"curr":    c.Current,
		"product": c.Product,
		"pretty":  c.Pretty,
	}
}

// writeCommits writes the commit history table, or nothing when there are
// no commits.
func writeCommits(w io.Writer, commits []Commit, commitURL string) error {
	if len(commits) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, "### Commits\n| Hash | Subject | Author |\n| --- | --- | --- |"); err != nil {
		return err
	}
	for _, c := range commits {
		hash := c.ShortHash
		if commitURL != "" {
			hash = fmt.Sprintf("[%s](%s%s)", c.ShortHash, commitURL, c.Hash)
		}
		if _, err := fmt.Fprintf(w, "\n| **%s** | %s | %s |", hash, escapeCell(c.Subject), escapeCell(c.Author)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n\n")
	return err
}

// writeUpstream writes the upstream section, or nothing when the upstream
// comparison is missing or reports no packages.
func (r *Renderer) writeUpstream(w io.Writer, u *Upstream) ([]string, error) {
	if u == nil || u.Changes.IsEmpty() {
		return nil, nil
	}

	link := u.Image
	if r.upstreamURL != nil {
		url, err := r.upstreamURL.RenderString(map[string]string{"upstream_tag": u.Tag})
		if err != nil {
			return nil, err
		}
		link = fmt.Sprintf("[%s](%s)", u.Image, url)
	}

	var rows strings.Builder
	if err := writeRows(&rows, u.Changes); err != nil {
		return nil, err
	}

	out, unresolved, err := r.upstream.Render(Values{
		Fields: map[string]string{
			"upstream_link":    link,
			"upstream_image":   u.Image,
			"upstream_tag":     u.Tag,
			"upstream_created": u.Created,
			"changes":          rows.String(),
		},
		Releases: u.Releases,
	})
	if err != nil {
		return nil, err
	}
	_, err = io.WriteString(w, out)
	return unresolved, err
}

// writeSection writes one package table, or nothing when the diff is empty.
func writeSection(w io.Writer, title string, r diff.Result) error {
	if r.IsEmpty() {
		return nil
	}
	if _, err := fmt.Fprintf(w, "### %s\n%s", title, tableHeader); err != nil {
		return err
	}
	if err := writeRows(w, r); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n\n")
	return err
}

// writeRows writes one table row per change, each preceded by a newline.
func writeRows(w io.Writer, r diff.Result) error {
	for _, c := range r.Rows() {
		if _, err := io.WriteString(w, formatRow(c)); err != nil {
			return err
		}
	}
	return nil
}

func formatRow(c diff.Change) string {
	switch c.Kind {
	case diff.Added:
		return fmt.Sprintf("\n| ✨ | %s | | %s |", c.Name, c.Current)
	case diff.Changed:
		return fmt.Sprintf("\n| 🔄 | %s | %s | %s |", c.Name, c.Previous, c.Current)
	default:
		return fmt.Sprintf("\n| ❌ | %s | %s | |", c.Name, c.Previous)
	}
}

// escapeCell keeps free text from breaking a markdown table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
