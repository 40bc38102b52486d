package changelog

import (
	"fmt"
	"regexp"
	"strings"
)

const pkgrelPrefix = "pkgrel:"

var fieldName = regexp.MustCompile(`^[a-z_]+$`)

type segmentKind int

const (
	literalSegment segmentKind = iota
	fieldSegment
	pkgrelSegment
)

type segment struct {
	kind  segmentKind
	value string
}

// Template is a parsed document with two kinds of placeholders: scalar fields
// written as {name} and per-package release fields written as {pkgrel:name}.
// Any other brace text is kept verbatim. Substituted values are never scanned
// for placeholders.
type Template struct {
	segments []segment
}

// UnresolvedFieldError is returned when a template references a scalar field
// that was given no value.
type UnresolvedFieldError struct {
	Fields []string
}

func (e *UnresolvedFieldError) Error() string {
	return fmt.Sprintf("template fields without a value: %s", strings.Join(e.Fields, ", "))
}

// Values holds what a template is rendered with.
type Values struct {
	Fields   map[string]string
	Releases map[string]Release
}

// ParseTemplate parses text into a Template.
func ParseTemplate(text string) *Template {
	t := &Template{}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{kind: literalSegment, value: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		if text[i] != '{' {
			lit.WriteByte(text[i])
			i++
			continue
		}

		end := strings.IndexByte(text[i+1:], '}')
		if end < 0 {
			lit.WriteString(text[i:])
			break
		}
		inner := text[i+1 : i+1+end]

		switch {
		case fieldName.MatchString(inner):
			flush()
			t.segments = append(t.segments, segment{kind: fieldSegment, value: inner})
		case isPkgrel(inner):
			flush()
			t.segments = append(t.segments, segment{kind: pkgrelSegment, value: strings.TrimPrefix(inner, pkgrelPrefix)})
		default:
			lit.WriteByte('{')
			i++
			continue
		}
		i += end + 2
	}
	flush()

	return t
}

func isPkgrel(inner string) bool {
	name, ok := strings.CutPrefix(inner, pkgrelPrefix)
	return ok && name != "" && !strings.ContainsAny(name, "{ \t\n")
}

// Fields returns the scalar field names referenced by the template, in order
// of first appearance.
func (t *Template) Fields() []string {
	return t.names(fieldSegment)
}

// Packages returns the package names referenced by {pkgrel:name} placeholders,
// in order of first appearance.
func (t *Template) Packages() []string {
	return t.names(pkgrelSegment)
}

func (t *Template) names(kind segmentKind) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range t.segments {
		if s.kind == kind && !seen[s.value] {
			seen[s.value] = true
			out = append(out, s.value)
		}
	}
	return out
}

// Render substitutes every placeholder. A scalar field missing from v is an
// error. A package missing from v.Releases keeps its placeholder text; the
// names of such packages are returned as unresolved.
func (t *Template) Render(v Values) (string, []string, error) {
	var b strings.Builder
	var missing, unresolved []string

	for _, s := range t.segments {
		switch s.kind {
		case literalSegment:
			b.WriteString(s.value)
		case fieldSegment:
			value, ok := v.Fields[s.value]
			if !ok {
				missing = appendUnique(missing, s.value)
				continue
			}
			b.WriteString(value)
		case pkgrelSegment:
			rel, ok := v.Releases[s.value]
			if !ok {
				unresolved = appendUnique(unresolved, s.value)
				b.WriteString("{" + pkgrelPrefix + s.value + "}")
				continue
			}
			b.WriteString(rel.String())
		}
	}

	if len(missing) > 0 {
		return "", nil, &UnresolvedFieldError{Fields: missing}
	}
	return b.String(), unresolved, nil
}

// RenderString renders a template that only uses scalar fields.
func (t *Template) RenderString(fields map[string]string) (string, error) {
	out, _, err := t.Render(Values{Fields: fields})
	return out, err
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
