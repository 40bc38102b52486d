package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// KindStyle defines the color and icon for a change kind.
type KindStyle struct {
	Color *color.Color
	Icon  string
}

var kindStyles = map[string]KindStyle{
	"added":   {Color: color.New(color.FgGreen), Icon: "✓"},
	"changed": {Color: color.New(color.FgBlue), Icon: "~"},
	"removed": {Color: color.New(color.FgRed), Icon: "✗"},
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatTerminal writes a short, styled overview of a summary: the title,
// the compared tags and, per section, the reported package names.
func FormatTerminal(s Summary, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeHeader(s, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if s.Commits > 0 {
		if _, err := fmt.Fprintf(w, "  %d commits\n", s.Commits); err != nil {
			return err
		}
	}

	if len(s.Sections) == 0 {
		_, err := fmt.Fprintln(w, "  no package changes")
		return err
	}

	for _, sec := range s.Sections {
		if err := writeSectionSummary(sec, w, opts, width); err != nil {
			return fmt.Errorf("formatting section %s: %w", sec.Name, err)
		}
	}
	return nil
}

func writeHeader(s Summary, w io.Writer, opts FormatOptions) error {
	header := fmt.Sprintf("%s (%s ➡️ %s)", s.Title, s.Previous, s.Tag)
	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

func writeSectionSummary(sec SectionSummary, w io.Writer, opts FormatOptions, width int) error {
	if _, err := fmt.Fprintf(w, "\n%s (%d)\n", sec.Name, sec.Count()); err != nil {
		return err
	}

	kinds := []struct {
		name  string
		names []string
	}{
		{"added", sec.Added},
		{"changed", sec.Changed},
		{"removed", sec.Removed},
	}
	for _, k := range kinds {
		if len(k.names) == 0 {
			continue
		}
		if err := writeKindLine(k.name, k.names, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeKindLine writes the package names of one kind, wrapped to width.
func writeKindLine(kind string, names []string, w io.Writer, opts FormatOptions, width int) error {
	text := strings.Join(names, ", ")

	if opts.Plain {
		prefix := fmt.Sprintf("  %s: ", kind)
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, wrapText(text, width-len(prefix), "    "))
		return err
	}

	style := kindStyles[kind]
	colored := style.Color.SprintFunc()
	prefix := "  " + style.Icon + " "
	_, err := fmt.Fprintf(w, "%s%s\n", colored(prefix), colored(wrapText(text, width-len(prefix), "    ")))
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		// Find the last space within maxWidth
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
