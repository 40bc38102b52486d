package generator

import (
	"log/slog"
	"strings"

	"github.com/ariel-frischer/imagelog/internal/changelog"
	"github.com/ariel-frischer/imagelog/internal/manifest"
)

// commitHistory lists the non-merge commits between the revisions the two
// images were built from. It returns nil when workdir is empty or the history
// cannot be read.
func (g *Generator) commitHistory(prev, curr manifest.Manifest, workdir string) []changelog.Commit {
	if workdir == "" {
		return nil
	}

	start, ok := prev.Label(g.settings.RevisionLabel)
	if !ok || start == "" {
		slog.Warn("Skipping commits: previous image has no revision", "image", prev.Name, "label", g.settings.RevisionLabel)
		return nil
	}
	end, ok := curr.Label(g.settings.RevisionLabel)
	if !ok || end == "" {
		slog.Warn("Skipping commits: current image has no revision", "image", curr.Name, "label", g.settings.RevisionLabel)
		return nil
	}

	log, err := g.commits(start, end, workdir)
	if err != nil {
		slog.Warn("Skipping commits", "range", start+".."+end, "workdir", workdir, "error", err)
		return nil
	}

	var out []changelog.Commit
	for _, c := range log {
		if isMerge(c.Subject) {
			continue
		}
		out = append(out, changelog.Commit{
			Hash:      c.Hash,
			ShortHash: c.ShortHash,
			Author:    c.Author,
			Subject:   c.Subject,
		})
	}
	slog.Debug("Collected commits", "range", start+".."+end, "total", len(log), "kept", len(out))
	return out
}

func isMerge(subject string) bool {
	return strings.HasPrefix(strings.ToLower(subject), "merge")
}
