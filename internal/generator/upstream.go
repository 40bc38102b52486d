package generator

import (
	"context"
	"log/slog"
	"sort"

	"github.com/ariel-frischer/imagelog/internal/changelog"
	"github.com/ariel-frischer/imagelog/internal/manifest"
	"github.com/ariel-frischer/imagelog/internal/packages"
	"github.com/ariel-frischer/imagelog/internal/tags"
)

// upstream compares the base image's current release on the channel with its
// previous release. It returns nil when the comparison is disabled or any
// step fails. The only error it returns is the cancellation of ctx.
func (g *Generator) upstream(ctx context.Context, target string) (*changelog.Upstream, error) {
	u := g.settings.Upstream
	if u.Image == "" {
		return nil, nil
	}
	channel := u.Channel
	if channel == "" {
		channel = target
	}
	log := slog.With("upstream", u.Image, "channel", channel)

	curr, err := g.fetchUpstream(ctx, channel)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("Skipping upstream section", "error", err)
		return nil, nil
	}

	pair, err := tags.Select(channel, []manifest.Manifest{*curr})
	if err != nil {
		log.Warn("Skipping upstream section", "error", err)
		return nil, nil
	}
	log.Info("Selected upstream tags", "previous", pair.Previous, "current", pair.Current)

	prev, err := g.fetchUpstream(ctx, pair.Previous)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("Skipping upstream section", "error", err)
		return nil, nil
	}

	currSet, err := packages.Extract(*curr, u.PackageLabel)
	if err != nil {
		log.Warn("Skipping upstream section", "tag", channel, "error", err)
		return nil, nil
	}
	prevSet, err := packages.Extract(*prev, u.PackageLabel)
	if err != nil {
		log.Warn("Skipping upstream section", "tag", pair.Previous, "error", err)
		return nil, nil
	}

	prevVersions := packages.Versions([]packages.Set{prevSet})
	currVersions := packages.Versions([]packages.Set{currSet})

	return &changelog.Upstream{
		Image:    u.Image,
		Tag:      pair.Current,
		Created:  curr.CreatedString(),
		Releases: changelog.Releases(prevVersions, currVersions),
		Changes:  g.engine.Compute(unionNames(prevVersions, currVersions), prevVersions, currVersions),
	}, nil
}

func (g *Generator) fetchUpstream(ctx context.Context, tag string) (*manifest.Manifest, error) {
	u := g.settings.Upstream
	label := "upstream " + u.Image + ":" + tag

	g.progress.Start(label)
	m, err := g.store.Inspect(ctx, manifest.Reference(u.Registry, u.Image, tag))
	if err != nil {
		if ctx.Err() != nil {
			g.progress.Fail(label)
		} else {
			g.progress.Fail(label + " unavailable")
		}
		return nil, err
	}
	g.progress.Done(label)
	return m, nil
}

// unionNames returns the names of both maps, sorted.
func unionNames(a, b map[string]string) []string {
	names := make([]string, 0, len(a)+len(b))
	for name := range a {
		names = append(names, name)
	}
	for name := range b {
		if _, ok := a[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
