// Package generator builds a release changelog end to end: it fetches the
// manifests of every image variant for the requested channel and its previous
// release, compares their package lists, and renders the document.
//
// Failures on the downstream images are fatal. The upstream base image
// comparison and the commit history are optional: when either fails, a
// warning is logged and its section is left out.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ariel-frischer/imagelog/internal/changelog"
	"github.com/ariel-frischer/imagelog/internal/diff"
	"github.com/ariel-frischer/imagelog/internal/git"
	"github.com/ariel-frischer/imagelog/internal/manifest"
	"github.com/ariel-frischer/imagelog/internal/packages"
	"github.com/ariel-frischer/imagelog/internal/progress"
	"github.com/ariel-frischer/imagelog/internal/tags"
	"github.com/ariel-frischer/imagelog/internal/variant"
)

// ErrNoManifests is returned when no variant of the product could be fetched
// for a tag.
var ErrNoManifests = errors.New("no image manifests available")

// ManifestsError names the tag for which no variant could be fetched. It
// matches ErrNoManifests with errors.Is.
type ManifestsError struct {
	Tag string
}

func (e *ManifestsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNoManifests, e.Tag)
}

func (e *ManifestsError) Is(target error) bool {
	return target == ErrNoManifests
}

// CommitLog lists the commits between two revisions in a working directory.
type CommitLog func(start, end, workdir string) ([]git.Commit, error)

// Settings is the fixed configuration of a Generator.
type Settings struct {
	Product       string
	Registry      string
	Matrix        variant.Matrix
	Groups        []variant.Group
	PackageLabel  string
	RevisionLabel string
	Anchors       []string
	Upstream      UpstreamSettings
}

// UpstreamSettings configures the base image comparison. An empty Image
// disables it.
type UpstreamSettings struct {
	Image        string
	Registry     string
	Channel      string
	PackageLabel string
}

// Options are the per-run inputs.
type Options struct {
	// Target is the channel, possibly given as a git ref.
	Target string
	// Pretty replaces the generated title suffix.
	Pretty string
	// Handwritten replaces the generated intro paragraph.
	Handwritten string
	// Workdir is the repository for commit history; empty skips it.
	Workdir string
}

// Generator produces changelogs. It keeps no state between runs.
type Generator struct {
	store    manifest.Store
	settings Settings
	engine   diff.Engine
	renderer *changelog.Renderer
	commits  CommitLog
	progress progress.Reporter
}

// Option configures a Generator.
type Option func(*Generator)

// WithRenderer replaces the default renderer.
func WithRenderer(r *changelog.Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// WithCommitLog replaces the go-git commit log.
func WithCommitLog(fn CommitLog) Option {
	return func(g *Generator) { g.commits = fn }
}

// WithProgress reports manifest fetches to r.
func WithProgress(r progress.Reporter) Option {
	return func(g *Generator) { g.progress = r }
}

// New returns a Generator reading manifests from store.
func New(store manifest.Store, settings Settings, opts ...Option) *Generator {
	if settings.Groups == nil {
		settings.Groups = variant.DefaultGroups()
	}
	g := &Generator{
		store:    store,
		settings: settings,
		engine:   diff.NewEngine(settings.Anchors),
		renderer: changelog.NewRenderer(changelog.DefaultBody()),
		commits:  git.Log,
		progress: progress.Nop{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// fetched is the manifest of one variant.
type fetched struct {
	variant  variant.Variant
	manifest manifest.Manifest
}

// Generate builds the changelog for opts.Target.
func (g *Generator) Generate(ctx context.Context, opts Options) (*changelog.Document, error) {
	target, err := NormalizeTarget(opts.Target)
	if err != nil {
		return nil, err
	}

	slog.Info("Fetching manifests", "product", g.settings.Product, "tag", target, "variants", len(g.settings.Matrix))
	curr, err := g.fetchAll(ctx, target)
	if err != nil {
		return nil, err
	}

	pair, err := tags.Select(target, manifestsOf(curr))
	if err != nil {
		return nil, fmt.Errorf("selecting tags: %w", err)
	}
	slog.Info("Selected tags", "previous", pair.Previous, "current", pair.Current)

	prev, err := g.fetchAll(ctx, pair.Previous)
	if err != nil {
		return nil, err
	}

	prevSets, prevOrdered := g.extractAll(prev)
	currSets, currOrdered := g.extractAll(curr)
	prevVersions := packages.Versions(prevOrdered)
	currVersions := packages.Versions(currOrdered)

	groups := packages.Reconcile(g.settings.Matrix, prevSets, currSets, g.settings.Groups)
	sections := g.sections(groups, prevVersions, currVersions)

	upstream, err := g.upstream(ctx, target)
	if err != nil {
		return nil, err
	}
	commits := g.commitHistory(prev[0].manifest, curr[0].manifest, opts.Workdir)
	// An interrupted run must not produce a document with sections missing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := changelog.Content{
		Target:      target,
		Previous:    pair.Previous,
		Current:     pair.Current,
		Product:     g.settings.Product,
		Handwritten: opts.Handwritten,
		Sections:    sections,
		Releases:    changelog.Releases(prevVersions, currVersions),
		Upstream:    upstream,
		Commits:     commits,
	}

	content.Pretty = opts.Pretty
	if content.Pretty == "" {
		revision, _ := curr[0].manifest.Label(g.settings.RevisionLabel)
		content.Pretty = PrettyName(target, pair.Current, revision)
	}

	doc, err := g.renderer.Render(content)
	if err != nil {
		return nil, fmt.Errorf("rendering changelog: %w", err)
	}
	if len(doc.Unresolved) > 0 {
		slog.Warn("Template placeholders without package data", "packages", doc.Unresolved)
	}
	return doc, nil
}

// fetchAll fetches every variant at tag in declaration order. Unavailable
// variants are skipped; it fails only when none is available.
func (g *Generator) fetchAll(ctx context.Context, tag string) ([]fetched, error) {
	var out []fetched
	for i, v := range g.settings.Matrix {
		ref := manifest.Reference(g.settings.Registry, v.Image, tag)
		label := fmt.Sprintf("%s:%s (%d/%d)", v.Image, tag, i+1, len(g.settings.Matrix))

		g.progress.Start(label)
		m, err := g.store.Inspect(ctx, ref)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				g.progress.Fail(label)
				return nil, ctxErr
			}
			g.progress.Fail(label + " unavailable, skipping")
			slog.Warn("Skipping variant", "image", v.Image, "tag", tag, "error", err)
			continue
		}
		g.progress.Done(label)
		out = append(out, fetched{variant: v, manifest: *m})
	}

	if len(out) == 0 {
		return nil, &ManifestsError{Tag: tag}
	}
	return out, nil
}

// extractAll decodes package lists. Variants whose label is missing or
// malformed are logged and left out.
func (g *Generator) extractAll(fs []fetched) (map[string]packages.Set, []packages.Set) {
	byImage := make(map[string]packages.Set, len(fs))
	var ordered []packages.Set
	for _, f := range fs {
		set, err := packages.Extract(f.manifest, g.settings.PackageLabel)
		if err != nil {
			slog.Warn("Failed to read packages", "image", f.variant.Image, "error", err)
			continue
		}
		byImage[f.variant.Image] = set
		ordered = append(ordered, set)
	}
	return byImage, ordered
}

// sections diffs the common set and each group set.
func (g *Generator) sections(groups packages.Groups, prev, curr map[string]string) []changelog.Section {
	sections := []changelog.Section{{
		Name:    "common",
		Title:   "All Images",
		Changes: g.engine.Compute(groups.Common, prev, curr),
	}}

	titles := make(map[string]string, len(g.settings.Groups))
	for _, grp := range g.settings.Groups {
		titles[grp.Name] = grp.Title
	}
	for _, name := range groups.Order {
		sections = append(sections, changelog.Section{
			Name:    name,
			Title:   titles[name],
			Changes: g.engine.Compute(groups.ByGroup[name], prev, curr),
		})
	}
	return sections
}

func manifestsOf(fs []fetched) []manifest.Manifest {
	out := make([]manifest.Manifest, len(fs))
	for i, f := range fs {
		out[i] = f.manifest
	}
	return out
}
