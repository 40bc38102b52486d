package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/imagelog/internal/changelog"
	"github.com/ariel-frischer/imagelog/internal/config"
	clierrors "github.com/ariel-frischer/imagelog/internal/errors"
	"github.com/ariel-frischer/imagelog/internal/generator"
	"github.com/ariel-frischer/imagelog/internal/manifest"
	"github.com/ariel-frischer/imagelog/internal/progress"
	"github.com/ariel-frischer/imagelog/internal/retry"
	"github.com/ariel-frischer/imagelog/internal/tags"
)

// storeFactory builds the manifest store; tests replace it.
var storeFactory = newStore

// outputPaths are the optional positional artifact paths.
type outputPaths struct {
	target    string
	output    string
	changelog string
}

func parseArgs(args []string) outputPaths {
	var p outputPaths
	if len(args) > 0 {
		p.target = args[0]
	}
	if len(args) > 1 {
		p.output = args[1]
	}
	if len(args) > 2 {
		p.changelog = args[2]
	}
	return p
}

func runGenerate(cmd *cobra.Command, args []string) error {
	paths := parseArgs(args)

	cfg, err := config.Load(configFlag)
	if err != nil {
		return clierrors.ConfigInvalid(err)
	}

	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	store, err := storeFactory(cfg)
	if err != nil {
		return clierrors.ConfigInvalid(err)
	}

	gen := generator.New(store, settingsFrom(cfg),
		generator.WithRenderer(renderer),
		generator.WithProgress(newReporter(cmd.ErrOrStderr())),
	)

	doc, err := gen.Generate(cmd.Context(), generator.Options{
		Target:      paths.target,
		Pretty:      prettyFlag,
		Handwritten: handwrittenFlag,
		Workdir:     workdirFlag,
	})
	if err != nil {
		return classifyError(paths.target, cfg, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", doc.Title, doc.Body)

	if err := writeArtifacts(doc, paths); err != nil {
		return err
	}

	opts := changelog.FormatOptions{Plain: plainFlag}
	if err := changelog.FormatTerminal(doc.Summary, cmd.ErrOrStderr(), opts); err != nil {
		slog.Debug("Failed to print summary", "error", err)
	}
	return nil
}

func newStore(cfg *config.Configuration) (manifest.Store, error) {
	return manifest.NewCommandStore(cfg.InspectCommand,
		manifest.WithTransport(cfg.Transport),
		manifest.WithPolicy(retry.Policy{
			Attempts: uint(cfg.Retries),
			Delay:    cfg.RetryDelay,
		}),
	)
}

// newRenderer loads and checks the document and upstream templates. Its
// errors are CLI errors naming the failing template.
func newRenderer(cfg *config.Configuration) (*changelog.Renderer, error) {
	body, err := changelog.LoadBody(cfg.TemplatePath)
	if err == nil {
		err = changelog.CheckBody(body)
	}
	if err != nil {
		return nil, clierrors.TemplateInvalid(cfg.TemplatePath, err)
	}

	opts := []changelog.Option{
		changelog.WithCommitURL(cfg.CommitURL),
		changelog.WithUpstreamURL(cfg.Upstream.ReleaseURL),
	}
	if cfg.Upstream.TemplatePath != "" {
		upstream, err := changelog.LoadUpstream(cfg.Upstream.TemplatePath)
		if err == nil {
			err = changelog.CheckUpstream(upstream)
		}
		if err != nil {
			return nil, clierrors.TemplateInvalid(cfg.Upstream.TemplatePath, err)
		}
		opts = append(opts, changelog.WithUpstreamTemplate(upstream))
	}

	return changelog.NewRenderer(body, opts...), nil
}

func settingsFrom(cfg *config.Configuration) generator.Settings {
	s := generator.Settings{
		Product:       cfg.Product,
		Registry:      cfg.Registry,
		Matrix:        cfg.Matrix(),
		PackageLabel:  cfg.PackageLabel,
		RevisionLabel: cfg.RevisionLabel,
		Anchors:       cfg.Anchors,
	}
	if cfg.Upstream.Enabled() {
		s.Upstream = generator.UpstreamSettings{
			Image:        cfg.Upstream.Image,
			Registry:     cfg.Upstream.Registry,
			Channel:      cfg.Upstream.Channel,
			PackageLabel: cfg.Upstream.PackageLabel,
		}
	}
	return s
}

// newReporter shows fetch progress on w unless debug logging is on, where
// the spinner would garble the log lines. Otherwise log output is routed
// through the tracker so warnings do not land on the spinner line.
func newReporter(w io.Writer) progress.Reporter {
	if debugFlag {
		return progress.Nop{}
	}
	tracker := progress.NewTracker(w, progress.DetectTerminalCapabilities())
	setupLogging(tracker.Writer(), false)
	return tracker
}

// classifyError maps generation failures to CLI errors with remediation.
func classifyError(target string, cfg *config.Configuration, err error) error {
	var manifestsErr *generator.ManifestsError
	var fieldErr *changelog.UnresolvedFieldError

	switch {
	case errors.Is(err, generator.ErrInvalidTarget):
		return clierrors.InvalidTarget(target)
	case errors.Is(err, tags.ErrNotEnoughTags):
		channel, _ := generator.NormalizeTarget(target)
		return clierrors.NotEnoughTags(channel, err)
	case errors.As(err, &manifestsErr):
		return clierrors.NoManifests(manifestsErr.Tag, err)
	case errors.As(err, &fieldErr):
		return clierrors.TemplateInvalid(cfg.TemplatePath, err)
	default:
		return err
	}
}

// writeArtifacts writes the changelog document, the output variables and the
// summary to whichever paths were given. Either all of them are replaced or,
// when one cannot be staged, none is.
func writeArtifacts(doc *changelog.Document, paths outputPaths) error {
	var files []changelog.File
	if paths.changelog != "" {
		files = append(files, changelog.File{Path: paths.changelog, Data: []byte(doc.Body)})
	}
	if paths.output != "" {
		files = append(files, changelog.File{Path: paths.output, Data: []byte(changelog.OutputVars(doc))})
	}
	if summaryFlag != "" {
		data, err := doc.Summary.Marshal()
		if err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		files = append(files, changelog.File{Path: summaryFlag, Data: data})
	}
	if len(files) == 0 {
		return nil
	}

	if err := changelog.WriteFiles(files); err != nil {
		var fileErr *changelog.FileError
		if errors.As(err, &fileErr) {
			return clierrors.FileNotWritable(fileErr.Path, err)
		}
		return err
	}
	for _, f := range files {
		slog.Info("Artifact written", "path", f.Path)
	}
	return nil
}
