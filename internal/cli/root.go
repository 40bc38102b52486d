// Package cli implements the imagelog command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/imagelog/internal/build"
	clierrors "github.com/ariel-frischer/imagelog/internal/errors"
	"github.com/ariel-frischer/imagelog/internal/git"
)

var (
	prettyFlag      string
	workdirFlag     string
	handwrittenFlag string
	configFlag      string
	summaryFlag     string
	debugFlag       bool
	plainFlag       bool
)

var rootCmd = &cobra.Command{
	Use:   "imagelog [target] [output] [changelog]",
	Short: "Generate a release changelog for a container image distribution",
	Long: `Generate a release changelog by comparing the package lists of the two most
recent releases of a channel, across every image variant of the product.

The target is a channel name such as stable or testing. Git refs are accepted
(refs/heads/main resolves to stable). The changelog is printed to stdout and,
when paths are given, written to disk:

  output     key=value file with TITLE="..." and TAG=...
  changelog  the rendered markdown document

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (IMAGELOG_*)
  2. Project config (.imagelog/config.yml or --config)
  3. User config (~/.config/imagelog/config.yml)
  4. Built-in defaults`,
	Example: `  # Changelog for the stable channel
  imagelog

  # Testing channel, write CI outputs
  imagelog testing output.env changelog.md

  # From a CI ref with commit history and a custom title
  imagelog refs/heads/main --workdir . --pretty "Fall Update"

  # Also write a YAML summary of the reported packages
  imagelog stable --summary summary.yml`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 3 {
			return clierrors.TooManyArguments(len(args))
		}
		return nil
	},
	Version:       build.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr(), debugFlag)
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Project config file (default: .imagelog/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")

	rootCmd.Flags().StringVar(&prettyFlag, "pretty", "", "Title suffix (default: generated from channel and version)")
	rootCmd.Flags().StringVar(&workdirFlag, "workdir", ".", "Git repository for commit history (empty to skip)")
	rootCmd.Flags().StringVar(&handwrittenFlag, "handwritten", "", "Intro paragraph replacing the generated one")
	rootCmd.Flags().StringVar(&summaryFlag, "summary", "", "Write a YAML summary of reported packages to this path")
	rootCmd.Flags().BoolVar(&plainFlag, "plain", false, "Plain terminal preview (no colors/icons)")

	rootCmd.SetVersionTemplate(build.Info())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	return clierrors.Report(os.Stderr, err, !color.NoColor)
}

// setupLogging installs the default slog logger on w and routes go-git debug
// output through it.
func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))

	if debug {
		git.SetDebugLogger(func(format string, args ...any) {
			slog.Debug(fmt.Sprintf(format, args...))
		})
	} else {
		git.SetDebugLogger(nil)
	}
}
