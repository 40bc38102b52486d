package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/imagelog/internal/config"
	clierrors "github.com/ariel-frischer/imagelog/internal/errors"
	"github.com/ariel-frischer/imagelog/internal/health"
)

var doctorWorkdir string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that imagelog can run in this environment",
	Long: `Check that the inspect command is installed, the document template renders,
and the commit history directory is a git repository.`,
	Example: `  imagelog doctor
  imagelog doctor --workdir ../bazzite`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFlag)
		if err != nil {
			return clierrors.ConfigInvalid(err)
		}

		report := health.RunHealthChecks(cfg, doctorWorkdir)
		fmt.Fprint(cmd.OutOrStdout(), health.FormatReport(report))
		if !report.Passed {
			return clierrors.NewPrerequisiteError("health checks failed",
				"Install skopeo or set inspect_command in your config",
				"Run imagelog config show to inspect the effective configuration",
			)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().StringVar(&doctorWorkdir, "workdir", ".", "Git repository for commit history (empty to skip)")
	rootCmd.AddCommand(doctorCmd)
}
