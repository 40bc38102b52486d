package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/imagelog/internal/config"
	clierrors "github.com/ariel-frischer/imagelog/internal/errors"
)

var (
	configInitProject bool
	configInitForce   bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage imagelog configuration",
	Long: `Manage imagelog configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (IMAGELOG_*, nested keys with __ e.g. IMAGELOG_UPSTREAM__IMAGE)
  2. Project config (.imagelog/config.yml or .imagelog/config.json)
  3. User config (~/.config/imagelog/config.yml)
  4. Built-in defaults`,
	Example: `  # Show the effective configuration
  imagelog config show

  # Create a commented user config
  imagelog config init

  # Create a project config, replacing an existing one
  imagelog config init --project --force`,
}

var configShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Print the effective configuration as YAML",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFlag)
		if err != nil {
			return clierrors.ConfigInvalid(err)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:          "init",
	Short:        "Write a commented configuration template",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configInitPath(configInitProject)
		if err != nil {
			return err
		}
		created, err := writeConfigTemplate(path, configInitForce)
		if err != nil {
			return clierrors.FileNotWritable(path, err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s\n", green("✓"), path)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s exists, left unchanged (use --force to overwrite)\n", yellow("!"), path)
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitProject, "project", "p", false, "Create .imagelog/config.yml instead of the user config")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing config")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func configInitPath(project bool) (string, error) {
	if project {
		return config.ProjectConfigPath(), nil
	}
	path, err := config.UserConfigPath()
	if err != nil {
		return "", fmt.Errorf("locating user config: %w", err)
	}
	return path, nil
}

// writeConfigTemplate writes the default template to path. It reports false
// when the file exists and force is not set.
func writeConfigTemplate(path string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return false, fmt.Errorf("writing config: %w", err)
	}
	return true, nil
}
