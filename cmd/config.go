// Package cmd provides command-line interface for configuration handling.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hansbonini/psiotools/pkg/common"
	"github.com/hansbonini/psiotools/pkg/config"
)

// configCmd represents the parent command for configuration operations.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the psiotools configuration",
	Long: `Manage the psiotools configuration file.

Commands:
  init      Write a sample configuration file
  show      Print the effective configuration

Examples:
  psiotools config init
  psiotools config init ./psio.toml`,
}

// configInitCmd writes the sample configuration.
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a sample configuration file",
	Long: `Write a sample configuration file to path, or to
~/.config/psiotools/config.toml when no path is given. An existing file is
left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			defaultPath, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			path = defaultPath
		}
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return err
		}

		if err := config.CreateSample(expanded); err != nil {
			return err
		}
		common.LogInfo(common.InfoConfigSampleCreate, expanded)
		printStatus(cmd.OutOrStdout(), "config", statusOK, expanded)
		return nil
	},
}

// configShowCmd prints the effective configuration after defaults.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		rows := [][]string{
			{"paths.output_dir", cfg.Paths.OutputDir},
			{"paths.covers_dir", cfg.Paths.CoversDir},
			{"paths.patches_dir", cfg.Paths.PatchesDir},
			{"paths.database", cfg.Paths.Database},
			{"paths.report_dir", cfg.Paths.ReportDir},
			{"process.apply_patches", fmt.Sprint(cfg.Process.ApplyPatches)},
			{"process.copy_covers", fmt.Sprint(cfg.Process.CopyCovers)},
			{"process.multidisc_list", fmt.Sprint(cfg.Process.MultiDiscList)},
			{"process.max_name_length", fmt.Sprint(cfg.Process.MaxNameLength)},
			{"process.keep_cue", fmt.Sprint(cfg.Process.KeepCue)},
			{"logging.verbose", fmt.Sprint(cfg.Logging.Verbose)},
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Value"}, rows, nil))
		return nil
	},
}

// init initializes the config command and its subcommands.
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
