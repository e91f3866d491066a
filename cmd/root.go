// Package cmd provides command-line interface functionality for psiotools.
// psiotools prepares PlayStation disc images (cue sheet + bin tracks) for
// the PSIO optical drive emulator.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hansbonini/psiotools/pkg/common"
	"github.com/hansbonini/psiotools/pkg/config"
)

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the psiotools application.
var rootCmd = &cobra.Command{
	Use:   "psiotools",
	Short: "Prepare PlayStation disc images for the PSIO",
	Long: `psiotools - utilities that prepare PlayStation disc images for the
PSIO optical drive emulator.

Currently supports:
  - Cue sheets (inspect, merge multi-bin images into one bin)
  - CU2 sheets (generate the PSIO sidecar from a cue sheet)
  - PPF patches (PPF1.0, PPF2.0 and PPF3.0 info, apply and undo)
  - Game identification (product code scan, game database)
  - Batch processing of whole directories into PSIO ready folders

Examples:
  psiotools cue inspect "Final Fantasy VII (Disc 1).cue"
  psiotools cue merge game.cue "Final Fantasy VII (Disc 1)" ./out/
  psiotools cu2 generate game.cue game.bin
  psiotools ppf apply game.bin SLES-02080.ppf
  psiotools gamedb import game_data
  psiotools process ~/roms/psx

Use 'psiotools [command] --help' for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("error getting verbose flag: %w", err)
		}
		common.SetVerboseMode(verbose)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
// An interrupt cancels the running command between games.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the configuration named by --config, or the default file.
// verbose logging in the file turns on debug output as -v does.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("error getting config flag: %w", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if exists {
		common.LogDebug(common.DebugUsingConfig, resolved)
	} else {
		common.LogDebug(common.DebugNoConfig, resolved)
	}
	if cfg.Logging.Verbose {
		common.SetVerboseMode(true)
	}
	return cfg, nil
}

// init initializes the root command with flags and configuration settings.
func init() {
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default ~/.config/psiotools/config.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}
