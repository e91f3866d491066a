// Package cmd provides command-line interface for PSIO game processing.
// This file contains the command that turns cue/bin sets into PSIO ready
// game folders.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hansbonini/psiotools/pkg"
)

// processCmd runs the full preparation pipeline.
var processCmd = &cobra.Command{
	Use:   "process [cue_file | directory]",
	Short: "Prepare games for the PSIO",
	Long: `Prepare one game, or every cue sheet below a directory, for the PSIO.

For each cue sheet psiotools:
  - scans the first bin file for the product code
  - names the game from the game database (falls back to the cue sheet)
  - merges multi-bin images or copies single bin images into
    <output_dir>/<game name>/
  - generates the CU2 sheet
  - applies <patches_dir>/<ID>.ppf when present
  - copies <covers_dir>/<ID>.bmp as the folder cover
Afterwards MULTIDISC.LST is written for every folder holding several discs
and a YAML run report is stored in report_dir.

Existing outputs are never overwritten; such games are reported as skipped.
Paths and steps come from the configuration file (see 'psiotools config init').

Example:
  psiotools process ~/roms/psx
  psiotools process --config ./psio.toml "Crash Bandicoot (USA).cue"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		store, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		processor := pkg.NewGameProcessor(cfg, store)
		processor.Progress = func(name string, total int64) io.WriteCloser {
			return newProgress(total, name)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Processing: %s\n", args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Output directory: %s\n", cfg.Paths.OutputDir)

		report, err := processor.ProcessBatch(cmd.Context(), args[0])
		if report != nil {
			printReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", args[0], err)
		}
		if report.Failed > 0 {
			return fmt.Errorf("%d game(s) failed", report.Failed)
		}
		return nil
	},
}

func printReport(out io.Writer, report *pkg.Report) {
	if len(report.Games) > 0 {
		rows := make([][]string, 0, len(report.Games))
		for _, g := range report.Games {
			detail := g.Name
			if g.Error != "" {
				detail = g.Error
			}
			rows = append(rows, []string{g.Status, g.GameID, detail})
		}
		fmt.Fprintln(out, renderTable([]string{"Status", "ID", "Game"}, rows, nil))
	}

	for _, list := range report.MultiDisc {
		printStatus(out, "multidisc", statusOK, list.Path)
	}
	kind := statusOK
	if report.Failed > 0 {
		kind = statusError
	} else if report.Skipped > 0 {
		kind = statusWarn
	}
	printStatus(out, "summary", kind, fmt.Sprintf("%d processed, %d skipped, %d failed (run %s)",
		report.Processed, report.Skipped, report.Failed, report.RunID))
}

// init initializes the process command.
func init() {
	rootCmd.AddCommand(processCmd)
}
