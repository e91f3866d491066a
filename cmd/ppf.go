// Package cmd provides command-line interface for PPF patch handling.
// This file contains commands for inspecting PPF patches and applying or
// undoing them against raw disc images.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hansbonini/psiotools/pkg/ppf"
)

// ppfCmd represents the parent command for all PPF operations.
var ppfCmd = &cobra.Command{
	Use:   "ppf",
	Short: "Inspect, apply and undo PPF patches",
	Long: `Work with PlayStation Patch Format files (PPF1.0, PPF2.0 and PPF3.0).

Commands:
  info      Show the header of a patch
  apply     Apply a patch to a bin/iso image in place
  undo      Restore the original data from a PPF3.0 patch with undo data

Examples:
  psiotools ppf info SLES-02080.ppf
  psiotools ppf apply game.bin SLES-02080.ppf
  psiotools ppf undo game.bin SLES-02080.ppf`,
}

// ppfInfoCmd prints the parsed header of a patch.
var ppfInfoCmd = &cobra.Command{
	Use:   "info [patch_file]",
	Short: "Show the header of a PPF patch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := ppf.ReadInfo(args[0])
		if err != nil {
			return fmt.Errorf("failed to read patch: %w", err)
		}

		rows := [][]string{
			{"Version", fmt.Sprintf("PPF%d.0", h.Version)},
			{"Description", h.Description},
			{"Patch size", humanize.IBytes(uint64(h.PatchSize))},
			{"Records start", strconv.FormatInt(h.RecordsStart, 10)},
			{"Record bytes", humanize.Comma(h.RecordBytes)},
		}
		switch h.Version {
		case 2:
			rows = append(rows, []string{"Image size", humanize.Comma(int64(h.ImageSize))})
		case 3:
			rows = append(rows,
				[]string{"Image type", h.ImageType.String()},
				[]string{"Block check", strconv.FormatBool(h.BlockCheck)},
				[]string{"Undo data", strconv.FormatBool(h.HasUndo)},
			)
		}
		if h.HasFileID {
			rows = append(rows, []string{"File id", h.FileID})
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
		return nil
	},
}

func runPatch(cmd *cobra.Command, args []string, mode ppf.Mode) error {
	imagePath, patchPath := args[0], args[1]

	result, err := ppf.ApplyFile(imagePath, patchPath, mode)
	if err != nil {
		return fmt.Errorf("failed to %s patch: %w", mode, err)
	}

	out := cmd.OutOrStdout()
	for _, warning := range result.Warnings {
		printStatus(out, "validation", statusWarn, warning)
	}
	printStatus(out, mode.String(), statusOK, fmt.Sprintf("PPF%d.0, %d record(s), %s written to %s",
		result.Version, result.Records, humanize.IBytes(uint64(result.Bytes)), imagePath))
	return nil
}

// ppfApplyCmd applies a patch in place.
var ppfApplyCmd = &cobra.Command{
	Use:   "apply [image_file] [patch_file]",
	Short: "Apply a PPF patch to an image",
	Long: `Apply a PPF patch to a bin or iso image in place.

PPF2.0 and PPF3.0 patches carrying a validation block are checked against the
image first; a mismatch is reported as a warning and patching continues.

Example:
  psiotools ppf apply "Final Fantasy IX (Disc 1).bin" SLES-02080.ppf`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPatch(cmd, args, ppf.Apply)
	},
}

// ppfUndoCmd restores the bytes saved in a PPF3.0 patch.
var ppfUndoCmd = &cobra.Command{
	Use:   "undo [image_file] [patch_file]",
	Short: "Undo a PPF3.0 patch",
	Long: `Restore the original bytes of an image from the undo data of a PPF3.0
patch. Patches without undo data are rejected and the image is left untouched.

Example:
  psiotools ppf undo "Final Fantasy IX (Disc 1).bin" SLES-02080.ppf`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPatch(cmd, args, ppf.Undo)
	},
}

// init initializes the ppf command and its subcommands.
func init() {
	rootCmd.AddCommand(ppfCmd)
	ppfCmd.AddCommand(ppfInfoCmd)
	ppfCmd.AddCommand(ppfApplyCmd)
	ppfCmd.AddCommand(ppfUndoCmd)
}
