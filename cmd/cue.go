// Package cmd provides command-line interface for cue sheet processing.
// This file contains commands for inspecting cue sheets and merging the
// track files of multi-bin disc images.
package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hansbonini/psiotools/pkg/binmerge"
	"github.com/hansbonini/psiotools/pkg/common"
	"github.com/hansbonini/psiotools/pkg/cue"
)

// cueCmd represents the parent command for all cue sheet operations.
var cueCmd = &cobra.Command{
	Use:   "cue",
	Short: "Process cue sheets of PlayStation disc images",
	Long: `Process cue sheets describing PlayStation disc images.

Commands:
  inspect   Show the files, tracks and indexes of a cue sheet
  merge     Merge the bin files of a multi-bin image into one bin

Examples:
  psiotools cue inspect game.cue
  psiotools cue merge game.cue "Game Name" ./output/`,
}

// cueInspectCmd prints the parsed File/Track/Index model of a cue sheet.
var cueInspectCmd = &cobra.Command{
	Use:   "inspect [cue_file]",
	Short: "Show the structure of a cue sheet",
	Long: `Parse a cue sheet, resolve the bin files it references and show every
track with its indexes.

For each index the table lists the timecode as written in the cue sheet,
the sector offset inside its file, the timecode once the files are laid end
to end (as a merged cue sheet would carry it) and the absolute MSF position
including the two second lead-in.

Example:
  psiotools cue inspect "Final Fantasy VII (Disc 1).cue"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, err := cue.Parse(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse cue sheet: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cue sheet: %s\n", sheet.Path)
		fmt.Fprintf(out, "Files: %d  Tracks: %d  Blocksize: %d  Size: %s\n\n",
			len(sheet.Files), sheet.TrackCount(), sheet.BlockSize, humanize.IBytes(uint64(sheet.TotalSize())))

		headers := []string{"File", "Track", "Type", "Index", "Timecode", "Sector", "Disc", "MSF", "Length"}
		aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignRight}
		var rows [][]string
		var fileStart int64
		for _, f := range sheet.Files {
			for _, track := range f.Tracks {
				length := ""
				if track.HasLength {
					length = humanize.Comma(int64(track.Length))
				}
				for _, idx := range track.Indexes {
					lba, err := common.SafeInt64ToUint32(fileStart + int64(idx.Sectors))
					if err != nil {
						return err
					}
					disc, err := common.AddSectors(idx.Timecode, int(fileStart))
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						filepath.Base(f.Path),
						fmt.Sprintf("%02d", track.Number),
						string(track.Type),
						fmt.Sprintf("%02d", idx.ID),
						idx.Timecode,
						strconv.Itoa(idx.Sectors),
						disc,
						common.LBAToMSF(lba),
						length,
					})
				}
			}
			if sheet.BlockSize > 0 {
				fileStart += f.Size / int64(sheet.BlockSize)
			}
		}
		fmt.Fprintln(out, renderTable(headers, rows, aligns))
		return nil
	},
}

// cueMergeCmd merges the bin files of a multi-bin image.
var cueMergeCmd = &cobra.Command{
	Use:   "merge [cue_file] [name] [output_directory]",
	Short: "Merge a multi-bin image into a single bin and cue sheet",
	Long: `Concatenate every bin file referenced by a cue sheet into <name>.bin and
write <name>.cue with the index positions recomputed for the single file.

The output directory must exist and neither output file may be present.

Example:
  psiotools cue merge "Game (USA).cue" "Game" ./output/`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cuePath, name, outDir := args[0], args[1], args[2]

		sheet, err := cue.Parse(cuePath)
		if err != nil {
			return fmt.Errorf("failed to parse cue sheet: %w", err)
		}

		opts := binmerge.Options{}
		bar := newProgress(sheet.TotalSize(), "merging")
		if bar != nil {
			opts.Progress = bar
		}
		result, err := binmerge.MergeWithOptions(sheet, name, outDir, opts)
		if bar != nil {
			bar.Close()
		}
		if err != nil {
			return fmt.Errorf("failed to merge %s: %w", cuePath, err)
		}

		out := cmd.OutOrStdout()
		printStatus(out, "bin", statusOK, fmt.Sprintf("%s (%s)", result.BinPath, humanize.IBytes(uint64(result.Size))))
		printStatus(out, "cue", statusOK, result.CuePath)
		return nil
	},
}

// init initializes the cue command and its subcommands.
func init() {
	rootCmd.AddCommand(cueCmd)
	cueCmd.AddCommand(cueInspectCmd)
	cueCmd.AddCommand(cueMergeCmd)
}
