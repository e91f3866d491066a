// Package cmd provides command-line interface for CU2 sheet generation.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hansbonini/psiotools/pkg/cu2"
)

// cu2Cmd represents the parent command for CU2 sheet operations.
var cu2Cmd = &cobra.Command{
	Use:   "cu2",
	Short: "Generate PSIO CU2 sheets",
	Long: `Generate the CU2 sheet the PSIO firmware reads instead of a cue sheet.

Commands:
  generate  Write <image>.cu2 next to a cue sheet

Examples:
  psiotools cu2 generate game.cue game.bin`,
}

// cu2GenerateCmd converts a single-file cue sheet into a CU2 sheet.
var cu2GenerateCmd = &cobra.Command{
	Use:   "generate [cue_file] [bin_file]",
	Short: "Generate a CU2 sheet from a cue sheet",
	Long: `Generate a CU2 sheet from a single-file MODE2/2352 cue sheet.

The bin file is looked up in the directory of the cue sheet; only its size
is read. The CU2 sheet is written next to it and the cue sheet is removed
afterwards unless --keep-cue is given. Multi-bin images must be merged first
(see 'psiotools cue merge').

Example:
  psiotools cu2 generate "Game.cue" "Game.bin"
  psiotools cu2 generate --keep-cue "Game.cue" "Game.bin"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		keepCue, err := cmd.Flags().GetBool("keep-cue")
		if err != nil {
			return fmt.Errorf("error getting keep-cue flag: %w", err)
		}

		generator := &cu2.Generator{KeepCue: keepCue}
		result, err := generator.Generate(args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to generate CU2 sheet: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, warning := range result.Sheet.Warnings {
			printStatus(out, "pregap", statusWarn, warning)
		}
		printStatus(out, "cu2", statusOK, fmt.Sprintf("%s (%d track(s))", result.Path, result.Sheet.Tracks))
		return nil
	},
}

// init initializes the cu2 command and its subcommands.
func init() {
	rootCmd.AddCommand(cu2Cmd)
	cu2Cmd.AddCommand(cu2GenerateCmd)

	cu2GenerateCmd.Flags().Bool("keep-cue", false, "Keep the cue sheet after the CU2 sheet is written")
}
