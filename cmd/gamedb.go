// Package cmd provides command-line interface for game identification.
// This file contains the product code scanner and game database commands.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hansbonini/psiotools/pkg/common"
	"github.com/hansbonini/psiotools/pkg/config"
	"github.com/hansbonini/psiotools/pkg/gamedb"
	"github.com/hansbonini/psiotools/pkg/psx"
)

// gameidCmd scans a bin image for its product code.
var gameidCmd = &cobra.Command{
	Use:   "gameid [bin_file]",
	Short: "Find the product code of a disc image",
	Long: `Scan a bin image for the PlayStation product code (for example
SLUS-00594) and look it up in the game database when one is configured.

Example:
  psiotools gameid "Metal Gear Solid (Disc 1).bin"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, found, err := psx.ScanGameIDFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to scan image: %w", err)
		}
		out := cmd.OutOrStdout()
		if !found {
			printStatus(out, "game id", statusWarn, fmt.Sprintf(common.WarnGameIDNotFound, args[0]))
			return nil
		}
		printStatus(out, "game id", statusOK, id)

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		game, ok, err := store.Lookup(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !ok {
			printStatus(out, "database", statusWarn, fmt.Sprintf(common.WarnGameNotInDatabase, id))
			return nil
		}
		printStatus(out, "title", statusOK, game.Name)
		if game.DiscNumber > 0 {
			printStatus(out, "disc", statusInfo, strconv.Itoa(game.DiscNumber))
		}
		if game.LibCrypt {
			printStatus(out, "libcrypt", statusWarn, "disc is LibCrypt protected and needs a patch")
		}
		return nil
	},
}

// gamedbCmd represents the parent command for game database operations.
var gamedbCmd = &cobra.Command{
	Use:   "gamedb",
	Short: "Manage the game database",
	Long: `Manage the SQLite database mapping product codes to titles and disc numbers.

Commands:
  import    Import a game_data list (ID,Name,Disc[,LibCrypt] per line)
  lookup    Show the entry of a product code and the other discs of its title

Examples:
  psiotools gamedb import game_data
  psiotools gamedb lookup SCUS-94163`,
}

// gamedbImportCmd loads a game_data list into the database.
var gamedbImportCmd = &cobra.Command{
	Use:   "import [game_data_file]",
	Short: "Import a game_data list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		imported, err := store.ImportGameDataFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", args[0], err)
		}
		total, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), "import", statusOK, fmt.Sprintf("%d game(s) imported, %d in %s", imported, total, store.Path()))
		return nil
	},
}

// gamedbLookupCmd shows one database entry.
var gamedbLookupCmd = &cobra.Command{
	Use:   "lookup [product_code]",
	Short: "Look up a product code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		game, ok, err := store.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is not in the game database", gamedb.NormalizeID(args[0]))
		}

		discs, err := store.Discs(ctx, game.Name)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(discs))
		for _, d := range discs {
			rows = append(rows, []string{d.ID, d.Name, strconv.Itoa(d.DiscNumber), strconv.FormatBool(d.LibCrypt)})
		}
		headers := []string{"ID", "Name", "Disc", "LibCrypt"}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
		return nil
	},
}

// openStore opens the game database named by the configuration.
func openStore(cmd *cobra.Command) (*gamedb.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openDatabase(cfg)
}

func openDatabase(cfg *config.Config) (*gamedb.Store, error) {
	store, err := gamedb.Open(cfg.Paths.Database)
	if err != nil {
		return nil, common.WrapError(common.ErrFailedToOpenDatabase, err)
	}
	return store, nil
}

// init initializes the game identification commands.
func init() {
	rootCmd.AddCommand(gameidCmd)
	rootCmd.AddCommand(gamedbCmd)
	gamedbCmd.AddCommand(gamedbImportCmd)
	gamedbCmd.AddCommand(gamedbLookupCmd)
}
