package gamedb

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hansbonini/psiotools/pkg/common"
)

// ParseGameDataLine parses one line of the game_data list:
//
//	SLUS-00594,Metal Gear Solid,1
//	SLES-02080,Final Fantasy IX,1,1
//
// The optional fourth field marks LibCrypt protected discs.
func ParseGameDataLine(fields []string) (Game, bool) {
	if len(fields) < 3 || len(fields) > 4 {
		return Game{}, false
	}
	id := NormalizeID(fields[0])
	name := strings.TrimSpace(fields[1])
	disc, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if id == "" || name == "" || err != nil || disc < 0 {
		return Game{}, false
	}

	g := Game{ID: id, Name: name, DiscNumber: disc}
	if len(fields) == 4 {
		g.LibCrypt = parseFlag(fields[3])
	}
	return g, true
}

func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "y", "yes", "true", "libcrypt":
		return true
	}
	return false
}

// ImportGameData reads game_data lines from r into the database in a single
// transaction. Malformed lines are logged and skipped. It returns the number
// of games written.
func (s *Store) ImportGameData(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	imported := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				common.LogWarn(common.WarnSkippingGameDataRow, parseErr.Line, parseErr.Err.Error())
				continue
			}
			return imported, fmt.Errorf("read game data: %w", err)
		}

		g, ok := ParseGameDataLine(fields)
		if !ok {
			line, _ := reader.FieldPos(0)
			common.LogWarn(common.WarnSkippingGameDataRow, line, strings.Join(fields, ","))
			continue
		}
		if err := upsert(ctx, tx, g); err != nil {
			return imported, err
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return imported, fmt.Errorf("commit import: %w", err)
	}
	common.LogInfo(common.InfoGameDataImported, imported, s.path)
	return imported, nil
}

// ImportGameDataFile imports the game_data list at path.
func (s *Store) ImportGameDataFile(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return s.ImportGameData(ctx, file)
}
