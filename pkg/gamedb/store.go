// Package gamedb stores the PlayStation title list used to name processed
// games: product code, title, disc number and whether the disc is protected
// with LibCrypt and needs a patch.
//
// The database is SQLite. It is filled from the plain text game_data list with
// ImportGameData and read with Lookup.
package gamedb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/hansbonini/psiotools/pkg/common"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Game is one disc of the title list.
type Game struct {
	ID         string // product code, e.g. SLUS-00594
	Name       string
	DiscNumber int // 0 for single disc titles
	LibCrypt   bool
}

// Store is the SQLite backed title list.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, common.WrapError(common.ErrFailedToOpenDatabase, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(common.ErrFailedToOpenDatabase, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup returns the game with the given product code.
func (s *Store) Lookup(ctx context.Context, id string) (*Game, bool, error) {
	id = NormalizeID(id)
	if id == "" {
		return nil, false, nil
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, disc_number, libcrypt FROM games WHERE id = ?`, id)
	var g Game
	if err := row.Scan(&g.ID, &g.Name, &g.DiscNumber, &g.LibCrypt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup %s: %w", id, err)
	}
	return &g, true, nil
}

// Upsert inserts a game or replaces the entry with the same product code.
func (s *Store) Upsert(ctx context.Context, g Game) error {
	return upsert(ctx, s.db, g)
}

// Count returns the number of games in the database.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM games`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return count, nil
}

// Discs returns every disc stored under name, ordered by disc number.
func (s *Store) Discs(ctx context.Context, name string) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, disc_number, libcrypt FROM games WHERE name = ? ORDER BY disc_number, id`, name)
	if err != nil {
		return nil, fmt.Errorf("list discs: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Name, &g.DiscNumber, &g.LibCrypt); err != nil {
			return nil, fmt.Errorf("scan disc: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, g Game) error {
	id := NormalizeID(g.ID)
	if id == "" {
		return errors.New("game id is empty")
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO games (id, name, disc_number, libcrypt) VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             name = excluded.name,
             disc_number = excluded.disc_number,
             libcrypt = excluded.libcrypt`,
		id, strings.TrimSpace(g.Name), g.DiscNumber, g.LibCrypt)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", id, err)
	}
	return nil
}

// NormalizeID upper-cases a product code and writes it with a dash, the form
// stored in the database.
func NormalizeID(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	return strings.Replace(id, "_", "-", 1)
}

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	sort.Strings(versions)

	migrations := make([]migration, 0, len(versions))
	for _, name := range versions {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	return migrations, nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version).Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}
