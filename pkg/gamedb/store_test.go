package gamedb

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "games.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store.Upsert(ctx, Game{ID: "SLUS-00594", Name: "Metal Gear Solid", DiscNumber: 1}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := Game{ID: "SLES-02080", Name: "Final Fantasy IX", DiscNumber: 1, LibCrypt: true}
	if err := store.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	testCases := []struct {
		name  string
		id    string
		found bool
	}{
		{"exact", "SLES-02080", true},
		{"underscore", "sles_02080", true},
		{"missing", "SLUS-99999", false},
		{"empty", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, found, err := store.Lookup(ctx, tc.id)
			if err != nil {
				t.Fatalf("Lookup() failed: %v", err)
			}
			if found != tc.found {
				t.Fatalf("Lookup(%q) found = %v, want %v", tc.id, found, tc.found)
			}
			if found && *g != want {
				t.Errorf("Lookup(%q) = %+v, want %+v", tc.id, *g, want)
			}
		})
	}
}

func TestUpsert_Replaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Upsert(ctx, Game{ID: "SCUS-94163", Name: "Old Name"})
	if err := store.Upsert(ctx, Game{ID: "SCUS-94163", Name: "Final Fantasy VII", DiscNumber: 1}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	g, _, _ := store.Lookup(context.Background(), "SCUS-94163")
	if g.Name != "Final Fantasy VII" || g.DiscNumber != 1 {
		t.Errorf("Lookup() = %+v", g)
	}
	if count, _ := store.Count(ctx); count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestImportGameData(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	data := strings.Join([]string{
		"SCUS-94163,Final Fantasy VII,1",
		"SCUS-94164,Final Fantasy VII,2",
		"SCUS-94165,Final Fantasy VII,3",
		"SLUS-00001, Spaced Name ,0",
		`SLES-12345,"Title, With Comma",0`,
		"SLES-02080,Final Fantasy IX,1,1",
		"not a game line",
		"SLUS-00002,Bad Disc,x",
		"",
	}, "\n")

	imported, err := store.ImportGameData(ctx, strings.NewReader(data))
	if err != nil {
		t.Fatalf("ImportGameData() failed: %v", err)
	}
	if imported != 6 {
		t.Errorf("ImportGameData() = %d, want 6", imported)
	}

	g, found, _ := store.Lookup(ctx, "SLUS-00001")
	if !found || g.Name != "Spaced Name" {
		t.Errorf("Lookup(SLUS-00001) = %+v", g)
	}
	g, found, _ = store.Lookup(ctx, "SLES-12345")
	if !found || g.Name != "Title, With Comma" {
		t.Errorf("Lookup(SLES-12345) = %+v", g)
	}
	g, _, _ = store.Lookup(ctx, "SLES-02080")
	if !g.LibCrypt {
		t.Error("SLES-02080 should be marked as LibCrypt protected")
	}

	discs, err := store.Discs(ctx, "Final Fantasy VII")
	if err != nil {
		t.Fatalf("Discs() failed: %v", err)
	}
	if len(discs) != 3 || discs[0].DiscNumber != 1 || discs[2].ID != "SCUS-94165" {
		t.Errorf("Discs() = %+v", discs)
	}
}

func TestParseGameDataLine(t *testing.T) {
	testCases := []struct {
		name   string
		fields []string
		ok     bool
		want   Game
	}{
		{"three fields", []string{"SLUS-00594", "Metal Gear Solid", "1"}, true, Game{ID: "SLUS-00594", Name: "Metal Gear Solid", DiscNumber: 1}},
		{"libcrypt", []string{"SLES-02080", "FF IX", "1", "yes"}, true, Game{ID: "SLES-02080", Name: "FF IX", DiscNumber: 1, LibCrypt: true}},
		{"no libcrypt", []string{"SLES-02080", "FF IX", "1", "0"}, true, Game{ID: "SLES-02080", Name: "FF IX", DiscNumber: 1}},
		{"too few", []string{"SLUS-00594", "Metal Gear Solid"}, false, Game{}},
		{"too many", []string{"a", "b", "1", "1", "x"}, false, Game{}},
		{"negative disc", []string{"SLUS-00594", "Metal Gear Solid", "-1"}, false, Game{}},
		{"empty name", []string{"SLUS-00594", " ", "1"}, false, Game{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseGameDataLine(tc.fields)
			if ok != tc.ok {
				t.Fatalf("ParseGameDataLine() ok = %v, want %v", ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("ParseGameDataLine() = %+v, want %+v", got, tc.want)
			}
		})
	}
}
