package levels

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/bottle-sort/internal/engine"
	"github.com/vovakirdan/bottle-sort/internal/registry"
)

func testdataPath(name string) string {
	return filepath.Join("testdata", "sets", name)
}

func TestLoadFileYAML(t *testing.T) {
	loader := NewLoader(engine.DefaultBoard(), nil)

	set, err := loader.LoadFile(testdataPath("tutorial.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if set.ID() != "tutorial" {
		t.Errorf("expected ID 'tutorial', got %q", set.ID())
	}
	if set.Title() != "Tutorial" {
		t.Errorf("expected title 'Tutorial', got %q", set.Title())
	}
	if set.Board() != engine.DefaultBoard() {
		t.Errorf("expected default board, got %+v", set.Board())
	}

	lvls := set.Levels()
	if len(lvls) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(lvls))
	}
	// Sorted by number regardless of file order.
	if lvls[0].Level != 1 || lvls[1].Level != 2 {
		t.Errorf("levels not sorted: %d, %d", lvls[0].Level, lvls[1].Level)
	}
	if lvls[1].Bottles[2].Row != 1 {
		t.Errorf("expected bottle 3 on row 1, got %d", lvls[1].Bottles[2].Row)
	}
}

func TestLoadFileJSONBoardAndFallbackID(t *testing.T) {
	loader := NewLoader(engine.DefaultBoard(), nil)

	set, err := loader.LoadFile(testdataPath("wide.json"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if set.ID() != "wide" {
		t.Errorf("expected ID from file name, got %q", set.ID())
	}
	if set.Board() != (engine.Board{Rows: 1, Cols: 8}) {
		t.Errorf("expected 1x8 board, got %+v", set.Board())
	}
	if set.Path() != testdataPath("wide.json") {
		t.Errorf("unexpected path %q", set.Path())
	}
}

func TestLoadFileRejectsInvalidLevel(t *testing.T) {
	loader := NewLoader(engine.DefaultBoard(), nil)

	_, err := loader.LoadFile(testdataPath("broken.yaml"))
	if err == nil {
		t.Fatal("expected error for over-capacity bottle")
	}
	if !errors.Is(err, engine.ErrInvalidLevelData) {
		t.Errorf("expected ErrInvalidLevelData, got %v", err)
	}

	var lde *engine.LevelDataError
	if !errors.As(err, &lde) || lde.Code != engine.CodeOverCapacity {
		t.Errorf("expected %s, got %v", engine.CodeOverCapacity, err)
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	loader := NewLoader(engine.DefaultBoard(), nil)
	if _, err := loader.LoadFile(testdataPath("notes.txt")); err == nil {
		t.Error("expected error for .txt file")
	}
}

func TestLoadDirSkipsInvalid(t *testing.T) {
	loader := NewLoader(engine.DefaultBoard(), nil)

	sets, err := loader.LoadDir(filepath.Join("testdata", "sets"))
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	if len(sets) != 2 {
		t.Fatalf("expected 2 valid sets, got %d", len(sets))
	}
	if sets[0].ID() != "tutorial" || sets[1].ID() != "wide" {
		t.Errorf("unexpected order: %s, %s", sets[0].ID(), sets[1].ID())
	}
}

func TestScanReportsFailures(t *testing.T) {
	loader := NewLoader(engine.DefaultBoard(), nil)

	sets, failed, err := loader.Scan(filepath.Join("testdata", "sets"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(sets) != 2 {
		t.Errorf("expected 2 valid sets, got %d", len(sets))
	}
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed file, got %d", len(failed))
	}
	if filepath.Base(failed[0].Path) != "broken.yaml" {
		t.Errorf("failed path = %s, want broken.yaml", failed[0].Path)
	}
	if !errors.Is(failed[0], engine.ErrInvalidLevelData) {
		t.Errorf("failure should unwrap to ErrInvalidLevelData: %v", failed[0].Err)
	}
}

func TestLoadDirMissing(t *testing.T) {
	loader := NewLoader(engine.DefaultBoard(), nil)
	if _, err := loader.LoadDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestValidateReportsDuplicateLevels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.yaml")
	doc := `id: dup
levels:
  - level: 1
    bottles:
      - { id: 1, position: { row: 0, col: 0 }, blocks: [1], lockStatus: 0 }
  - level: 1
    bottles:
      - { id: 1, position: { row: 9, col: 0 }, blocks: [1], lockStatus: 0 }
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(engine.DefaultBoard(), nil)
	_, err := loader.LoadFile(path)
	if !errors.Is(err, ErrDuplicateLevel) {
		t.Errorf("expected ErrDuplicateLevel, got %v", err)
	}
	// Both problems are reported together.
	if !errors.Is(err, engine.ErrInvalidLevelData) {
		t.Errorf("expected ErrInvalidLevelData alongside, got %v", err)
	}
}

func TestBuiltinClassic(t *testing.T) {
	set, err := Builtin("classic")
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}

	if len(set.Levels()) == 0 {
		t.Fatal("classic set has no levels")
	}
	for _, lvl := range set.Levels() {
		if _, err := engine.NewLevel(lvl, set.Board()); err != nil {
			t.Errorf("level %d: %v", lvl.Level, err)
		}
	}

	if _, err := Builtin("nope"); err == nil {
		t.Error("expected error for unknown built-in")
	}
}

func TestClassicRegistered(t *testing.T) {
	if !registry.Exists("classic") {
		t.Fatal("classic not registered")
	}
	set, err := registry.Open("classic")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	next, ok := registry.Next(set, 1)
	if !ok || next.Level != 2 {
		t.Errorf("expected level 2 after 1, got %d (%v)", next.Level, ok)
	}
	last := set.Levels()[len(set.Levels())-1]
	if _, ok := registry.Next(set, last.Level); ok {
		t.Error("expected no level after the last one")
	}
}

func TestRegisterPath(t *testing.T) {
	loader := NewLoader(engine.DefaultBoard(), nil)

	ids, err := loader.RegisterPath(testdataPath("wide.json"))
	if err != nil {
		t.Fatalf("RegisterPath failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "wide" {
		t.Fatalf("unexpected ids %v", ids)
	}

	// Second registration is skipped, not fatal.
	ids, err = loader.RegisterPath(testdataPath("wide.json"))
	if err != nil {
		t.Fatalf("RegisterPath failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected duplicate to be skipped, got %v", ids)
	}

	set, err := registry.Open("wide")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := registry.Find(set, 1); !ok {
		t.Error("level 1 not found in wide set")
	}
}
