package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustSave(t *testing.T, store *Store, r Result) {
	t.Helper()
	if _, err := store.SaveResult(r); err != nil {
		t.Fatalf("SaveResult() failed: %v", err)
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStorePragmasOnEveryConnection(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Hold both connections so the pool cannot hand back the same one.
	var conns []*sql.Conn
	for i := 0; i < 2; i++ {
		conn, err := store.db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn() failed: %v", err)
		}
		defer conn.Close()
		conns = append(conns, conn)
	}

	for i, conn := range conns {
		var timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn %d: reading busy_timeout failed: %v", i, err)
		}
		if timeout != busyTimeoutMS {
			t.Errorf("conn %d: busy_timeout = %d, want %d", i, timeout, busyTimeoutMS)
		}

		var mode string
		if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("conn %d: reading journal_mode failed: %v", i, err)
		}
		if mode != "wal" {
			t.Errorf("conn %d: journal_mode = %q, want wal", i, mode)
		}
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreSaveAndBestResults(t *testing.T) {
	store := openTestStore(t)

	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 5, Duration: 9 * time.Second, Player: "ann"})
	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 3, Duration: 20 * time.Second, Player: "bob"})
	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 3, Duration: 4 * time.Second, Player: "cid"})
	mustSave(t, store, Result{SetID: "classic", Level: 2, Moves: 1})
	mustSave(t, store, Result{SetID: "other", Level: 1, Moves: 1})

	results, err := store.BestResults("classic", 1, 10)
	if err != nil {
		t.Fatalf("BestResults() failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	// Fewest moves first, ties by duration
	wantPlayers := []string{"cid", "bob", "ann"}
	for i, want := range wantPlayers {
		if results[i].Player != want {
			t.Errorf("result %d: expected player %q, got %q", i, want, results[i].Player)
		}
	}
	if results[0].Duration != 4*time.Second {
		t.Errorf("Expected duration 4s, got %v", results[0].Duration)
	}
	if results[0].SetID != "classic" || results[0].Level != 1 {
		t.Errorf("unexpected result identity: %+v", results[0])
	}
}

func TestStoreBestResultsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 1; i <= 15; i++ {
		mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: i})
	}

	results, err := store.BestResults("classic", 1, 5)
	if err != nil {
		t.Fatalf("BestResults() failed: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("Expected 5 results, got %d", len(results))
	}

	// Zero limit falls back to 10
	results, err = store.BestResults("classic", 1, 0)
	if err != nil {
		t.Fatalf("BestResults() failed: %v", err)
	}
	if len(results) != 10 {
		t.Errorf("Expected 10 results, got %d", len(results))
	}
}

func TestStoreBestMoves(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.BestMoves("classic", 1)
	if err != nil {
		t.Fatalf("BestMoves() failed: %v", err)
	}
	if ok {
		t.Error("Expected no best for unsolved level")
	}

	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 7})
	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 4})

	best, ok, err := store.BestMoves("classic", 1)
	if err != nil {
		t.Fatalf("BestMoves() failed: %v", err)
	}
	if !ok || best != 4 {
		t.Errorf("Expected best 4, got %d (ok=%v)", best, ok)
	}
}

func TestStoreSolvedLevels(t *testing.T) {
	store := openTestStore(t)

	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 7})
	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 2})
	mustSave(t, store, Result{SetID: "classic", Level: 3, Moves: 9})

	solved, err := store.SolvedLevels("classic")
	if err != nil {
		t.Fatalf("SolvedLevels() failed: %v", err)
	}
	if len(solved) != 2 || solved[1] != 2 || solved[3] != 9 {
		t.Errorf("unexpected solved levels: %v", solved)
	}
}

func TestStoreSaveRejectsInvalid(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveResult(Result{Level: 1, Moves: 1}); err == nil {
		t.Error("Expected error for missing set ID")
	}
	if _, err := store.SaveResult(Result{SetID: "classic", Level: 1, Moves: -1}); err == nil {
		t.Error("Expected error for negative moves")
	}
}

func TestStoreClearResults(t *testing.T) {
	store := openTestStore(t)

	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 3})
	mustSave(t, store, Result{SetID: "other", Level: 1, Moves: 3})

	if err := store.ClearResults("classic"); err != nil {
		t.Fatalf("ClearResults() failed: %v", err)
	}

	results, err := store.SetResults("classic")
	if err != nil {
		t.Fatalf("SetResults() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 results after clear, got %d", len(results))
	}

	results, err = store.SetResults("other")
	if err != nil {
		t.Fatalf("SetResults() failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Other set should keep its results, got %d", len(results))
	}
}

func TestStoreSetStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.GetSetStats("classic")
	if err != nil {
		t.Fatalf("GetSetStats() failed: %v", err)
	}
	if stats.Plays != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("Expected empty stats, got %+v", stats)
	}

	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 2})
	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 4})
	mustSave(t, store, Result{SetID: "classic", Level: 2, Moves: 6})

	stats, err = store.GetSetStats("classic")
	if err != nil {
		t.Fatalf("GetSetStats() failed: %v", err)
	}
	if stats.Plays != 3 {
		t.Errorf("Expected 3 plays, got %d", stats.Plays)
	}
	if stats.Solved != 2 {
		t.Errorf("Expected 2 solved levels, got %d", stats.Solved)
	}
	if stats.TotalMoves != 12 || stats.AvgMoves != 4 {
		t.Errorf("Expected total 12 avg 4, got %d avg %v", stats.TotalMoves, stats.AvgMoves)
	}
}

func TestStoreAllSetStats(t *testing.T) {
	store := openTestStore(t)

	mustSave(t, store, Result{SetID: "classic", Level: 1, Moves: 2})
	mustSave(t, store, Result{SetID: "tutorial", Level: 1, Moves: 1})
	mustSave(t, store, Result{SetID: "tutorial", Level: 2, Moves: 3})

	all, err := store.GetAllSetStats()
	if err != nil {
		t.Fatalf("GetAllSetStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 sets, got %d", len(all))
	}
	if all["tutorial"].Plays != 2 || all["tutorial"].Solved != 2 {
		t.Errorf("unexpected tutorial stats: %+v", all["tutorial"])
	}
}
