// Package storage provides SQLite-based persistence for solved-level results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for result persistence.
type Store struct {
	db *sql.DB
}

// Result is one solved level.
type Result struct {
	ID        int64
	SetID     string
	Level     int
	Moves     int
	Duration  time.Duration
	Player    string
	CreatedAt time.Time
}

// SetStats contains aggregated statistics for a level set.
type SetStats struct {
	SetID      string
	Plays      int
	Solved     int // distinct levels solved at least once
	TotalMoves int64
	AvgMoves   float64
	LastPlayed time.Time
}

// busyTimeoutMS is how long a connection waits on a locked database before
// SQLITE_BUSY. SSH sessions share one database file.
const busyTimeoutMS = 5000

var dsnPragmas = fmt.Sprintf("?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", busyTimeoutMS)

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			set_id TEXT NOT NULL,
			level INTEGER NOT NULL,
			moves INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			player TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_level ON results(set_id, level);
		CREATE INDEX IF NOT EXISTS idx_results_best ON results(set_id, level, moves ASC, duration_ms ASC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveResult records a solved level.
// Returns the ID of the inserted record.
func (s *Store) SaveResult(r Result) (int64, error) {
	if r.SetID == "" || r.Level < 0 || r.Moves < 0 {
		return 0, fmt.Errorf("storage: invalid result %+v", r)
	}

	var id int64
	err := retryOp(defaultRetryConfig, func() error {
		res, err := s.db.Exec(
			"INSERT INTO results (set_id, level, moves, duration_ms, player) VALUES (?, ?, ?, ?, ?)",
			r.SetID, r.Level, r.Moves, r.Duration.Milliseconds(), r.Player,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save result: %w", err)
	}

	return id, nil
}

// BestResults retrieves the top N results for a level.
// Fewer moves rank first; ties go to the faster solve.
func (s *Store) BestResults(setID string, level, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, set_id, level, moves, duration_ms, player, created_at
		 FROM results
		 WHERE set_id = ? AND level = ?
		 ORDER BY moves ASC, duration_ms ASC, id ASC
		 LIMIT ?`,
		setID, level, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// SetResults retrieves all results for a set, newest first.
func (s *Store) SetResults(setID string) ([]Result, error) {
	rows, err := s.db.Query(
		`SELECT id, set_id, level, moves, duration_ms, player, created_at
		 FROM results
		 WHERE set_id = ?
		 ORDER BY id DESC`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// BestMoves returns the lowest move count for a level.
// ok is false if the level has never been solved.
func (s *Store) BestMoves(setID string, level int) (moves int, ok bool, err error) {
	var best sql.NullInt64
	err = s.db.QueryRow(
		"SELECT MIN(moves) FROM results WHERE set_id = ? AND level = ?",
		setID, level,
	).Scan(&best)
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query best moves: %w", err)
	}

	if !best.Valid {
		return 0, false, nil
	}
	return int(best.Int64), true, nil
}

// SolvedLevels returns the best move count for every solved level of a set.
func (s *Store) SolvedLevels(setID string) (map[int]int, error) {
	rows, err := s.db.Query(
		"SELECT level, MIN(moves) FROM results WHERE set_id = ? GROUP BY level",
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query solved levels: %w", err)
	}
	defer rows.Close()

	solved := make(map[int]int)
	for rows.Next() {
		var level, moves int
		if err := rows.Scan(&level, &moves); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		solved[level] = moves
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return solved, nil
}

// ClearResults deletes all results for the given set.
func (s *Store) ClearResults(setID string) error {
	err := retryOp(defaultRetryConfig, func() error {
		_, err := s.db.Exec("DELETE FROM results WHERE set_id = ?", setID)
		return err
	})
	if err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

// GetSetStats retrieves aggregated statistics for a specific set.
func (s *Store) GetSetStats(setID string) (*SetStats, error) {
	stats := &SetStats{SetID: setID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COUNT(DISTINCT level), COALESCE(SUM(moves), 0), COALESCE(AVG(moves), 0)
		 FROM results WHERE set_id = ?`,
		setID,
	).Scan(&stats.Plays, &stats.Solved, &stats.TotalMoves, &stats.AvgMoves)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get set stats: %w", err)
	}

	// Get last played
	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM results WHERE set_id = ? ORDER BY id DESC LIMIT 1`,
		setID,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// GetAllSetStats retrieves statistics for every set that has results.
func (s *Store) GetAllSetStats() (map[string]*SetStats, error) {
	rows, err := s.db.Query(
		`SELECT set_id, COUNT(*), COUNT(DISTINCT level), SUM(moves), AVG(moves), MAX(created_at)
		 FROM results
		 GROUP BY set_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all set stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*SetStats)
	for rows.Next() {
		var st SetStats
		var lastPlayed any
		if err := rows.Scan(&st.SetID, &st.Plays, &st.Solved, &st.TotalMoves, &st.AvgMoves, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.SetID] = &st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		var durationMS int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.SetID, &r.Level, &r.Moves, &durationMS, &r.Player, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// parseTime handles both time.Time and string datetime columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
