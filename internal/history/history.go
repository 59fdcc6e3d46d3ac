// Package history records build outcomes in a SQLite ledger so past runs can
// be inspected later. Recording is best effort: the pipeline treats a failed
// write as a warning, never a build failure.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one builder outcome within one pipeline run.
type Record struct {
	ID         int64
	RunID      string
	Book       string
	Format     string
	Success    bool
	OutputPath string
	DurationMS int64
	CreatedAt  time.Time
}

// Store is a SQLite-backed ledger of build records.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the ledger at dbPath. Use ":memory:" for an
// in-memory database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		book TEXT NOT NULL,
		format TEXT NOT NULL,
		success INTEGER NOT NULL,
		output_path TEXT,
		duration_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_id ON records(run_id);
	CREATE INDEX IF NOT EXISTS idx_book ON records(book);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one builder outcome.
func (s *Store) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO records (run_id, book, format, success, output_path, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.RunID, rec.Book, rec.Format, boolToInt(rec.Success),
		rec.OutputPath, rec.DurationMS, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, book, format, success, output_path, duration_ms, created_at FROM records ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ForBook returns up to limit records for one book, most recent first.
func (s *Store) ForBook(ctx context.Context, book string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, book, format, success, output_path, duration_ms, created_at FROM records WHERE book = ? ORDER BY id DESC LIMIT ?",
		book, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var success int
		var createdAt int64

		err := rows.Scan(&rec.ID, &rec.RunID, &rec.Book, &rec.Format,
			&success, &rec.OutputPath, &rec.DurationMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		rec.Success = success != 0
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
