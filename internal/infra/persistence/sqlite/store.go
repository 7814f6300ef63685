// Package sqlite implements the run ledger on a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"latticegen/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.RunStore = (*Store)(nil)

// DefaultPath is used when no database path is configured.
const DefaultPath = "latticegen.db"

// Store keeps one row per run with the record encoded as JSON.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the ledger at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// SaveRun upserts the record.
func (s *Store) SaveRun(ctx context.Context, run domain.RunRecord) error {
	if err := run.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(id,started_at,payload) VALUES(?,?,?) ON CONFLICT(id) DO UPDATE SET started_at=excluded.started_at, payload=excluded.payload`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), payload); err != nil {
		return fmt.Errorf("upsert run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads one record.
func (s *Store) GetRun(ctx context.Context, id string) (domain.RunRecord, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RunRecord{}, false, nil
	}
	if err != nil {
		return domain.RunRecord{}, false, fmt.Errorf("select run %s: %w", id, err)
	}
	var run domain.RunRecord
	if err := json.Unmarshal(payload, &run); err != nil {
		return domain.RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

// ListRuns returns every record, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]domain.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var runs []domain.RunRecord
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var run domain.RunRecord
		if err := json.Unmarshal(payload, &run); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", id, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	domain.SortRuns(runs)
	return runs, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
