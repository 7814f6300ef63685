// Package postgres implements the run ledger on PostgreSQL through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"latticegen/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ domain.RunStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/latticegen?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store keeps one JSONB row per run.
type Store struct {
	db *sql.DB
}

// NewStore connects with dsn (defaultDSN when empty) and ensures the runs table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	ddl := `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure runs table: %w", err)
	}
	return &Store{db: db}, nil
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
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs(id,started_at,payload) VALUES($1,$2,$3) ON CONFLICT(id) DO UPDATE SET started_at=EXCLUDED.started_at, payload=EXCLUDED.payload`,
		run.ID, run.StartedAt.UTC(), payload); err != nil {
		return fmt.Errorf("upsert run %s: %w", run.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// GetRun loads one record.
func (s *Store) GetRun(ctx context.Context, id string) (domain.RunRecord, bool, error) {
	runs, err := s.query(ctx, `SELECT id, payload FROM runs WHERE id = $1`, id)
	if err != nil {
		return domain.RunRecord{}, false, err
	}
	for _, run := range runs {
		if run.ID == id {
			return run, true, nil
		}
	}
	return domain.RunRecord{}, false, nil
}

// ListRuns returns every record, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]domain.RunRecord, error) {
	runs, err := s.query(ctx, `SELECT id, payload FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, err
	}
	domain.SortRuns(runs)
	return runs, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]domain.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var runs []domain.RunRecord
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
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
	return runs, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
