// Package memory implements the run ledger in process memory.
package memory

import (
	"context"
	"sync"

	"latticegen/pkg/domain"
)

var _ domain.RunStore = (*Store)(nil)

// Store keeps run records in a map. Records are copied on the way in and out.
type Store struct {
	mu   sync.RWMutex
	runs map[string]domain.RunRecord
}

// NewStore returns an empty ledger.
func NewStore() *Store {
	return &Store{runs: make(map[string]domain.RunRecord)}
}

// SaveRun inserts or replaces the record.
func (s *Store) SaveRun(_ context.Context, run domain.RunRecord) error {
	if err := run.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.runs[run.ID] = run.Clone()
	s.mu.Unlock()
	return nil
}

// GetRun looks a record up by id.
func (s *Store) GetRun(_ context.Context, id string) (domain.RunRecord, bool, error) {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return domain.RunRecord{}, false, nil
	}
	return run.Clone(), true, nil
}

// ListRuns returns all records, oldest first.
func (s *Store) ListRuns(_ context.Context) ([]domain.RunRecord, error) {
	s.mu.RLock()
	out := make([]domain.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run.Clone())
	}
	s.mu.RUnlock()
	domain.SortRuns(out)
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
