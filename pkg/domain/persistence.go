package domain

import "context"

// RunStore is the ledger of completed generation runs. Implementations must be
// safe for concurrent use; SaveRun replaces an existing record with the same ID.
type RunStore interface {
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	// ListRuns returns every run ordered by start time, oldest first.
	ListRuns(ctx context.Context) ([]RunRecord, error)
	Close() error
}
