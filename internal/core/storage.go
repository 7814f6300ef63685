package core

import (
	"context"
	"fmt"
	"os"

	"latticegen/internal/infra/persistence/memory"
	"latticegen/internal/infra/persistence/postgres"
	"latticegen/internal/infra/persistence/sqlite"
	"latticegen/pkg/domain"
)

// StorageDriver identifies a run ledger implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

type (
	// RunStore persists one record per successful run.
	RunStore = domain.RunStore
	// RunRecord is the persisted summary of a run.
	RunRecord = domain.RunRecord
)

// OpenRunStore selects a ledger backend using environment variables.
// Defaults to memory when unset, so a plain run leaves nothing on disk
// besides its artifacts.
//
//	LATTICEGEN_STORAGE_DRIVER: memory|sqlite|postgres (default memory)
//	LATTICEGEN_SQLITE_PATH: path to sqlite file (default ./latticegen.db)
//	LATTICEGEN_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenRunStore(ctx context.Context) (RunStore, error) {
	driver := os.Getenv("LATTICEGEN_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageMemory)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		s, err := sqlite.NewStore(os.Getenv("LATTICEGEN_SQLITE_PATH"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case StoragePostgres:
		s, err := postgres.NewStore(ctx, os.Getenv("LATTICEGEN_POSTGRES_DSN"))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
