// Package blob is the artifact store facade. Callers depend on Store; the
// concrete drivers live under internal/infra/blob and are only reachable
// through the constructors here.
package blob

import (
	"context"

	"latticegen/internal/blob/core"
	"latticegen/internal/infra/blob/fs"
	memorystore "latticegen/internal/infra/blob/memory"
	infraS3 "latticegen/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
	// S3Config configures the S3 driver.
	S3Config = infraS3.Config
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	// ErrExists is returned by Put for an existing key.
	ErrExists = core.ErrExists
	// ErrNotFound is returned for a missing key.
	ErrNotFound = core.ErrNotFound
)

// NewFilesystem returns a store writing artifacts under root.
func NewFilesystem(root string) (Store, error) {
	s, err := fs.New(root)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemory returns an in-memory store suitable for tests.
func NewMemory() Store { return memorystore.New() }

// NewS3 returns a store backed by the configured bucket.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	s, err := infraS3.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewMockS3ForTests returns an S3 store talking to an in-memory fake bucket.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
