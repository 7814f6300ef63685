package blob

import (
	"context"
	"fmt"
	"os"

	infraS3 "latticegen/internal/infra/blob/s3"
)

// Open selects a Store implementation using environment variables.
//
//	LATTICEGEN_BLOB_DRIVER: fs|s3|memory (default fs)
//	LATTICEGEN_BLOB_FS_ROOT: directory root when driver=fs (default ./artifacts)
//	(S3 specific variables documented in internal/infra/blob/s3)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("LATTICEGEN_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("LATTICEGEN_BLOB_FS_ROOT"))
	case DriverS3:
		s, err := infraS3.OpenFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}
