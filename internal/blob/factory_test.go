package blob

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	ctx := context.Background()

	t.Setenv("LATTICEGEN_BLOB_DRIVER", "")
	t.Setenv("LATTICEGEN_BLOB_FS_ROOT", t.TempDir())
	s, err := Open(ctx)
	if err != nil || s.Driver() != DriverFilesystem {
		t.Fatalf("default driver: %v %v", s, err)
	}

	t.Setenv("LATTICEGEN_BLOB_DRIVER", "memory")
	s, err = Open(ctx)
	if err != nil || s.Driver() != DriverMemory {
		t.Fatalf("memory driver: %v %v", s, err)
	}

	t.Setenv("LATTICEGEN_BLOB_DRIVER", "s3")
	t.Setenv("LATTICEGEN_BLOB_S3_BUCKET", "")
	if s, err := Open(ctx); err == nil || s != nil {
		t.Fatalf("expected missing bucket error, got %v", s)
	}

	t.Setenv("LATTICEGEN_BLOB_S3_BUCKET", "artifacts")
	t.Setenv("LATTICEGEN_BLOB_S3_ENDPOINT", "http://localhost:9000")
	s, err = Open(ctx)
	if err != nil || s.Driver() != DriverS3 {
		t.Fatalf("s3 driver: %v %v", s, err)
	}

	t.Setenv("LATTICEGEN_BLOB_DRIVER", "gcs")
	if _, err := Open(ctx); err == nil || !strings.Contains(err.Error(), "gcs") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

// every driver honours the same create-only contract
func TestStoresShareContract(t *testing.T) {
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	stores := map[string]Store{
		"fs":     fsStore,
		"memory": NewMemory(),
		"s3":     NewMockS3ForTests(),
	}
	ctx := context.Background()
	for name, s := range stores {
		if _, err := s.Put(ctx, "k.cell", strings.NewReader("C 0 0 0 \n"), PutOptions{ContentType: "text/plain"}); err != nil {
			t.Fatalf("%s put: %v", name, err)
		}
		if _, err := s.Put(ctx, "k.cell", strings.NewReader("again"), PutOptions{}); !errors.Is(err, ErrExists) {
			t.Fatalf("%s: expected ErrExists, got %v", name, err)
		}
		info, err := s.Head(ctx, "k.cell")
		if err != nil || info.Size != 9 {
			t.Fatalf("%s head: %+v %v", name, info, err)
		}
		if ok, err := s.Delete(ctx, "k.cell"); err != nil || !ok {
			t.Fatalf("%s delete: %v %v", name, ok, err)
		}
		if _, err := s.Head(ctx, "k.cell"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestNewFilesystemError(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFilesystem(dir)
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	if _, err := s.Put(context.Background(), "file", strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	// a regular file cannot become a store root
	if s, err := NewFilesystem(dir + "/file/sub"); err == nil || s != nil {
		t.Fatalf("expected error, got %v", s)
	}
}
