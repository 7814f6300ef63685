package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"latticegen/internal/blob"
)

func readAll(t *testing.T, s blob.Store, key string) string {
	t.Helper()
	_, rc, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}

func TestCommitPublishesAndReplaces(t *testing.T) {
	store := blob.NewMemory()
	dir := t.TempDir()
	ctx := context.Background()
	for _, body := range []string{"first run\n", "second run\n"} {
		s, err := Open(store, "out.ctl", dir)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, err := io.WriteString(s, body); err != nil {
			t.Fatalf("write: %v", err)
		}
		info, err := s.Commit(ctx, map[string]string{"run": "x"})
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		if info.Size != int64(len(body)) || info.ContentType != ContentType {
			t.Fatalf("info %+v", info)
		}
		if got := readAll(t, store, "out.ctl"); got != body {
			t.Fatalf("stored %q want %q", got, body)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("temp files left: %v", entries)
	}
}

func TestAbortLeavesStoreUntouched(t *testing.T) {
	store := blob.NewMemory()
	ctx := context.Background()
	if _, err := store.Put(ctx, "out.cell", strings.NewReader("previous"), blob.PutOptions{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	dir := t.TempDir()
	s, err := Open(store, "out.cell", dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, _ = io.WriteString(s, "partial")
	s.Abort()
	s.Abort()
	if got := readAll(t, store, "out.cell"); got != "previous" {
		t.Fatalf("store changed to %q", got)
	}
	if _, err := s.Commit(ctx, nil); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("commit after abort: %v", err)
	}
	if _, err := s.Write([]byte("x")); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("write after abort: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("temp files left: %v", entries)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(nil, "k", ""); err == nil {
		t.Fatalf("expected nil store error")
	}
	if _, err := Open(blob.NewMemory(), "k", "/nonexistent/dir/for/staging"); err == nil {
		t.Fatalf("expected temp dir error")
	}
}

type failingStore struct {
	blob.Store
}

func (failingStore) Delete(context.Context, string) (bool, error) {
	return false, errors.New("read-only bucket")
}

func TestCommitSurfacesStoreFailure(t *testing.T) {
	s, err := Open(failingStore{blob.NewMemory()}, "k", t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Commit(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("expected store failure, got %v", err)
	}
	if s.Key() != "k" {
		t.Fatalf("key = %s", s.Key())
	}
}
