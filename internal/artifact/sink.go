// Package artifact stages one generated file on local disk and publishes it
// to a blob store only once the whole run has succeeded.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"latticegen/internal/blob"
)

// ContentType of both generated formats.
const ContentType = "text/plain; charset=utf-8"

// Sink is an io.Writer backed by a temp file. Commit replaces the artifact
// stored under Key; Abort discards the staged bytes. Exactly one of them
// takes effect, later calls are no-ops.
type Sink struct {
	key   string
	store blob.Store
	tmp   *os.File
	done  bool
}

// Open stages a new artifact for key. dir is the temp directory ("" for the
// system default).
func Open(store blob.Store, key, dir string) (*Sink, error) {
	if store == nil {
		return nil, errors.New("artifact: nil store")
	}
	tmp, err := os.CreateTemp(dir, ".latticegen-*")
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", key, err)
	}
	return &Sink{key: key, store: store, tmp: tmp}, nil
}

// Key is the blob key the artifact is published under.
func (s *Sink) Key() string { return s.key }

func (s *Sink) Write(p []byte) (int, error) {
	if s.done {
		return 0, os.ErrClosed
	}
	return s.tmp.Write(p)
}

// Commit publishes the staged bytes, replacing any earlier artifact with the
// same key, and removes the temp file.
func (s *Sink) Commit(ctx context.Context, metadata map[string]string) (blob.Info, error) {
	if s.done {
		return blob.Info{}, os.ErrClosed
	}
	s.done = true
	defer s.cleanup()
	if err := s.tmp.Sync(); err != nil {
		return blob.Info{}, fmt.Errorf("sync %s: %w", s.key, err)
	}
	if _, err := s.tmp.Seek(0, io.SeekStart); err != nil {
		return blob.Info{}, fmt.Errorf("rewind %s: %w", s.key, err)
	}
	if _, err := s.store.Delete(ctx, s.key); err != nil {
		return blob.Info{}, fmt.Errorf("replace %s: %w", s.key, err)
	}
	info, err := s.store.Put(ctx, s.key, s.tmp, blob.PutOptions{ContentType: ContentType, Metadata: metadata})
	if err != nil {
		return blob.Info{}, fmt.Errorf("publish %s: %w", s.key, err)
	}
	return info, nil
}

// Abort drops the staged bytes. The store is left untouched.
func (s *Sink) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.cleanup()
}

func (s *Sink) cleanup() {
	_ = s.tmp.Close()
	_ = os.Remove(s.tmp.Name())
}
