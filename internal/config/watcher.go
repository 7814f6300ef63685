package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher calls a reload function whenever the watched config file changes.
// Reloads run on the watch goroutine one at a time, so they never overlap.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher watches path and its directory (to catch atomic renames).
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{path: path, debounce: DefaultDebounce, logger: logger, watcher: fw}, nil
}

// SetDebounce changes the quiet period before a reload.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Run blocks until ctx is done, invoking reload after each settled change.
// Reload errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, reload func(context.Context) error) error {
	defer func() { _ = w.watcher.Close() }()
	w.logger.Info("watching configuration", zap.String("path", w.path))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			pending = timer.C
		case <-pending:
			pending = nil
			w.logger.Info("configuration changed, regenerating", zap.String("path", w.path))
			if err := reload(ctx); err != nil {
				w.logger.Error("reload failed", zap.Error(err))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}
