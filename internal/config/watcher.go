package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads configuration when the config file changes on disk.
// Only webhook endpoints are safe to swap at runtime; everything else
// needs a process restart, so the callback receives the full new Config
// and the caller decides what to apply.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	onLoad  func(*Config)
}

// NewWatcher creates a watcher for the given config file path.
// onLoad is called with every successfully loaded config.
func NewWatcher(path string, logger *zap.Logger, onLoad func(*Config)) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, which would
	// otherwise drop the watch on the inode.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:    path,
		watcher: fw,
		logger:  logger,
		onLoad:  onLoad,
	}, nil
}

// Run blocks until ctx is cancelled, reloading config on file changes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn("config reload failed, keeping previous config",
					zap.String("path", w.path),
					zap.Error(err),
				)
				continue
			}

			w.logger.Info("config reloaded", zap.String("path", w.path))
			if w.onLoad != nil {
				w.onLoad(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}
