package collections

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/internetdrew/portfolio-v3/internal/logging"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

// DefaultDebounce groups bursts of editor writes into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc is called after every debounced rebuild.
type RebuildFunc func(snapshot *Snapshot, err error)

// Watcher rebuilds a registry when files under its collection bases change.
type Watcher struct {
	root      string
	registry  *Registry
	debounce  time.Duration
	logger    interfaces.Logger
	onRebuild RebuildFunc
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(logger interfaces.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// OnRebuild registers a callback invoked after each rebuild.
func OnRebuild(fn RebuildFunc) WatcherOption {
	return func(w *Watcher) {
		w.onRebuild = fn
	}
}

// NewWatcher watches the collection bases of registry below root, the OS
// directory backing the registry filesystem.
func NewWatcher(root string, registry *Registry, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		root:     root,
		registry: registry,
		debounce: DefaultDebounce,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, def := range w.registry.Collections() {
		w.addRecursive(watcher, filepath.Join(w.root, filepath.FromSlash(def.Base)))
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			if ctx.Err() != nil {
				return
			}
			snapshot, err := w.registry.Rebuild(ctx)
			if err != nil {
				w.logger.Warn("content.rebuild.failed", "error", err)
			} else {
				w.logger.Info("content.rebuild.completed", "digest", snapshot.Digest())
			}
			if w.onRebuild != nil {
				w.onRebuild(snapshot, err)
			}
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("content.change.detected", "path", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addRecursive(watcher, event.Name)
				}
			}
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("content.watch.error", "error", err)
		}
	}
}

func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := watcher.Add(path); addErr != nil {
			w.logger.Warn("content.watch.add_failed", "path", path, "error", addErr)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		w.logger.Warn("content.watch.walk_failed", "path", dir, "error", err)
	}
}
