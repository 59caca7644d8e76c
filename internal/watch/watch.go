// Package watch re-runs a callback whenever a single script file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault is the debounce interval for file events.
const debounceDefault = 200 * time.Millisecond

// pollDefault is the polling interval when fsnotify is unavailable.
const pollDefault = 5 * time.Second

// ChangeFunc is called after the watched file settles. Calls never overlap.
type ChangeFunc func(ctx context.Context, path string)

// Config holds watcher configuration.
type Config struct {
	Path         string        // script file to watch
	Debounce     time.Duration // quiet period after the last event
	PollMode     bool          // stat the file on a ticker instead of fsnotify
	PollInterval time.Duration
	RunOnStart   bool // invoke OnChange once before waiting for events
	OnChange     ChangeFunc
}

// Watcher watches one file and invokes Config.OnChange after each change.
type Watcher struct {
	cfg   Config
	runMu sync.Mutex
}

// New creates a watcher with validated configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("change function is required")
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", cfg.Path, err)
	}
	cfg.Path = abs
	if cfg.Debounce == 0 {
		cfg.Debounce = debounceDefault
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = pollDefault
	}
	return &Watcher{cfg: cfg}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.cfg.Path }

// Run blocks until ctx is cancelled. The file is already being watched when
// the RunOnStart call begins, so saves made during that call trigger a rerun.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := os.Stat(w.cfg.Path); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Path, err)
	}
	if w.cfg.PollMode {
		return w.runPollWatcher(ctx)
	}
	return w.runFSWatcher(ctx)
}

func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	w.runMu.Lock()
	defer w.runMu.Unlock()
	w.cfg.OnChange(ctx, w.cfg.Path)
}

// runFSWatcher watches the parent directory so that editors which save by
// rename are still seen.
func (w *Watcher) runFSWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(w.cfg.Path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch dir: %w", err)
	}

	slog.Info("watching script", "mode", "fsnotify", "path", w.cfg.Path)

	// events raised meanwhile queue in the watcher until the loop drains them
	if w.cfg.RunOnStart {
		w.fire(ctx)
	}

	var (
		mu      sync.Mutex
		pending *time.Timer
	)
	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if pending != nil {
				pending.Stop()
			}
			mu.Unlock()
			slog.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.cfg.Path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			slog.Debug("script event", "op", event.Op.String())

			mu.Lock()
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(w.cfg.Debounce, func() { w.fire(ctx) })
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// runPollWatcher compares modification time and size on every tick.
func (w *Watcher) runPollWatcher(ctx context.Context) error {
	slog.Info("watching script", "mode", "poll", "path", w.cfg.Path, "interval", w.cfg.PollInterval)

	last := stamp(w.cfg.Path)
	if w.cfg.RunOnStart {
		w.fire(ctx)
	}
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case <-ticker.C:
			cur := stamp(w.cfg.Path)
			if cur == last || cur == (fileStamp{}) {
				continue
			}
			last = cur
			w.fire(ctx)
		}
	}
}

type fileStamp struct {
	mod  time.Time
	size int64
}

// stamp returns the zero stamp when the file is missing, e.g. mid-save.
func stamp(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{mod: info.ModTime(), size: info.Size()}
}
