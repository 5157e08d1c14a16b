package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher polls the config file's last-write timestamp and commits a reload
// only after the timestamp has been stable for a run of consecutive polls,
// debouncing editor atomic-write storms. An fsnotify watch on the parent
// directory wakes the poller early so quiet edits commit at the debounce
// floor; commit decisions remain purely mtime-driven.
type Watcher struct {
	path    string
	store   *Store
	apply   func(Snapshot)
	logger  *slog.Logger
	poll    time.Duration
	stable  int
	fsw     *fsnotify.Watcher
	stop    context.CancelFunc
	stopped chan struct{}
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Path is the watched config file.
	Path string
	// Store receives committed reloads.
	Store *Store
	// Apply is invoked with the fresh snapshot after each commit.
	Apply func(Snapshot)
	// PollInterval defaults to 250ms.
	PollInterval time.Duration
	// StablePolls is the debounce run length, default 4.
	StablePolls int
	Logger      *slog.Logger
}

// NewWatcher builds a stopped watcher.
func NewWatcher(opts WatcherOptions) *Watcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 250 * time.Millisecond
	}
	if opts.StablePolls <= 0 {
		opts.StablePolls = 4
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{
		path:   opts.Path,
		store:  opts.Store,
		apply:  opts.Apply,
		logger: opts.Logger,
		poll:   opts.PollInterval,
		stable: opts.StablePolls,
	}
}

// Start launches the watch loop. Errors setting up the fsnotify nudge are
// logged and ignored; polling alone is sufficient.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.stop = cancel
	w.stopped = make(chan struct{})

	var nudge <-chan fsnotify.Event
	if fsw, err := fsnotify.NewWatcher(); err == nil {
		if err := fsw.Add(filepath.Dir(w.path)); err == nil {
			w.fsw = fsw
			nudge = fsw.Events
		} else {
			w.logger.Debug("config watcher: fsnotify add failed", "err", err)
			_ = fsw.Close()
		}
	} else {
		w.logger.Debug("config watcher: fsnotify unavailable", "err", err)
	}

	go w.loop(ctx, nudge)
}

// Stop terminates the watch loop and joins it.
func (w *Watcher) Stop() {
	if w.stop == nil {
		return
	}
	w.stop()
	<-w.stopped
	if w.fsw != nil {
		_ = w.fsw.Close()
		w.fsw = nil
	}
	w.stop = nil
}

func (w *Watcher) loop(ctx context.Context, nudge <-chan fsnotify.Event) {
	defer close(w.stopped)

	committed := w.statMtime()
	var candidate time.Time
	run := 0

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-nudge:
			if !ok {
				nudge = nil
				continue
			}
			if ev.Name != w.path {
				continue
			}
			// Fall through to an immediate poll.
		case <-ticker.C:
		}

		m := w.statMtime()
		if m.IsZero() || m.Equal(committed) {
			candidate = time.Time{}
			run = 0
			continue
		}
		if candidate.IsZero() || !m.Equal(candidate) {
			candidate = m
			run = 1
			continue
		}
		run++
		if run < w.stable {
			continue
		}
		committed = m
		candidate = time.Time{}
		run = 0
		w.commit()
	}
}

func (w *Watcher) statMtime() time.Time {
	st, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}
	}
	return st.ModTime()
}

func (w *Watcher) commit() {
	if err := w.store.LoadFile(w.path); err != nil {
		// Keep the previous in-memory state; the watcher keeps polling.
		w.logger.Warn("config reload failed", "path", w.path, "err", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path)
	if w.apply != nil {
		w.apply(w.store.Snapshot())
	}
}
