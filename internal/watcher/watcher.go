// Package watcher provides debounced watching of a batch file or a tasks directory.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the time to wait after the last file event before
// triggering the callback. Rapid changes, such as an editor's
// write-then-rename, coalesce into one notification.
const DefaultDelay = 100 * time.Millisecond

// Watcher watches one batch file or one directory and invokes a callback
// with debouncing.
type Watcher struct {
	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	delay    time.Duration
	match    func(name string) bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// New creates a Watcher for target. A directory is watched as a whole; for
// a file the parent directory is watched and events are narrowed to the
// file itself, so replacement by rename is still seen.
func New(target string, callback func(), opts ...Option) (*Watcher, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", target, err)
	}

	w := &Watcher{callback: callback, delay: DefaultDelay}
	for _, opt := range opts {
		opt(w)
	}

	dir := target
	w.match = func(string) bool { return true }
	if !info.IsDir() {
		dir = filepath.Dir(target)
		want := filepath.Clean(target)
		w.match = func(name string) bool { return filepath.Clean(name) == want }
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.fsw = fsw
	return w, nil
}

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn callback.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.match(event.Name) {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.callback)
}
