// Package watch refreshes the notes tree when files change outside the
// application.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDelay is how long the watcher waits for a burst of events to settle.
const DefaultDelay = 150 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// Watcher reports coalesced changes in a set of directories. fsnotify is not
// recursive, so every expanded folder of the tree is watched on its own.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func()
	delay    time.Duration
	log      *logrus.Entry

	mu    sync.Mutex
	dirs  map[string]bool
	timer *time.Timer
}

// New creates a watcher that calls onChange after changes settle.
func New(onChange func(), log *logrus.Entry, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	w := &Watcher{
		fsw:      fsw,
		onChange: onChange,
		delay:    DefaultDelay,
		log:      log.WithField("component", "watch"),
		dirs:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Reset replaces the watched set with dirs. Directories that cannot be
// watched (usually because they were just removed) are skipped.
func (w *Watcher) Reset(dirs []string) {
	want := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		want[filepath.Clean(d)] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for d := range w.dirs {
		if !want[d] {
			_ = w.fsw.Remove(d)
			delete(w.dirs, d)
		}
	}
	for d := range want {
		if w.dirs[d] {
			continue
		}
		if err := w.fsw.Add(d); err != nil {
			w.log.WithError(err).WithField("dir", d).Debug("cannot watch directory")
			continue
		}
		w.dirs[d] = true
	}
}

// Dirs returns the watched directories, sorted.
func (w *Watcher) Dirs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.dirs))
	for d := range w.dirs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			w.log.WithFields(logrus.Fields{"path": ev.Name, "op": ev.Op.String()}).Debug("change detected")
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.onChange)
}

// Close stops watching and cancels a pending notification.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.dirs = make(map[string]bool)
	w.mu.Unlock()
	return w.fsw.Close()
}
