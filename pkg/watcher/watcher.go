// Package watcher notifies when the tracking state file is replaced.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/toolchange/errors"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce coalesces the burst of events one atomic save produces.
const DefaultDebounce = 100 * time.Millisecond

// StateWatcher watches the directory holding a state file and signals on
// Changes after writes to that file have settled. Watching the directory
// rather than the file keeps the watch alive across rename-based saves.
type StateWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *logrus.Entry
	changes  chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a StateWatcher for path. The parent directory is created if
// missing so a watch can start before the first scan.
func New(path string, debounce time.Duration, logger *logrus.Entry) (*StateWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidArgument, "resolve state file path")
	}
	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "create state directory").WithDetail("dir", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "create file watcher")
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "watch state directory").WithDetail("dir", dir)
	}

	return &StateWatcher{
		watcher:  fw,
		path:     absPath,
		debounce: debounce,
		logger:   logger,
		changes:  make(chan struct{}, 1),
	}, nil
}

// Changes delivers one value per settled change. Signals are dropped while
// an earlier one is still unread.
func (w *StateWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Run processes file system events until ctx is cancelled or the watcher
// is closed.
func (w *StateWatcher) Run(ctx context.Context) {
	defer w.stopTimer()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

// schedule restarts the debounce timer.
func (w *StateWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.changes <- struct{}{}:
		default:
		}
	})
}

func (w *StateWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Close stops the watcher and releases resources.
func (w *StateWatcher) Close() error {
	return w.watcher.Close()
}
