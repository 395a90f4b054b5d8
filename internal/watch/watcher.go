// Package watch re-runs generation when its inputs change on disk.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors a set of files for changes and invokes a callback when
// one of them is modified. It uses debouncing to coalesce rapid successive
// changes into a single callback invocation.
//
// The parent directories are watched rather than the files, so editors that
// save by writing a new file and renaming it over the old one are still
// seen.
//
// Callbacks never overlap: a change that settles while the previous callback
// is still running waits for it to return.
type Watcher struct {
	files    map[string]bool
	onChange func()
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex // serialises onChange
}

// NewWatcher creates a new Watcher for the given files. The onChange callback
// is invoked after changes have been debounced for the specified duration.
func NewWatcher(files []string, debounce time.Duration, logger *zap.Logger, onChange func()) *Watcher {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		if f == "" {
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		set[filepath.Clean(f)] = true
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		files:    set,
		onChange: onChange,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins watching the configured files for changes. It blocks until
// Stop is called or a fatal error occurs.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw

	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			// Directory may not exist (e.g. no fonts/ folder); skip.
			w.logger.Warn("cannot watch directory", zap.String("dir", d), zap.Error(err))
		}
	}

	// Event processing loop with debouncing.
	var timer *time.Timer
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			w.logger.Debug("input changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))

			// Reset debounce timer.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.fire)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return fsw.Close()
		}
	}
}

// fire runs onChange, waiting for any callback still in progress.
func (w *Watcher) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange()
}

// Stop signals the watcher to stop monitoring files.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
}
