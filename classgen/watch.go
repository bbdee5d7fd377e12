package classgen

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/dynasty/errors"
	"github.com/teranos/dynasty/logger"
)

// Watcher reruns a callback when Go sources in a set of directories change.
// Writes to companion files and the sources the callback itself rewrites are
// ignored, so a regeneration does not trigger another one.
type Watcher struct {
	watcher        *fsnotify.Watcher
	isCompanion    func(string) bool
	debouncePeriod time.Duration
	onChange       func(ctx context.Context) error

	// runMu serializes onChange: a timer may fire while the previous
	// regeneration is still writing.
	runMu sync.Mutex

	mu            sync.Mutex
	debounceTimer *time.Timer
	ownWrites     map[string]bool
	pending       map[string]bool
}

// NewWatcher watches dirs. onChange runs at most once per debounce period.
func (g *Generator) NewWatcher(dirs []string, debounce time.Duration, onChange func(ctx context.Context) error) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}
	return &Watcher{
		watcher:        fw,
		isCompanion:    g.IsCompanion,
		debouncePeriod: debounce,
		onChange:       onChange,
		ownWrites:      map[string]bool{},
		pending:        map[string]bool{},
	}, nil
}

// MarkOwnWrites records files about to be written by the callback.
func (w *Watcher) MarkOwnWrites(paths ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range paths {
		w.ownWrites[filepath.Clean(p)] = true
	}
}

// checkOwnWrite checks and clears the own-write flag for path
func (w *Watcher) checkOwnWrite(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	path = filepath.Clean(path)
	if w.ownWrites[path] {
		delete(w.ownWrites, path)
		return true
	}
	return false
}

// Run blocks until ctx is cancelled or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if w.checkOwnWrite(event.Name) {
				logger.Debugw("Watcher ignoring own write", "file", event.Name)
				continue
			}
			logger.Infow("Watcher detected change",
				"file", event.Name,
				"op", event.Op.String())
			w.schedule(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".go") || w.isCompanion(event.Name) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "#") {
		// editor temp files
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// schedule debounces rapid file changes and triggers the callback
func (w *Watcher) schedule(ctx context.Context, file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[file] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		w.mu.Lock()
		changed := len(w.pending)
		w.pending = map[string]bool{}
		w.mu.Unlock()

		w.runMu.Lock()
		defer w.runMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if err := w.onChange(ctx); err != nil {
			logger.Errorw("Regeneration failed", "changed_files", changed, "error", err)
			return
		}
		logger.Infow("Regenerated", "changed_files", changed)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}
