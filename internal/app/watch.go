package app

import (
	"os"
	"path/filepath"
	"time"

	"photo-stamper/internal/stamp"

	"go.uber.org/zap"
)

// FileWatcher polls a file for modification and invokes a callback when it
// changes. It is used to pick up edits to the stamp catalog while the
// editor runs.
type FileWatcher struct {
	path          string
	modTime       time.Time
	checkInterval time.Duration
	stopCh        chan struct{}
	onChange      func() // Called from the watcher goroutine
}

// NewFileWatcher creates a watcher for path. Returns nil if the file cannot
// be stat'ed.
func NewFileWatcher(path string, checkInterval time.Duration) *FileWatcher {
	// Resolve symlinks so an editor replacing the target is noticed.
	if realPath, err := filepath.EvalSymlinks(path); err == nil {
		path = realPath
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return &FileWatcher{
		path:          path,
		modTime:       info.ModTime(),
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
	}
}

// OnChange sets the callback to invoke when the file changes.
// The callback is called from a background goroutine.
func (w *FileWatcher) OnChange(callback func()) {
	w.onChange = callback
}

// Start begins watching in a background goroutine.
func (w *FileWatcher) Start() {
	// Create a fresh stop channel in case we're restarting
	w.stopCh = make(chan struct{})
	go w.watchLoop(w.stopCh)
}

// Stop stops the watcher goroutine.
func (w *FileWatcher) Stop() {
	close(w.stopCh)
}

// Path returns the watched file.
func (w *FileWatcher) Path() string {
	return w.path
}

func (w *FileWatcher) watchLoop(stop chan struct{}) {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if w.checkForUpdate() && w.onChange != nil {
				w.onChange()
			}
		}
	}
}

// checkForUpdate reports a change since the last check and moves the
// baseline forward.
func (w *FileWatcher) checkForUpdate() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	if !info.ModTime().After(w.modTime) {
		return false
	}
	w.modTime = info.ModTime()
	return true
}

// WatchCatalog reloads the catalog file into the session whenever it
// changes. apply runs the reload, typically Session.Do; nil applies
// directly. Invalid files are logged and
// ignored.
func WatchCatalog(s *Session, path string, interval time.Duration, apply func(func())) *FileWatcher {
	w := NewFileWatcher(path, interval)
	if w == nil {
		return nil
	}
	if apply == nil {
		apply = func(f func()) { f() }
	}
	w.OnChange(func() {
		c, err := stamp.LoadFile(w.Path())
		if err != nil {
			s.Logger().Warn("ignoring invalid stamp catalog", zap.String("path", w.Path()), zap.Error(err))
			return
		}
		apply(func() { s.ReloadCatalog(c) })
	})
	w.Start()
	return w
}
