// Package watcher re-imports catalog files when they change on disk.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/importer"
)

const defaultDebounce = 400 * time.Millisecond

// Handler receives catalog file changes.
type Handler interface {
	ImportFile(ctx context.Context, path string, allowedExts []string) error
	RemoveFile(ctx context.Context, path string) error
}

// Watcher watches catalog directories and forwards changed or removed
// catalog files to a Handler.
type Watcher struct {
	roots      []string
	extensions []string
	recursive  bool
	handler    Handler
	debounce   time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	fs       *fsnotify.Watcher
	ctx      context.Context
	pending  map[string]*time.Timer
	watched  map[string]struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets how long a file must be quiet before it is re-imported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher over roots. extensions filters catalog files;
// empty means every supported format.
func NewWatcher(roots, extensions []string, recursive bool, h Handler, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		roots:      roots,
		extensions: extensions,
		recursive:  recursive,
		handler:    h,
		debounce:   defaultDebounce,
		logger:     zap.NewNop(),
		pending:    make(map[string]*time.Timer),
		watched:    make(map[string]struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fs = fw
	w.ctx = ctx
	for _, root := range w.roots {
		if err := w.addTreeLocked(root); err != nil {
			_ = fw.Close()
			w.fs = nil
			return err
		}
	}
	w.started = true
	w.logger.Debug("watcher starting",
		zap.Strings("roots", w.roots),
		zap.Strings("extensions", w.extensions),
		zap.Bool("recursive", w.recursive))
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
		if w.isCatalog(path) {
			w.schedule(path)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cancel(path)
		w.mu.Lock()
		delete(w.watched, path)
		w.mu.Unlock()
		if w.isCatalog(path) {
			if err := w.handler.RemoveFile(w.context(), path); err != nil {
				w.logger.Warn("watcher failed to remove catalog", zap.String("path", path), zap.Error(err))
			}
		}
	}
}

// handleNewDirectory watches a directory created under a root and imports
// catalogs already inside it.
func (w *Watcher) handleNewDirectory(dir string) {
	if !w.recursive {
		return
	}
	w.mu.Lock()
	err := w.addTreeLocked(dir)
	w.mu.Unlock()
	if err != nil {
		w.logger.Debug("watcher failed to add directory", zap.String("path", dir), zap.Error(err))
		return
	}
	w.syncDirectory(dir)
}

func (w *Watcher) isCatalog(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return importer.ExtensionAllowed(filepath.Ext(path), w.extensions)
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if err := w.handler.ImportFile(w.context(), path, w.extensions); err != nil {
			w.logger.Warn("watcher failed to import catalog", zap.String("path", path), zap.Error(err))
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) context() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil {
		return context.Background()
	}
	return w.ctx
}

// AddDirectory starts watching root. When syncExisting is true, catalogs
// already in root are imported.
func (w *Watcher) AddDirectory(root string, syncExisting bool) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.roots = append(w.roots, abs)
	if w.fs != nil {
		err = w.addTreeLocked(abs)
	}
	w.mu.Unlock()
	if err != nil {
		return err
	}
	if syncExisting {
		w.syncDirectory(abs)
	}
	return nil
}

// addTreeLocked adds dir, and its subdirectories when recursive, to the fsnotify watcher.
func (w *Watcher) addTreeLocked(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if !w.recursive {
		if err := w.fs.Add(abs); err != nil {
			return err
		}
		w.watched[abs] = struct{}{}
		return nil
	}
	return filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if _, ok := w.watched[path]; ok {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return err
		}
		w.watched[path] = struct{}{}
		return nil
	})
}

func (w *Watcher) syncDirectory(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && !w.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if w.isCatalog(path) {
			w.schedule(path)
		}
		return nil
	})
}

// Directories returns the watched roots.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]string(nil), w.roots...)
	sort.Strings(out)
	return out
}

// Stop stops watching and cancels pending imports. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for p, t := range w.pending {
			t.Stop()
			delete(w.pending, p)
		}
		fw := w.fs
		w.mu.Unlock()
		if fw != nil {
			_ = fw.Close()
		}
		w.logger.Debug("watcher stopped")
	})
}
