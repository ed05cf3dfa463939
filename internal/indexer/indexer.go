// Package indexer loads catalog files into shortcut storage and keeps the
// suggestion vocabulary in step with it.
package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hyperjump/kagi/internal/fileid"
	"github.com/hyperjump/kagi/internal/importer"
	"github.com/hyperjump/kagi/internal/keyword"
	"github.com/hyperjump/kagi/internal/storage"
	"go.uber.org/zap"
)

// Indexer imports catalog files into storage, the catalog term index and the spell checker.
type Indexer struct {
	store    storage.Storage
	importer *importer.Importer
	catalog  keyword.TermIndex
	spell    *keyword.SpellChecker
	logger   *zap.Logger

	mu     sync.Mutex
	stamps map[string]fileStamp // source URL -> last imported stat
}

type fileStamp struct {
	mtime time.Time
	size  int64
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// WithCatalogIndex rebuilds idx from the store after every change.
func WithCatalogIndex(idx keyword.TermIndex) IndexerOption {
	return func(i *Indexer) { i.catalog = idx }
}

// WithSpellChecker invalidates sc after every change.
func WithSpellChecker(sc *keyword.SpellChecker) IndexerOption {
	return func(i *Indexer) { i.spell = sc }
}

// NewIndexer creates an indexer writing into store.
func NewIndexer(store storage.Storage, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		store:    store,
		importer: importer.New(),
		logger:   zap.NewNop(),
		stamps:   make(map[string]fileStamp),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// ImportFile imports the catalog at path, replacing any records previously
// imported from it. If allowedExts is non-empty, the file's extension must be
// in the list. Files unchanged since their last import are skipped.
func (idx *Indexer) ImportFile(ctx context.Context, path string, allowedExts []string) error {
	changed, err := idx.importFile(ctx, path, allowedExts)
	if err != nil || !changed {
		return err
	}
	return idx.Refresh(ctx)
}

func (idx *Indexer) importFile(ctx context.Context, path string, allowedExts []string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("absolute path: %w", err)
	}
	ext := filepath.Ext(absPath)
	if !importer.ExtensionAllowed(ext, allowedExts) {
		return false, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return false, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("not a regular file: %s", absPath)
	}
	sourceURL := fileid.SourceURL(absPath)
	stamp := fileStamp{mtime: info.ModTime(), size: info.Size()}
	if idx.unchanged(sourceURL, stamp) {
		idx.logger.Debug("indexer skipping unchanged catalog", zap.String("path", absPath))
		return false, nil
	}

	recs, err := idx.importer.ImportFile(absPath)
	if err != nil {
		return false, err
	}
	for _, r := range recs {
		Normalize(r)
	}
	if _, err := idx.store.DeleteBySource(ctx, sourceURL); err != nil {
		return false, fmt.Errorf("failed to delete previous records: %w", err)
	}
	if err := idx.store.Upsert(ctx, recs...); err != nil {
		return false, fmt.Errorf("failed to store shortcuts: %w", err)
	}

	idx.mu.Lock()
	idx.stamps[sourceURL] = stamp
	idx.mu.Unlock()
	idx.logger.Debug("indexer catalog imported",
		zap.String("path", absPath),
		zap.Int("shortcuts", len(recs)))
	return true, nil
}

func (idx *Indexer) unchanged(sourceURL string, stamp fileStamp) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	prev, ok := idx.stamps[sourceURL]
	return ok && prev.size == stamp.size && prev.mtime.Equal(stamp.mtime)
}

// ImportDirectory imports every catalog file under dir whose extension is
// allowed. Subdirectories are visited only when recursive is true. A file that
// fails to import is logged and skipped. Returns the number of files imported.
func (idx *Indexer) ImportDirectory(ctx context.Context, dir string, allowedExts []string, recursive bool) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}

	n := 0
	changed := false
	err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != absDir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !importer.ExtensionAllowed(filepath.Ext(path), allowedExts) {
			return nil
		}
		c, importErr := idx.importFile(ctx, path, allowedExts)
		if importErr != nil {
			idx.logger.Warn("indexer failed to import catalog",
				zap.String("path", path),
				zap.Error(importErr))
			return nil
		}
		changed = changed || c
		n++
		return nil
	})
	if changed {
		if refreshErr := idx.Refresh(ctx); refreshErr != nil && err == nil {
			err = refreshErr
		}
	}
	return n, err
}

// RemoveFile deletes every record imported from path.
func (idx *Indexer) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	sourceURL := fileid.SourceURL(absPath)
	n, err := idx.store.DeleteBySource(ctx, sourceURL)
	if err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	idx.mu.Lock()
	delete(idx.stamps, sourceURL)
	idx.mu.Unlock()
	idx.logger.Debug("indexer catalog removed", zap.String("path", absPath), zap.Int64("shortcuts", n))
	if n == 0 {
		return nil
	}
	return idx.Refresh(ctx)
}

// Refresh rebuilds the catalog term index from storage and invalidates the
// spell checker's cached vocabulary.
func (idx *Indexer) Refresh(ctx context.Context) error {
	if idx.catalog != nil {
		all, err := idx.store.Search(ctx, storage.StoreQuery{})
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		if err := idx.catalog.Rebuild(ctx, all); err != nil {
			return fmt.Errorf("failed to rebuild catalog index: %w", err)
		}
	}
	if idx.spell != nil {
		idx.spell.Invalidate()
	}
	return nil
}
