package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/ai"
	"github.com/hyperjump/kagi/internal/config"
	"github.com/hyperjump/kagi/internal/indexer"
	"github.com/hyperjump/kagi/internal/keyword"
	"github.com/hyperjump/kagi/internal/search"
	"github.com/hyperjump/kagi/internal/storage"
)

// Components holds the initialized services shared by the commands.
type Components struct {
	Storage  storage.Storage
	Catalog  *keyword.BleveCatalogIndex
	Spell    *keyword.SpellChecker
	Engine   *search.Engine
	Semantic *search.SemanticEngine
	Indexer  *indexer.Indexer
}

// Close releases the storage and catalog index.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
}

func openStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return storage.NewMemoryStore(), nil
	case config.DriverSQLite, "":
		return storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func newProvider(cfg *config.Config, logger *zap.Logger) (ai.Provider, error) {
	pc, err := cfg.AI.ProviderConfig()
	if err != nil {
		return nil, err
	}
	p, err := ai.New(pc, ai.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if cfg.AI.Breaker.Enabled {
		p = ai.WithBreaker(p, cfg.AI.BreakerSettings(), logger)
	}
	return ai.WithExplainCache(p, cfg.AI.ExplainCacheSize), nil
}

// initializeComponents opens storage, builds the engines and imports the
// configured catalog directories.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := openStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c := &Components{Storage: store}

	catalog, err := keyword.NewBleveCatalogIndex()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize catalog index: %w", err)
	}
	c.Catalog = catalog
	c.Spell = keyword.NewSpellChecker(catalog)

	c.Engine = search.NewEngine(store,
		search.WithLogger(logger),
		search.WithDefaultLimit(cfg.Search.DefaultLimit),
		search.WithMaxCandidates(cfg.Search.MaxCandidates),
		search.WithSuggester(c.Spell, cfg.Search.Suggestions),
	)

	provider, err := newProvider(cfg, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
	}
	c.Semantic = search.NewSemanticEngine(c.Engine, provider,
		search.WithSemanticLogger(logger),
		search.WithCandidatePool(cfg.Search.CandidatePool),
		search.WithSemanticLimit(cfg.Search.SemanticLimit),
	)

	c.Indexer = indexer.NewIndexer(store,
		indexer.WithLogger(logger),
		indexer.WithCatalogIndex(catalog),
		indexer.WithSpellChecker(c.Spell),
	)
	for _, dir := range cfg.Catalog.Directories {
		n, err := c.Indexer.ImportDirectory(ctx, dir, cfg.Catalog.Extensions, cfg.Catalog.RecursiveOrDefault())
		if err != nil {
			logger.Warn("catalog directory import failed", zap.String("dir", dir), zap.Error(err))
			continue
		}
		logger.Debug("catalog directory imported", zap.String("dir", dir), zap.Int("files", n))
	}
	if err := c.Indexer.Refresh(ctx); err != nil {
		c.Close()
		return nil, err
	}
	logger.Info("components initialized",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("provider", provider.Name()))
	return c, nil
}
