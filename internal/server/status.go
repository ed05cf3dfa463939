package server

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hyperjump/kagi/internal/config"
	"github.com/hyperjump/kagi/internal/importer"
	"github.com/hyperjump/kagi/internal/search"
	"github.com/hyperjump/kagi/internal/storage"
)

// CatalogIndex reports how many shortcuts the suggestion index holds.
type CatalogIndex interface {
	DocCount() (uint64, error)
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Shortcuts        int64    `json:"shortcuts"`
	IndexedShortcuts uint64   `json:"indexed_shortcuts"`
	Provider         string   `json:"provider"`
	ProviderBreaker  string   `json:"provider_breaker,omitempty"`
	StorageDriver    string   `json:"storage_driver,omitempty"`
	DatabasePath     string   `json:"database_path,omitempty"`
	DatabaseBytes    int64    `json:"database_bytes,omitempty"`
	CatalogFiles     int      `json:"catalog_files"`
	CatalogBytes     int64    `json:"catalog_bytes,omitempty"`
	Watching         bool     `json:"watching"`
	Directories      []string `json:"directories,omitempty"`
}

// StatusSource holds the components a status report reads. Catalog, Config
// and Watch may be nil.
type StatusSource struct {
	Storage  storage.Storage
	Catalog  CatalogIndex
	Semantic *search.SemanticEngine
	Config   *config.Config
	Watch    WatchService
}

// CollectStatus builds a status report. Only a failure to count stored
// shortcuts is an error; disk sizes that cannot be read are left at zero.
func CollectStatus(ctx context.Context, src StatusSource) (*StatusResponse, error) {
	n, err := src.Storage.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count shortcuts: %w", err)
	}
	resp := &StatusResponse{
		Shortcuts:       n,
		Provider:        src.Semantic.Provider(),
		ProviderBreaker: src.Semantic.ProviderBreaker(),
		Watching:        src.Watch != nil,
	}
	if src.Catalog != nil {
		docs, err := src.Catalog.DocCount()
		if err != nil {
			return nil, fmt.Errorf("failed to count indexed shortcuts: %w", err)
		}
		resp.IndexedShortcuts = docs
	}
	if src.Config != nil {
		resp.StorageDriver = src.Config.Storage.Driver
		resp.DatabasePath = src.Config.Storage.DatabasePath
		resp.Directories = src.Config.Catalog.Directories
	}
	if src.Watch != nil {
		resp.Directories = src.Watch.Directories()
	}

	var exts []string
	if src.Config != nil {
		exts = src.Config.Catalog.Extensions
	}
	fp, err := storage.MeasureFootprint(resp.DatabasePath, resp.Directories, func(path string) bool {
		return importer.ExtensionAllowed(filepath.Ext(path), exts)
	})
	if err == nil {
		resp.DatabaseBytes = fp.DatabaseBytes
		resp.CatalogFiles = fp.CatalogFiles
		resp.CatalogBytes = fp.CatalogBytes
	}
	return resp, nil
}
