package keyword

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hyperjump/kagi/internal/models"
)

// BleveCatalogIndex implements TermIndex with an in-memory Bleve index over
// shortcut actions and tags. The index is small and rebuilt from the store on
// startup and whenever the catalog is re-imported.
type BleveCatalogIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewBleveCatalogIndex creates an empty in-memory catalog index.
func NewBleveCatalogIndex() (*BleveCatalogIndex, error) {
	index, err := bleve.NewMemOnly(catalogMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveCatalogIndex{index: index}, nil
}

func catalogMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so suggestions are real catalog words.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("action", textFieldMapping)
	docMapping.AddFieldMappingsAt("tags", textFieldMapping)
	docMapping.AddFieldMappingsAt("app", bleve.NewKeywordFieldMapping())
	im.AddDocumentMapping("shortcut", docMapping)
	im.DefaultType = "shortcut"
	im.DefaultMapping = docMapping
	return im
}

func catalogDoc(s *models.Shortcut) map[string]interface{} {
	return map[string]interface{}{
		"action": s.Action,
		"tags":   strings.Join(s.Tags, " "),
		"app":    s.App,
	}
}

// Rebuild replaces the index contents with shortcuts.
func (b *BleveCatalogIndex) Rebuild(ctx context.Context, shortcuts []*models.Shortcut) error {
	fresh, err := bleve.NewMemOnly(catalogMapping())
	if err != nil {
		return fmt.Errorf("failed to create Bleve index: %w", err)
	}
	batch := fresh.NewBatch()
	for _, s := range shortcuts {
		if err := ctx.Err(); err != nil {
			_ = fresh.Close()
			return err
		}
		if err := batch.Index(s.ID, catalogDoc(s)); err != nil {
			_ = fresh.Close()
			return fmt.Errorf("failed to index shortcut %s: %w", s.ID, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		_ = fresh.Close()
		return fmt.Errorf("failed to apply Bleve batch: %w", err)
	}

	b.mu.Lock()
	old := b.index
	b.index = fresh
	b.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Close closes the Bleve index.
func (b *BleveCatalogIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index.Close()
}

// DocCount returns the total number of shortcuts in the index.
func (b *BleveCatalogIndex) DocCount() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.index.DocCount()
}

// GetTermFrequency returns the number of shortcuts containing the term.
func (b *BleveCatalogIndex) GetTermFrequency(term string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q := bleve.NewMatchQuery(term)
	req := bleve.NewSearchRequest(q)
	req.Size = 0
	results, err := b.index.Search(req)
	if err != nil {
		return 0, fmt.Errorf("failed to search for term frequency: %w", err)
	}
	return int(results.Total), nil
}

// GetAllTerms returns all unique terms from the action and tags dictionaries.
func (b *BleveCatalogIndex) GetAllTerms() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	terms := make([]string, 0)
	seen := make(map[string]struct{})
	for _, field := range []string{"action", "tags"} {
		dict, err := b.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s dictionary: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			if _, ok := seen[entry.Term]; !ok {
				terms = append(terms, entry.Term)
				seen[entry.Term] = struct{}{}
			}
		}
		_ = dict.Close()
	}
	return terms, nil
}
