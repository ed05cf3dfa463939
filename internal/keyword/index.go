package keyword

import (
	"context"

	"github.com/hyperjump/kagi/internal/models"
)

// TermIndex holds the catalog vocabulary (actions and tags) used for suggestions.
type TermIndex interface {
	TermDictionary
	Rebuild(ctx context.Context, shortcuts []*models.Shortcut) error
	// DocCount returns the number of shortcuts in the index.
	DocCount() (uint64, error)
	Close() error
}

// TermDictionary provides access to the term dictionary for spell checking.
// This interface allows dependency injection for testing.
type TermDictionary interface {
	// GetAllTerms returns all unique terms in the index.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns the document frequency for a term.
	GetTermFrequency(term string) (int, error)
}
