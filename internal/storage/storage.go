// Package storage defines the record store contract for shortcut records and
// ships in-memory and SQLite implementations of it.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kagi/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("shortcut not found")

// StoreQuery narrows a store scan. Empty fields are not applied; Limit <= 0
// means no limit. App and Category match case-insensitively.
type StoreQuery struct {
	App      string
	Category string
	Limit    int
}

// RecordStore is the read contract the search core consumes. Results are
// returned in a stable store order.
type RecordStore interface {
	Search(ctx context.Context, q StoreQuery) ([]*models.Shortcut, error)
	ByApp(ctx context.Context, app string) ([]*models.Shortcut, error)
	ByID(ctx context.Context, id string) (*models.Shortcut, error)
}

// Storage is a RecordStore that also accepts writes from the import pipeline.
type Storage interface {
	RecordStore

	// Upsert inserts records or replaces them by ID. Replaced records keep
	// their position in store order.
	Upsert(ctx context.Context, recs ...*models.Shortcut) error
	Delete(ctx context.Context, id string) error
	// DeleteBySource removes every record whose Source.URL equals url.
	DeleteBySource(ctx context.Context, url string) (int64, error)
	Count(ctx context.Context) (int64, error)

	Close() error
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
