package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/hyperjump/kagi/internal/models"
)

// MemoryStore is an in-process Storage that preserves insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.Shortcut
}

// NewMemoryStore returns a store seeded with recs.
func NewMemoryStore(recs ...*models.Shortcut) *MemoryStore {
	m := &MemoryStore{byID: make(map[string]*models.Shortcut)}
	_ = m.Upsert(context.Background(), recs...)
	return m
}

// Search returns records matching q in insertion order.
func (m *MemoryStore) Search(ctx context.Context, q StoreQuery) ([]*models.Shortcut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Shortcut, 0)
	for _, id := range m.order {
		rec := m.byID[id]
		if q.App != "" && !strings.EqualFold(rec.App, q.App) {
			continue
		}
		if q.Category != "" && !strings.EqualFold(rec.Category, q.Category) {
			continue
		}
		out = append(out, clone(rec))
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

// ByApp returns every record owned by app.
func (m *MemoryStore) ByApp(ctx context.Context, app string) ([]*models.Shortcut, error) {
	if app == "" {
		return []*models.Shortcut{}, nil
	}
	return m.Search(ctx, StoreQuery{App: app})
}

// ByID returns the record with id or ErrNotFound.
func (m *MemoryStore) ByID(ctx context.Context, id string) (*models.Shortcut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(rec), nil
}

// Upsert inserts or replaces records by ID. Records without an ID are skipped.
func (m *MemoryStore) Upsert(ctx context.Context, recs ...*models.Shortcut) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		if rec == nil || rec.ID == "" {
			continue
		}
		if _, exists := m.byID[rec.ID]; !exists {
			m.order = append(m.order, rec.ID)
		}
		m.byID[rec.ID] = clone(rec)
	}
	return nil
}

// Delete removes a record by ID. Deleting a missing ID is not an error.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(func(rec *models.Shortcut) bool { return rec.ID == id })
	return nil
}

// DeleteBySource removes every record imported from url.
func (m *MemoryStore) DeleteBySource(ctx context.Context, url string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.removeLocked(func(rec *models.Shortcut) bool {
		return rec.Source != nil && rec.Source.URL == url
	})
	return n, nil
}

func (m *MemoryStore) removeLocked(match func(*models.Shortcut) bool) int64 {
	var removed int64
	kept := m.order[:0]
	for _, id := range m.order {
		if match(m.byID[id]) {
			delete(m.byID, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return removed
}

// Count returns the number of stored records.
func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.order)), nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

func clone(s *models.Shortcut) *models.Shortcut {
	c := *s
	if s.Tags != nil {
		c.Tags = append([]string(nil), s.Tags...)
	}
	if s.Source != nil {
		src := *s.Source
		c.Source = &src
	}
	return &c
}
