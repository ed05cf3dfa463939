package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kagi/internal/models"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "kagi.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_Contract(t *testing.T) {
	runContract(t, newTestSQLite(t))
}

func TestSQLiteStorage_RoundTripFields(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()
	captured := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &models.Shortcut{
		ID:       "vim-split",
		App:      "vim",
		Action:   "Split window vertically",
		Keys:     models.Keys{Linux: "Ctrl+w v"},
		Context:  "normal mode",
		Category: "windows",
		Tags:     []string{"layout", "split"},
		Source: &models.Source{
			Kind:       "import",
			URL:        "file:///catalog/vim.yaml",
			CapturedAt: &captured,
			Confidence: 0.9,
		},
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatal(err)
	}
	got, err := store.ByID(ctx, "vim-split")
	if err != nil {
		t.Fatal(err)
	}
	if got.Keys.Linux != "Ctrl+w v" || got.Context != "normal mode" || got.Category != "windows" {
		t.Errorf("got %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "split" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if got.Source == nil || got.Source.URL != "file:///catalog/vim.yaml" || got.Source.Confidence != 0.9 {
		t.Fatalf("Source = %+v", got.Source)
	}
	if got.Source.CapturedAt == nil || !got.Source.CapturedAt.Equal(captured) {
		t.Errorf("CapturedAt = %v", got.Source.CapturedAt)
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	_ = store.Upsert(ctx, &models.Shortcut{ID: "a", App: "x", Action: "A"})
	_ = store.Close()

	store, err = NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	n, err := store.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Count after reopen = %d, %v", n, err)
	}
}
