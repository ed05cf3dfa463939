package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/kagi/internal/models"
	"github.com/hyperjump/kagi/internal/storage"
)

func benchCatalog(n int) []*models.Shortcut {
	actions := []string{"Copy", "Paste", "Split window vertically", "Toggle line comment", "Go to definition", "Reopen closed tab"}
	recs := make([]*models.Shortcut, n)
	for i := range recs {
		recs[i] = &models.Shortcut{
			ID:     fmt.Sprintf("s-%d", i),
			App:    fmt.Sprintf("app-%d", i%20),
			Action: fmt.Sprintf("%s %d", actions[i%len(actions)], i),
			Keys:   models.Keys{Windows: fmt.Sprintf("Ctrl+%d", i%10)},
			Tags:   []string{"editing", "navigation"},
		}
	}
	return recs
}

func BenchmarkEngine_ScoredSearch(b *testing.B) {
	e := NewEngine(storage.NewMemoryStore(benchCatalog(5000)...))
	ctx := context.Background()
	f := models.SearchFilters{Query: "split window"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.ScoredSearch(ctx, f)
	}
}

func BenchmarkEngine_SearchByKeys(b *testing.B) {
	e := NewEngine(storage.NewMemoryStore(benchCatalog(5000)...))
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.SearchByKeys(ctx, "control+3", models.PlatformWindows)
	}
}
