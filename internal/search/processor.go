package search

import (
	"strings"

	"github.com/hyperjump/kagi/internal/models"
)

// ProcessFilters applies defaults to filters: the limit falls back to def and
// unknown platform values are cleared.
func ProcessFilters(f models.SearchFilters, def int) models.SearchFilters {
	f = f.WithDefaultLimit(def)
	f.Query = strings.TrimSpace(f.Query)
	return f
}

// applyFilters keeps the candidates that satisfy the platform, context and
// tag filters. The input slice is not modified.
func applyFilters(candidates []*models.Shortcut, f models.SearchFilters) []*models.Shortcut {
	if f.Platform == "" && f.Context == "" && f.Tag == "" {
		return candidates
	}
	out := make([]*models.Shortcut, 0, len(candidates))
	for _, c := range candidates {
		if f.Platform != "" && c.Keys.For(f.Platform) == "" {
			continue
		}
		if f.Context != "" && c.Context != f.Context {
			continue
		}
		if f.Tag != "" && !c.HasTag(f.Tag) {
			continue
		}
		out = append(out, c)
	}
	return out
}
