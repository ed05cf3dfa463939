package indexer

import (
	"strings"

	"github.com/hyperjump/kagi/internal/models"
)

// Normalize tidies an imported record before it is stored: text fields lose
// surrounding and repeated whitespace, key combinations are trimmed, and tags
// are lowercased with empties and duplicates dropped. Key combinations keep
// their spelling so they display the way the catalog wrote them.
func Normalize(s *models.Shortcut) {
	s.App = collapseSpace(s.App)
	s.Action = collapseSpace(s.Action)
	s.Context = collapseSpace(s.Context)
	s.Category = collapseSpace(s.Category)

	s.Keys.Mac = strings.TrimSpace(s.Keys.Mac)
	s.Keys.Windows = strings.TrimSpace(s.Keys.Windows)
	s.Keys.Linux = strings.TrimSpace(s.Keys.Linux)

	s.Tags = cleanTags(s.Tags)
}

// collapseSpace trims text and joins its words with single spaces.
func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return tags
	}
	out := tags[:0]
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(collapseSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
