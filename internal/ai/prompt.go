package ai

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kagi/internal/models"
)

const rankSystemPrompt = `You rank keyboard shortcuts by how well they match a user's request.
Reply with only a JSON object of the form {"rankedShortcuts": ["<id>", ...]}.
List the ids of the best matches first. Use only ids from the candidate list. No prose.`

const explainSystemPrompt = `You explain keyboard shortcuts to users in one plain-English sentence.
Reply with only a JSON object of the form {"explanation": "<sentence>"}. No prose.`

// BuildRankPrompt lists the candidates for a ranking request.
func BuildRankPrompt(query string, candidates []*models.Shortcut, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", query)
	fmt.Fprintf(&b, "Return at most %d ids.\n\nCandidates:\n", limit)
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id: %s\n  action: %s\n  app: %s\n", c.ID, c.Action, c.App)
		for _, p := range models.Platforms {
			if k := c.Keys.For(p); k != "" {
				fmt.Fprintf(&b, "  %s: %s\n", p, k)
			}
		}
		if len(c.Tags) > 0 {
			fmt.Fprintf(&b, "  tags: %s\n", strings.Join(c.Tags, ", "))
		}
	}
	return b.String()
}

// BuildExplainPrompt describes a single shortcut for an explanation request.
func BuildExplainPrompt(rec *models.Shortcut, platform models.Platform) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Application: %s\nAction: %s\n", rec.App, rec.Action)
	if k := rec.Keys.Resolve(platform); k != "" {
		fmt.Fprintf(&b, "Keys: %s\n", k)
	}
	if rec.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", rec.Context)
	}
	if len(rec.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(rec.Tags, ", "))
	}
	return b.String()
}
