package ranking

import (
	"strings"

	"github.com/hyperjump/kagi/internal/keyword"
	"github.com/hyperjump/kagi/internal/models"
)

// NormalizeQuery lowercases and trims a natural-language query. It is not the
// key-combination normalizer.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Score returns the relevance of s to normalizedQuery in [0, 1].
func Score(s *models.Shortcut, normalizedQuery string) float64 {
	score, _ := ScoreWithTier(s, normalizedQuery)
	return score
}

// ScoreWithTier returns the relevance of s to normalizedQuery and the tier that
// produced it. Tiers are evaluated in order; an exact action match returns
// immediately and every later tier can only raise the running maximum.
func ScoreWithTier(s *models.Shortcut, normalizedQuery string) (float64, Tier) {
	q := normalizedQuery
	if s == nil || q == "" {
		return 0, TierNone
	}
	action := strings.ToLower(strings.TrimSpace(s.Action))

	if action == q {
		return ScoreExact, TierExact
	}

	best, tier := 0.0, TierNone
	raise := func(v float64, t Tier) {
		if v > best {
			best, tier = v, t
		}
	}

	tags := make([]string, len(s.Tags))
	for i, t := range s.Tags {
		tags[i] = strings.ToLower(t)
	}
	words := strings.Fields(q)

	if strings.HasPrefix(action, q) {
		raise(ScorePrefix, TierPrefix)
	}
	for _, t := range tags {
		if t == q {
			raise(ScoreTagExact, TierTagExact)
			break
		}
	}
	if strings.Contains(action, q) {
		raise(ScoreSubstring, TierSubstring)
	}
	if len(words) > 1 && containsAll(action, words) {
		raise(ScoreAllWords, TierAllWords)
	}
	for _, t := range tags {
		if strings.Contains(t, q) {
			raise(ScoreTagSubstring, TierTagSubstring)
			break
		}
	}
	if sim := keyword.Similarity(action, q); sim > FuzzyThreshold {
		raise(FuzzyBase+(sim-FuzzyThreshold)*FuzzySpan, TierFuzzy)
	}
	if anyWordInTags(words, tags) {
		raise(ScoreTagWord, TierTagWord)
	}
	return best, tier
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

func anyWordInTags(words, tags []string) bool {
	for _, w := range words {
		for _, t := range tags {
			if strings.Contains(t, w) {
				return true
			}
		}
	}
	return false
}
