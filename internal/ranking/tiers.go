// Package ranking scores shortcuts against natural-language queries using an
// ordered set of match tiers. Exact and prefix matches on the action always
// outrank tag and fuzzy matches.
package ranking

// Tier identifies which rule produced a score.
type Tier int

const (
	// TierNone means no rule matched (score 0).
	TierNone Tier = iota
	// TierTagWord: some query word is a substring of some tag.
	TierTagWord
	// TierFuzzy: action is similar to the query by edit distance.
	TierFuzzy
	// TierTagSubstring: some tag contains the whole query.
	TierTagSubstring
	// TierAllWords: every word of a multi-word query appears in the action.
	TierAllWords
	// TierSubstring: the query appears inside the action.
	TierSubstring
	// TierTagExact: some tag equals the query.
	TierTagExact
	// TierPrefix: the action starts with the query.
	TierPrefix
	// TierExact: the action equals the query.
	TierExact
)

// Tier scores.
const (
	ScoreExact        = 1.0
	ScorePrefix       = 0.8
	ScoreTagExact     = 0.7
	ScoreSubstring    = 0.6
	ScoreAllWords     = 0.5
	ScoreTagSubstring = 0.45
	ScoreTagWord      = 0.25

	// Fuzzy matches map similarity in (0.5, 1] onto (FuzzyBase, FuzzyBase+FuzzySpan*0.5].
	FuzzyThreshold = 0.5
	FuzzyBase      = 0.3
	FuzzySpan      = 0.2
)

// String returns a string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierTagWord:
		return "tag_word"
	case TierFuzzy:
		return "fuzzy"
	case TierTagSubstring:
		return "tag_substring"
	case TierAllWords:
		return "all_words"
	case TierSubstring:
		return "substring"
	case TierTagExact:
		return "tag_exact"
	case TierPrefix:
		return "prefix"
	case TierExact:
		return "exact"
	default:
		return "unknown"
	}
}
