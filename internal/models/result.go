package models

// ScoredShortcut is a shortcut with its relevance score and the scoring tier that produced it.
type ScoredShortcut struct {
	Shortcut *Shortcut `json:"shortcut"`
	Score    float64   `json:"score"`
	Tier     string    `json:"tier,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results   []*ScoredShortcut `json:"results"`
	Total     int               `json:"total"`
	QueryTime int64             `json:"query_time_ms"`
	Query     string            `json:"query"`
	// Mode is "keyword", "keys", or "semantic".
	Mode string `json:"mode"`
	// Fallback is true when a semantic request was answered by keyword search.
	Fallback bool `json:"fallback,omitempty"`
	// Suggestions contains "Did you mean?" spellings when a keyword search has no hits.
	Suggestions []string `json:"suggestions,omitempty"`
}

// ExplainResponse is the response for an explain request.
type ExplainResponse struct {
	ID          string `json:"id"`
	Explanation string `json:"explanation"`
}
