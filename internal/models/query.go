package models

// Default result limits.
const (
	DefaultKeywordLimit  = 50
	DefaultSemanticLimit = 10
)

// SearchFilters is a search request with optional narrowing fields.
// Zero values mean "not set".
type SearchFilters struct {
	Query    string   `json:"query"`
	App      string   `json:"app,omitempty"`
	Platform Platform `json:"platform,omitempty"`
	Category string   `json:"category,omitempty"`
	Context  string   `json:"context,omitempty"`
	Tag      string   `json:"tag,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// WithDefaultLimit returns a copy of f with Limit set to def when it is not positive.
// Unknown platform values are dropped so they behave as unset.
func (f SearchFilters) WithDefaultLimit(def int) SearchFilters {
	if f.Limit <= 0 {
		f.Limit = def
	}
	if f.Platform != "" {
		p, ok := ParsePlatform(string(f.Platform))
		if !ok {
			p = ""
		}
		f.Platform = p
	}
	return f
}
