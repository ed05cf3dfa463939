// Package search provides the keyword search engine and the AI re-ranking
// engine layered on top of it.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/keys"
	"github.com/hyperjump/kagi/internal/models"
	"github.com/hyperjump/kagi/internal/ranking"
	"github.com/hyperjump/kagi/internal/storage"
)

// DefaultMaxCandidates caps how many records a single search reads from the store.
const DefaultMaxCandidates = 10000

// Suggester proposes alternative spellings for a query.
type Suggester interface {
	Suggestions(query string, n int) []string
}

// Engine runs deterministic keyword and key-combination search over a record store.
type Engine struct {
	store          storage.RecordStore
	defaultLimit   int
	maxCandidates  int
	suggester      Suggester
	maxSuggestions int
	logger         *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDefaultLimit sets the result limit used when a request has none.
func WithDefaultLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.defaultLimit = n
		}
	}
}

// WithMaxCandidates overrides DefaultMaxCandidates.
func WithMaxCandidates(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxCandidates = n
		}
	}
}

// WithSuggester enables "did you mean" suggestions for searches without hits.
func WithSuggester(s Suggester, n int) EngineOption {
	return func(e *Engine) {
		e.suggester = s
		if n > 0 {
			e.maxSuggestions = n
		}
	}
}

// NewEngine creates a keyword search engine over store.
func NewEngine(store storage.RecordStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:          store,
		defaultLimit:   models.DefaultKeywordLimit,
		maxCandidates:  DefaultMaxCandidates,
		maxSuggestions: 3,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FuzzySearch returns shortcuts ranked by relevance to filters.Query.
// An empty query browses the first Limit candidates in store order.
func (e *Engine) FuzzySearch(ctx context.Context, filters models.SearchFilters) ([]*models.Shortcut, error) {
	scored, err := e.ScoredSearch(ctx, filters)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Shortcut, len(scored))
	for i, s := range scored {
		out[i] = s.Shortcut
	}
	return out, nil
}

// ScoredSearch is FuzzySearch with each result's score and tier kept.
// Browse results carry score 0 and tier "none".
func (e *Engine) ScoredSearch(ctx context.Context, filters models.SearchFilters) ([]*models.ScoredShortcut, error) {
	f := ProcessFilters(filters, e.defaultLimit)

	candidates, err := e.store.Search(ctx, storage.StoreQuery{
		App:      f.App,
		Category: f.Category,
		Limit:    e.maxCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	candidates = applyFilters(candidates, f)

	q := ranking.NormalizeQuery(f.Query)
	if q == "" {
		n := min(f.Limit, len(candidates))
		out := make([]*models.ScoredShortcut, n)
		for i := 0; i < n; i++ {
			out[i] = &models.ScoredShortcut{Shortcut: candidates[i], Tier: ranking.TierNone.String()}
		}
		return out, nil
	}

	scored := make([]*models.ScoredShortcut, 0, len(candidates))
	for _, c := range candidates {
		score, tier := ranking.ScoreWithTier(c, q)
		if score <= 0 {
			continue
		}
		scored = append(scored, &models.ScoredShortcut{Shortcut: c, Score: score, Tier: tier.String()})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > f.Limit {
		scored = scored[:f.Limit]
	}

	e.logger.Debug("keyword search",
		zap.String("query", q),
		zap.Int("candidates", len(candidates)),
		zap.Int("hits", len(scored)))
	return scored, nil
}

// Search runs ScoredSearch and wraps the results in a response, adding
// spelling suggestions when nothing matched.
func (e *Engine) Search(ctx context.Context, filters models.SearchFilters) (*models.SearchResponse, error) {
	start := time.Now()
	results, err := e.ScoredSearch(ctx, filters)
	if err != nil {
		return nil, err
	}
	resp := &models.SearchResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     filters.Query,
		Mode:      "keyword",
	}
	if len(results) == 0 {
		resp.Suggestions = e.Suggest(filters.Query)
	}
	return resp, nil
}

// SearchByKeys returns shortcuts bound to combo. With a platform only that
// platform's keys are compared; otherwise mac, windows and linux are checked
// in turn and each record appears at most once. Results keep store order.
func (e *Engine) SearchByKeys(ctx context.Context, combo string, platform models.Platform) ([]*models.Shortcut, error) {
	target := keys.Normalize(combo)
	if target == "" {
		return []*models.Shortcut{}, nil
	}
	if platform != "" {
		if p, ok := models.ParsePlatform(string(platform)); ok {
			platform = p
		} else {
			platform = ""
		}
	}

	candidates, err := e.store.Search(ctx, storage.StoreQuery{Limit: e.maxCandidates})
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	platforms := models.Platforms
	if platform != "" {
		platforms = []models.Platform{platform}
	}
	out := make([]*models.Shortcut, 0)
	for _, c := range candidates {
		for _, p := range platforms {
			if keys.ForPlatform(c.Keys, p) == target {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// Suggest returns "did you mean" spellings for query, or nil when no
// suggester is configured.
func (e *Engine) Suggest(query string) []string {
	if e.suggester == nil || query == "" {
		return nil
	}
	return e.suggester.Suggestions(query, e.maxSuggestions)
}

// Store returns the engine's record store.
func (e *Engine) Store() storage.RecordStore {
	return e.store
}
