package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/ai"
	"github.com/hyperjump/kagi/internal/models"
)

// DefaultCandidatePool is how many keyword results are offered to the provider.
const DefaultCandidatePool = 50

// FallbackEvent describes a provider failure that was answered locally.
type FallbackEvent struct {
	// Op is "search" or "explain".
	Op       string
	Query    string
	Provider string
	Kind     ai.FailureKind
	Err      error
}

// SemanticEngine re-ranks keyword candidates with a remote provider and falls
// back to the keyword engine whenever the provider cannot answer.
type SemanticEngine struct {
	keyword    *Engine
	provider   ai.Provider
	pool       int
	limit      int
	logger     *zap.Logger
	onFallback func(FallbackEvent)
}

// SemanticOption configures a SemanticEngine.
type SemanticOption func(*SemanticEngine)

// WithSemanticLogger sets the engine logger.
func WithSemanticLogger(logger *zap.Logger) SemanticOption {
	return func(s *SemanticEngine) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCandidatePool overrides DefaultCandidatePool.
func WithCandidatePool(n int) SemanticOption {
	return func(s *SemanticEngine) {
		if n > 0 {
			s.pool = n
		}
	}
}

// WithSemanticLimit sets the result limit used when a request has none.
func WithSemanticLimit(n int) SemanticOption {
	return func(s *SemanticEngine) {
		if n > 0 {
			s.limit = n
		}
	}
}

// OnFallback registers an observer called for every fallback.
func OnFallback(fn func(FallbackEvent)) SemanticOption {
	return func(s *SemanticEngine) {
		s.onFallback = fn
	}
}

// NewSemanticEngine wraps keyword with provider-driven ranking.
func NewSemanticEngine(keyword *Engine, provider ai.Provider, opts ...SemanticOption) *SemanticEngine {
	s := &SemanticEngine{
		keyword:  keyword,
		provider: provider,
		pool:     DefaultCandidatePool,
		limit:    models.DefaultSemanticLimit,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the name of the configured provider.
func (s *SemanticEngine) Provider() string {
	return s.provider.Name()
}

// ProviderBreaker returns the provider's circuit breaker state, or "" when
// no breaker is configured.
func (s *SemanticEngine) ProviderBreaker() string {
	return ai.BreakerState(s.provider)
}

// SemanticSearch returns up to filters.Limit (default 10) shortcuts in the
// provider's order. Provider failures never surface: the keyword ranking for
// the same filters is returned instead. Only record store errors are returned.
func (s *SemanticEngine) SemanticSearch(ctx context.Context, filters models.SearchFilters) ([]*models.Shortcut, error) {
	out, _, err := s.semanticSearch(ctx, filters)
	return out, err
}

// Search runs SemanticSearch and wraps the results in a response.
func (s *SemanticEngine) Search(ctx context.Context, filters models.SearchFilters) (*models.SearchResponse, error) {
	start := time.Now()
	results, fellBack, err := s.semanticSearch(ctx, filters)
	if err != nil {
		return nil, err
	}
	resp := &models.SearchResponse{
		Results:   make([]*models.ScoredShortcut, len(results)),
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     filters.Query,
		Mode:      "semantic",
		Fallback:  fellBack,
	}
	for i, r := range results {
		resp.Results[i] = &models.ScoredShortcut{Shortcut: r}
	}
	return resp, nil
}

func (s *SemanticEngine) semanticSearch(ctx context.Context, filters models.SearchFilters) ([]*models.Shortcut, bool, error) {
	f := ProcessFilters(filters, s.limit)

	poolFilters := f
	poolFilters.Limit = s.pool
	candidates, err := s.keyword.FuzzySearch(ctx, poolFilters)
	if err != nil {
		return nil, false, err
	}
	if len(candidates) == 0 {
		return []*models.Shortcut{}, false, nil
	}

	ids, err := s.provider.Rank(ctx, f.Query, candidates, f.Limit)
	if err != nil {
		s.fallback(FallbackEvent{Op: "search", Query: f.Query, Err: err})
		out, err := s.keyword.FuzzySearch(ctx, f)
		return out, true, err
	}

	byID := make(map[string]*models.Shortcut, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	out := make([]*models.Shortcut, 0, min(len(ids), f.Limit))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			continue
		}
		delete(byID, id)
		out = append(out, c)
		if len(out) == f.Limit {
			break
		}
	}
	return out, false, nil
}

// ExplainShortcut returns a one-sentence description of rec. When the provider
// cannot answer it returns "{action} in {app}", followed by " ({keys})" when a
// key combination resolves for platform.
func (s *SemanticEngine) ExplainShortcut(ctx context.Context, rec *models.Shortcut, platform models.Platform) string {
	if rec == nil {
		return ""
	}
	text, err := s.provider.Explain(ctx, rec, platform)
	if err == nil {
		return text
	}
	s.fallback(FallbackEvent{Op: "explain", Query: rec.ID, Err: err})
	return FallbackExplanation(rec, platform)
}

// FallbackExplanation is the locally built explanation for rec.
func FallbackExplanation(rec *models.Shortcut, platform models.Platform) string {
	text := rec.Action + " in " + rec.App
	if k := rec.Keys.Resolve(platform); k != "" {
		text += " (" + k + ")"
	}
	return text
}

func (s *SemanticEngine) fallback(ev FallbackEvent) {
	ev.Provider = s.provider.Name()
	ev.Kind = ai.Classify(ev.Err)
	SemanticFallbacks.WithLabelValues(ev.Provider, string(ev.Kind)).Inc()
	s.logger.Info("provider unavailable, using keyword results",
		zap.String("op", ev.Op),
		zap.String("provider", ev.Provider),
		zap.String("reason", string(ev.Kind)),
		zap.Error(ev.Err))
	if s.onFallback != nil {
		s.onFallback(ev)
	}
}
