package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/models"
)

// BreakerConfig configures WithBreaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// Cooldown is how long the breaker stays open before a trial call.
	Cooldown time.Duration
}

// breakerProvider fails fast while the remote provider is unhealthy. An open
// breaker counts as the single attempt for the call.
type breakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps p in a circuit breaker. Only network, timeout and 5xx
// failures count against the provider; caller cancellation does not.
func WithBreaker(p Provider, cfg BreakerConfig, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "ai-" + p.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return !countsAsOutage(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &breakerProvider{next: p, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *breakerProvider) Name() string { return b.next.Name() }

func (b *breakerProvider) Rank(ctx context.Context, query string, candidates []*models.Shortcut, limit int) ([]string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Rank(ctx, query, candidates, limit)
	})
	if err != nil {
		return nil, breakerError(err)
	}
	ids, _ := out.([]string)
	return ids, nil
}

func (b *breakerProvider) Explain(ctx context.Context, rec *models.Shortcut, platform models.Platform) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Explain(ctx, rec, platform)
	})
	if err != nil {
		return "", breakerError(err)
	}
	s, _ := out.(string)
	return s, nil
}

// State returns the breaker state name.
func (b *breakerProvider) State() string {
	return b.cb.State().String()
}

// BreakerState returns the state of the circuit breaker wrapped around p
// ("closed", "half-open" or "open"), or "" when p has none.
func BreakerState(p Provider) string {
	for p != nil {
		switch v := p.(type) {
		case *breakerProvider:
			return v.State()
		case interface{ Unwrap() Provider }:
			p = v.Unwrap()
		default:
			return ""
		}
	}
	return ""
}

func countsAsOutage(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 500 || httpErr.Status == 429
	}
	switch Classify(err) {
	case FailureNetwork, FailureTimeout, FailureUnknown:
		return true
	default:
		return false
	}
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return err
}
