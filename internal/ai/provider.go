package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/models"
)

// Provider ranks and explains shortcuts using a remote model. Each call is a
// single attempt bounded by the configured timeout.
type Provider interface {
	Name() string
	// Rank returns candidate IDs in relevance order, at most limit of them.
	Rank(ctx context.Context, query string, candidates []*models.Shortcut, limit int) ([]string, error)
	// Explain returns one sentence describing rec.
	Explain(ctx context.Context, rec *models.Shortcut, platform models.Platform) (string, error)
}

// Option configures a provider built by New.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger for provider calls.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New builds the provider for cfg.Kind. A provider whose credential is
// missing is still returned; its calls fail with ErrMissingCredential
// without touching the network.
func New(cfg Config, opts ...Option) (Provider, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With(zap.String("provider", string(cfg.Kind)))

	switch cfg.Kind {
	case KindNone, "":
		return disabled{}, nil
	case KindOpenAI, KindAnthropic, KindOllama, KindCohere:
		p := &chatProvider{cfg: cfg, logger: logger}
		if cfg.HasCredential() {
			llm, err := newLLM(cfg)
			if err != nil {
				return nil, fmt.Errorf("failed to create %s client: %w", cfg.Kind, err)
			}
			p.llm = llm
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Kind)
	}
}

// disabled is the provider for KindNone.
type disabled struct{}

func (disabled) Name() string { return string(KindNone) }

func (disabled) Rank(context.Context, string, []*models.Shortcut, int) ([]string, error) {
	return nil, ErrMissingCredential
}

func (disabled) Explain(context.Context, *models.Shortcut, models.Platform) (string, error) {
	return "", ErrMissingCredential
}
