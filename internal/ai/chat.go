package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/models"
)

// completer sends one system+user exchange and returns the reply text.
type completer interface {
	complete(ctx context.Context, system, prompt string) (string, error)
}

// llmCompleter adapts a langchaingo model.
type llmCompleter struct {
	model llms.Model
}

func (c llmCompleter) complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithTemperature(0))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformedReply)
	}
	return resp.Choices[0].Content, nil
}

func newLLM(cfg Config) (completer, error) {
	model := cfg.ModelOrDefault()
	var (
		llm llms.Model
		err error
	)
	switch cfg.Kind {
	case KindOpenAI:
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	case KindAnthropic:
		opts := []anthropic.Option{anthropic.WithToken(cfg.APIKey), anthropic.WithModel(model)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		llm, err = anthropic.New(opts...)
	case KindOllama:
		opts := []ollama.Option{ollama.WithModel(model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err = ollama.New(opts...)
	case KindCohere:
		return newCohereCompleter(cfg), nil
	default:
		return nil, fmt.Errorf("kind %q has no chat transport", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	return llmCompleter{model: llm}, nil
}

// chatProvider implements Provider over any chat-completion transport.
// Prompt building and reply parsing are shared by every transport.
type chatProvider struct {
	cfg    Config
	llm    completer
	logger *zap.Logger
}

func (p *chatProvider) Name() string { return string(p.cfg.Kind) }

func (p *chatProvider) Rank(ctx context.Context, query string, candidates []*models.Shortcut, limit int) ([]string, error) {
	if len(candidates) == 0 {
		return []string{}, nil
	}
	text, err := p.do(ctx, "rank", rankSystemPrompt, BuildRankPrompt(query, candidates, limit))
	if err != nil {
		return nil, err
	}
	ids, err := ParseRanking(text)
	observe(p.Name(), "parse_rank", err)
	return ids, err
}

func (p *chatProvider) Explain(ctx context.Context, rec *models.Shortcut, platform models.Platform) (string, error) {
	text, err := p.do(ctx, "explain", explainSystemPrompt, BuildExplainPrompt(rec, platform))
	if err != nil {
		return "", err
	}
	s, err := ParseExplanation(text)
	observe(p.Name(), "parse_explain", err)
	return s, err
}

func (p *chatProvider) do(ctx context.Context, op, system, prompt string) (string, error) {
	if !p.cfg.HasCredential() || p.llm == nil {
		return "", ErrMissingCredential
	}
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout())
	defer cancel()

	start := time.Now()
	text, err := p.llm.complete(callCtx, system, prompt)
	if err != nil {
		err = transportError(callCtx, err)
	}
	observeDuration(p.Name(), op, start, err)
	if err != nil {
		p.logger.Debug("provider call failed",
			zap.String("op", op),
			zap.String("kind", string(Classify(err))),
			zap.Error(err))
		return "", err
	}
	return text, nil
}
