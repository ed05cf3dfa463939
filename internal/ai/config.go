// Package ai adapts remote language-model providers to a single ranking and
// explanation contract. Every call makes one attempt bounded by a timeout and
// reports failures as one of a fixed set of kinds.
package ai

import (
	"fmt"
	"strings"
	"time"
)

// Kind is a provider kind.
type Kind string

const (
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindOllama    Kind = "ollama"
	KindCohere    Kind = "cohere"
	KindNone      Kind = "none"
)

// DefaultTimeoutMS bounds a single provider call.
const DefaultTimeoutMS = 5000

// Default models per provider kind.
var defaultModels = map[Kind]string{
	KindOpenAI:    "gpt-4o-mini",
	KindAnthropic: "claude-3-5-haiku-latest",
	KindOllama:    "llama3.2",
	KindCohere:    "command-r-08-2024",
}

// ParseKind maps a configuration string to a Kind. Empty input means KindNone.
// "openrouter" and "openai-compatible" select the OpenAI transport.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "disabled":
		return KindNone, nil
	case "openai", "openrouter", "openai-compatible":
		return KindOpenAI, nil
	case "anthropic", "claude":
		return KindAnthropic, nil
	case "ollama":
		return KindOllama, nil
	case "cohere":
		return KindCohere, nil
	default:
		return "", fmt.Errorf("unknown ai provider %q", s)
	}
}

// Config selects and configures a provider.
type Config struct {
	Kind      Kind
	APIKey    string
	Model     string
	BaseURL   string
	TimeoutMS int
}

// Timeout returns the per-call timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return DefaultTimeoutMS * time.Millisecond
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// RequiresCredential reports whether the provider kind needs an API key.
func (c Config) RequiresCredential() bool {
	switch c.Kind {
	case KindOllama:
		return false
	default:
		return true
	}
}

// HasCredential reports whether calls can be attempted at all.
func (c Config) HasCredential() bool {
	if c.Kind == KindNone || c.Kind == "" {
		return false
	}
	return !c.RequiresCredential() || c.APIKey != ""
}

// ModelOrDefault returns the configured model or the kind's default.
func (c Config) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Kind]
}
