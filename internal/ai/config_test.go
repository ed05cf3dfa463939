package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":           KindNone,
		"none":       KindNone,
		"OpenAI":     KindOpenAI,
		"openrouter": KindOpenAI,
		"anthropic":  KindAnthropic,
		"ollama":     KindOllama,
		" cohere ":   KindCohere,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("palm")
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	assert.Equal(t, 5*time.Second, Config{}.Timeout())
	assert.Equal(t, 100*time.Millisecond, Config{TimeoutMS: 100}.Timeout())

	assert.False(t, Config{Kind: KindOpenAI}.HasCredential())
	assert.True(t, Config{Kind: KindOpenAI, APIKey: "k"}.HasCredential())
	assert.True(t, Config{Kind: KindOllama}.HasCredential())
	assert.False(t, Config{Kind: KindNone, APIKey: "k"}.HasCredential())

	assert.Equal(t, "gpt-4o-mini", Config{Kind: KindOpenAI}.ModelOrDefault())
	assert.Equal(t, "custom", Config{Kind: KindOpenAI, Model: "custom"}.ModelOrDefault())
}
