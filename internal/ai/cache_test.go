package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kagi/internal/models"
)

func TestWithExplainCache_ReusesSuccessfulExplanations(t *testing.T) {
	inner := &countingProvider{}
	p := WithExplainCache(inner, 2)
	ctx := context.Background()
	rec := &models.Shortcut{ID: "vim-split", App: "vim", Action: "Split window vertically", Keys: models.Keys{Linux: "Ctrl+w v"}}

	for i := 0; i < 3; i++ {
		text, err := p.Explain(ctx, rec, models.PlatformLinux)
		require.NoError(t, err)
		assert.Equal(t, "explained", text)
	}
	assert.Equal(t, 1, inner.calls)

	_, _ = p.Explain(ctx, rec, models.PlatformMac)
	assert.Equal(t, 2, inner.calls, "platform is part of the key")

	changed := *rec
	changed.Action = "Split window"
	_, _ = p.Explain(ctx, &changed, models.PlatformLinux)
	assert.Equal(t, 3, inner.calls, "edited records are explained again")
}

func TestWithExplainCache_DoesNotCacheFailures(t *testing.T) {
	inner := &countingProvider{err: ErrTimeout}
	p := WithExplainCache(inner, 4)
	rec := &models.Shortcut{ID: "a", Action: "Copy"}
	for i := 0; i < 2; i++ {
		_, err := p.Explain(context.Background(), rec, "")
		assert.True(t, errors.Is(err, ErrTimeout))
	}
	assert.Equal(t, 2, inner.calls)
}

func TestWithExplainCache_RankPassesThrough(t *testing.T) {
	inner := &countingProvider{ids: []string{"b", "a"}}
	p := WithExplainCache(inner, 4)
	ids, err := p.Rank(context.Background(), "q", nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
	_, _ = p.Rank(context.Background(), "q", nil, 2)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "fake", p.Name())
}

func TestWithExplainCache_Disabled(t *testing.T) {
	inner := &countingProvider{}
	assert.Same(t, Provider(inner), WithExplainCache(inner, 0))
}

func TestExplainCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newExplainCache(2)
	c.set("a", "1")
	c.set("b", "2")
	_, _ = c.get("a")
	c.set("c", "3")

	_, ok := c.get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = c.get("c")
	assert.True(t, ok)
}
