package ai

import (
	"container/list"
	"context"
	"strings"
	"sync"

	"github.com/hyperjump/kagi/internal/models"
)

// explainCache is an LRU of successful explanations.
type explainCache struct {
	capacity int
	mu       sync.Mutex
	entries  map[string]*list.Element
	lru      *list.List
}

type cacheEntry struct {
	key   string
	value string
}

func newExplainCache(capacity int) *explainCache {
	return &explainCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (c *explainCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return "", false
}

func (c *explainCache) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, value: value})
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// explainKey changes whenever the text sent to the provider would change.
func explainKey(rec *models.Shortcut, platform models.Platform) string {
	return strings.Join([]string{rec.ID, string(platform), rec.App, rec.Action, rec.Keys.Resolve(platform), rec.Context}, "\x00")
}

type cachingProvider struct {
	next  Provider
	cache *explainCache
}

// WithExplainCache remembers up to size successful explanations of p.
// Ranking is never cached. A size of zero or less returns p unchanged.
func WithExplainCache(p Provider, size int) Provider {
	if size <= 0 {
		return p
	}
	return &cachingProvider{next: p, cache: newExplainCache(size)}
}

func (c *cachingProvider) Name() string { return c.next.Name() }

// Unwrap returns the provider whose explanations are cached.
func (c *cachingProvider) Unwrap() Provider { return c.next }

func (c *cachingProvider) Rank(ctx context.Context, query string, candidates []*models.Shortcut, limit int) ([]string, error) {
	return c.next.Rank(ctx, query, candidates, limit)
}

func (c *cachingProvider) Explain(ctx context.Context, rec *models.Shortcut, platform models.Platform) (string, error) {
	key := explainKey(rec, platform)
	if text, ok := c.cache.get(key); ok {
		return text, nil
	}
	text, err := c.next.Explain(ctx, rec, platform)
	if err != nil {
		return "", err
	}
	c.cache.set(key, text)
	return text, nil
}
