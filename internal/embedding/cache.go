package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

const defaultCacheLimit = 1024

// Cached memoizes query vectors of an Embedder, keyed by model and text hash.
type Cached struct {
	inner Embedder
	limit int

	mu      sync.RWMutex
	vectors map[string]Vector
}

// NewCached wraps e. When the cache reaches limit entries it is cleared.
func NewCached(e Embedder, limit int) *Cached {
	if limit <= 0 {
		limit = defaultCacheLimit
	}
	return &Cached{inner: e, limit: limit, vectors: make(map[string]Vector)}
}

func (c *Cached) Model() string { return c.inner.Model() }

func (c *Cached) Embed(ctx context.Context, text string) (Vector, error) {
	key := c.key(text)

	c.mu.RLock()
	v, ok := c.vectors[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return Vector{}, err
	}

	c.mu.Lock()
	if len(c.vectors) >= c.limit {
		clear(c.vectors)
	}
	c.vectors[key] = v
	c.mu.Unlock()

	return v, nil
}

// Len reports the number of cached vectors.
func (c *Cached) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}

func (c *Cached) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.inner.Model() + ":" + hex.EncodeToString(sum[:])
}
