// File path: internal/oracle/cache.go
package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/llm"
)

type cacheMarkerKey struct{}

// withCacheMarker installs a flag the caching provider flips on a hit, so
// the client can report FromCache without changing the provider interface.
func withCacheMarker(ctx context.Context, hit *bool) context.Context {
	return context.WithValue(ctx, cacheMarkerKey{}, hit)
}

func markCacheHit(ctx context.Context) {
	if hit, ok := ctx.Value(cacheMarkerKey{}).(*bool); ok && hit != nil {
		*hit = true
	}
}

type cacheEntry struct {
	text      string
	expiresAt time.Time
}

// cachingProvider memoizes successful completions for a bounded TTL.
// Escalation prompts differ per tier, so caching never collapses distinct
// tiers into one answer; it only spares identical re-generations.
type cachingProvider struct {
	inner llm.Provider
	ttl   time.Duration

	mu   sync.RWMutex
	data map[string]cacheEntry
}

func newCachingProvider(inner llm.Provider, ttl time.Duration) *cachingProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &cachingProvider{inner: inner, ttl: ttl, data: make(map[string]cacheEntry)}
}

func (c *cachingProvider) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	key := requestKey(req)
	if text, ok := c.get(key); ok {
		common.Logger().Debug("oracle: cache hit", "provider", c.inner.Name())
		markCacheHit(ctx)
		return text, nil
	}
	text, err := c.inner.Chat(ctx, req)
	if err != nil {
		return "", err
	}
	c.set(key, text)
	return text, nil
}

func (c *cachingProvider) Name() string {
	if c.inner == nil {
		return "cache"
	}
	return fmt.Sprintf("%s+cache", c.inner.Name())
}

func (c *cachingProvider) get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.text, true
}

func (c *cachingProvider) set(key, text string) {
	c.mu.Lock()
	c.data[key] = cacheEntry{text: text, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func requestKey(req llm.ChatRequest) string {
	hash := sha256.New()
	for _, msg := range req.Messages {
		hash.Write([]byte(msg.Role))
		hash.Write([]byte{0})
		hash.Write([]byte(msg.Content))
		hash.Write([]byte{0})
	}
	hash.Write([]byte(strconv.FormatFloat(req.Temperature, 'f', -1, 64)))
	return hex.EncodeToString(hash.Sum(nil))
}
