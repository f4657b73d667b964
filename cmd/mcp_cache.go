package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/mj1618/mobile-cli/internal/session"
)

// mcpCacheEntry holds a cached page source with its timestamp.
type mcpCacheEntry struct {
	source    string
	timestamp time.Time
}

// mcpSourceCache provides a TTL-based cache for page source fetches, keyed by
// session id. Fetching the source is the most expensive driver round trip,
// and consecutive tools (find, click, read_text) usually run against the same
// screen. State-changing tools invalidate the entry.
type mcpSourceCache struct {
	mu      sync.Mutex
	entries map[string]mcpCacheEntry
	ttl     time.Duration
}

// newMCPSourceCache creates a new cache. A ttl of 0 disables caching.
func newMCPSourceCache(ttl time.Duration) *mcpSourceCache {
	return &mcpSourceCache{
		entries: make(map[string]mcpCacheEntry),
		ttl:     ttl,
	}
}

// pageSource returns the cached source if within TTL, otherwise fetches fresh.
func (c *mcpSourceCache) pageSource(ctx context.Context, sess *session.Session) (string, error) {
	if c.ttl == 0 {
		return sess.Driver.GetPageSource(ctx)
	}

	c.mu.Lock()
	if entry, ok := c.entries[sess.ID]; ok && time.Since(entry.timestamp) < c.ttl {
		source := entry.source
		c.mu.Unlock()
		return source, nil
	}
	c.mu.Unlock()

	source, err := sess.Driver.GetPageSource(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[sess.ID] = mcpCacheEntry{source: source, timestamp: time.Now()}
	c.mu.Unlock()

	return source, nil
}

// invalidateSession removes the cache entry for the given session.
func (c *mcpSourceCache) invalidateSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
}

// invalidateAll clears the entire cache.
func (c *mcpSourceCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]mcpCacheEntry)
}
