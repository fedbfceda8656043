package coach

import (
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached analysis stays servable.
const DefaultCacheTTL = 5 * time.Minute

// Fingerprint derives a stable cache key for a request. Only the first 100
// bytes of history participate, so trailing edits to a long thread do not
// defeat the cache while the visible head still matches.
func Fingerprint(history string, scenario ScenarioType, tone int, userContext string, p Provider) string {
	head := history
	if len(head) > 100 {
		head = head[:100]
	}
	raw := fmt.Sprintf("%s-%s-%d-%s-%s", head, scenario, tone, userContext, p)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

type cacheEntry struct {
	value   ThreadlyResponse
	expires time.Time
}

// ResponseCache is an in-memory TTL cache for normalized analysis results.
// Expired entries are evicted lazily on lookup; the working set is a handful
// of recent conversations, so no sweeper is needed.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result for key, if present and unexpired.
func (c *ResponseCache) Get(key string) (ThreadlyResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return ThreadlyResponse{}, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return ThreadlyResponse{}, false
	}
	return e.value, true
}

// Put stores a result under key with the cache's TTL.
func (c *ResponseCache) Put(key string, value ThreadlyResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(c.ttl)}
}

// Clear drops all entries.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports the number of entries, including any not yet lazily evicted.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
