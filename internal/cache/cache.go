package cache

import (
	"strconv"
	"sync"
	"time"
)

// DefaultTTL matches the feed's tolerance for stale reads.
const DefaultTTL = 5 * time.Minute

var timeNow = time.Now

type entry struct {
	data      any
	timestamp time.Time
}

// Cache is an in-memory memoization layer with lazy expiry. It is
// constructed and injected into the services that need it; there is no
// package-level instance. Entries older than the TTL are treated as
// absent on read, no background sweep runs, and invalidation triggered
// by a mutation completes before the mutating call returns.
type Cache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]entry
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, entries: map[string]entry{}}
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if timeNow().Sub(e.timestamp) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

func (c *Cache) store(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: data, timestamp: timeNow()}
}

// Invalidate removes every entry whose key matches the predicate.
func (c *Cache) Invalidate(match func(key string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
		}
	}
}

// GetOrFetch returns the cached value for key, calling fetch and caching
// its result on a miss. A fetch error is returned without caching.
func GetOrFetch[T any](c *Cache, key string, fetch func() (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	fetched, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	c.store(key, fetched)
	return fetched, nil
}

// Key helpers for the two namespaces: the route collection cache and the
// per-user profile cache.

func RoutesKey(pageSize int) string { return "routes_" + strconv.Itoa(pageSize) }
func RouteKey(id string) string     { return "route_" + id }
func UserKey(id string) string      { return "user_" + id }

// IsCollectionKey reports whether key belongs to the route-collection
// namespace.
func IsCollectionKey(key string) bool {
	return len(key) > 7 && key[:7] == "routes_"
}

// RouteMutationMatcher matches the keys a successful mutation of route id
// must evict: the route itself and every collection listing.
func RouteMutationMatcher(id string) func(string) bool {
	routeKey := RouteKey(id)
	return func(key string) bool {
		return key == routeKey || IsCollectionKey(key)
	}
}
