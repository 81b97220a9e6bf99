package cache

import (
	"context"
	"sync"
	"time"
)

// SkeletonEntry is one cached layout hint, used to paint a placeholder
// before the full session payload resolves.
type SkeletonEntry struct {
	Route     string    `json:"route"`
	Hint      any       `json:"hint"`
	CachedAt  time.Time `json:"cachedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (e *SkeletonEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// SkeletonCache is a TTL map from route to layout hint, bounded by a size
// cap with oldest-insertion eviction on overflow. No LRU tracking: hints
// are tiny and the simple policy is enough.
type SkeletonCache struct {
	mu      sync.Mutex
	entries map[string]SkeletonEntry
	order   []string // insertion order, oldest first

	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// SkeletonCacheOption configures a SkeletonCache.
type SkeletonCacheOption func(*SkeletonCache)

// WithSkeletonMaxSize bounds the entry count. Default: 100.
func WithSkeletonMaxSize(n int) SkeletonCacheOption {
	return func(c *SkeletonCache) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// WithSkeletonTTL sets the per-entry TTL. Default: 30 minutes.
func WithSkeletonTTL(d time.Duration) SkeletonCacheOption {
	return func(c *SkeletonCache) {
		c.ttl = d
	}
}

// NewSkeletonCache creates a skeleton cache.
func NewSkeletonCache(opts ...SkeletonCacheOption) *SkeletonCache {
	c := &SkeletonCache{
		entries: make(map[string]SkeletonEntry),
		maxSize: 100,
		ttl:     30 * time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the hint for a route if present and unexpired. Expired
// entries are purged on read.
func (c *SkeletonCache) Get(route string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[route]
	if !ok {
		return nil, false
	}
	if entry.expired(c.now()) {
		c.remove(route)
		return nil, false
	}
	return entry.Hint, true
}

// Set stores a hint for a route, evicting the oldest-inserted entry when
// the cap is reached.
func (c *SkeletonCache) Set(route string, hint any) {
	now := c.now()
	entry := SkeletonEntry{Route: route, Hint: hint, CachedAt: now}
	if c.ttl > 0 {
		entry.ExpiresAt = now.Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[route]; ok {
		c.entries[route] = entry
		return
	}
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		c.remove(c.order[0])
	}
	c.entries[route] = entry
	c.order = append(c.order, route)
}

// Size returns the entry count.
func (c *SkeletonCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove drops a route from the map and order slice. Caller holds the lock.
func (c *SkeletonCache) remove(route string) {
	delete(c.entries, route)
	for i, r := range c.order {
		if r == route {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// SkeletonResult pairs an immediately available skeleton hint with the
// eventual full payload.
type SkeletonResult struct {
	// Skeleton is the cached layout hint, nil when none is cached.
	Skeleton any

	// HasSkeleton reports whether Skeleton came from the cache.
	HasSkeleton bool

	// Content yields the full session payload exactly once. A failed fetch
	// yields nil rather than an error, so the skeleton can still render.
	Content <-chan any
}

// GetWithSkeleton composes the two caches: it returns immediately with
// whatever skeleton hint is cached for the route, plus a channel that
// resolves to the full session payload via the session cache's
// get-or-fetch path.
func GetWithSkeleton(ctx context.Context, route, sessionID string, skeletons *SkeletonCache, sessions *SessionCache, fetcher SessionFetcher) SkeletonResult {
	hint, ok := skeletons.Get(route)

	content := make(chan any, 1)
	go func() {
		entry, err := sessions.Prefetch(ctx, sessionID, fetcher)
		if err != nil {
			content <- nil
			return
		}
		content <- entry.Payload
	}()

	return SkeletonResult{Skeleton: hint, HasSkeleton: ok, Content: content}
}
