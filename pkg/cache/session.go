package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// TTLForever marks an entry that never expires, for preload-forever use.
const TTLForever time.Duration = -1

// preloadBatchSize is how many sessions PreloadAll fetches per batch.
const preloadBatchSize = 10

// preloadBatchPause is the gap between preload batches, so a large manifest
// does not starve the rest of the process.
const preloadBatchPause = 10 * time.Millisecond

// SessionFetcher loads a session payload by id. Injected; the cache performs
// no network transport of its own.
type SessionFetcher func(ctx context.Context, sessionID string) (any, error)

// Entry is one cached session payload. Owned by the SessionCache; mutate
// only through Set.
type Entry struct {
	SessionID string    `json:"sessionId"`
	Payload   any       `json:"payload"`
	CachedAt  time.Time `json:"cachedAt"`

	// ExpiresAt is the expiry deadline; the zero time means no expiry.
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the entry is past its deadline at the given time.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Metrics receives cache events. Implementations must be cheap and must not
// call back into the cache.
type Metrics interface {
	Hit()
	Miss()
	Evict()
	Size(n int)
}

// Stats is a point-in-time summary of cache effectiveness.
type Stats struct {
	Size    int     `json:"size"`
	Bytes   int64   `json:"bytes"`
	HitRate float64 `json:"hitRate"`
	Entries int     `json:"entries"`
}

// SessionCache is an LRU cache keyed by session id with independent
// per-entry TTLs. Safe for concurrent use.
type SessionCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front = most recently used

	maxSize    int
	defaultTTL time.Duration
	onEvict    func(Entry)
	metrics    Metrics
	logger     *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
	bytes  int64

	// now is the clock; overridden in tests.
	now func() time.Time
}

type cachedItem struct {
	entry Entry
	size  int64
}

// SessionCacheOption configures a SessionCache.
type SessionCacheOption func(*SessionCache)

// WithMaxSize bounds the number of entries. Default: 50.
func WithMaxSize(n int) SessionCacheOption {
	return func(c *SessionCache) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// WithDefaultTTL sets the TTL applied when Set is called with ttl 0.
// Default: 5 minutes.
func WithDefaultTTL(d time.Duration) SessionCacheOption {
	return func(c *SessionCache) {
		c.defaultTTL = d
	}
}

// WithEvictionCallback registers a callback invoked synchronously for every
// evicted or expired-and-purged entry, so a UI can release associated
// resources. A panicking callback is contained and must not corrupt cache
// state.
func WithEvictionCallback(fn func(Entry)) SessionCacheOption {
	return func(c *SessionCache) {
		c.onEvict = fn
	}
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) SessionCacheOption {
	return func(c *SessionCache) {
		c.metrics = m
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) SessionCacheOption {
	return func(c *SessionCache) {
		c.logger = logger.With("component", "session_cache")
	}
}

// NewSessionCache creates a session cache.
func NewSessionCache(opts ...SessionCacheOption) *SessionCache {
	c := &SessionCache{
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
		maxSize:    50,
		defaultTTL: 5 * time.Minute,
		logger:     slog.Default().With("component", "session_cache"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the entry for id if present and unexpired, refreshing its
// recency. An expired entry is purged and counted as a miss.
func (c *SessionCache) Get(id string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		c.recordMiss()
		return Entry{}, false
	}

	item := el.Value.(*cachedItem)
	if item.entry.Expired(c.now()) {
		c.removeElement(el, true)
		c.recordMiss()
		return Entry{}, false
	}

	c.lru.MoveToFront(el)
	c.recordHit()
	return item.entry, true
}

// Has reports whether an unexpired entry exists without refreshing recency
// or touching hit/miss accounting. Expired entries are purged.
func (c *SessionCache) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return false
	}
	if el.Value.(*cachedItem).entry.Expired(c.now()) {
		c.removeElement(el, true)
		return false
	}
	return true
}

// Set stores a payload under id. ttl 0 applies the configured default;
// TTLForever stores without expiry. Inserting a brand-new key beyond
// maxSize evicts the least-recently-used entry first.
func (c *SessionCache) Set(id string, payload any, ttl time.Duration) {
	now := c.now()
	entry := Entry{
		SessionID: id,
		Payload:   payload,
		CachedAt:  now,
	}
	switch {
	case ttl == TTLForever:
		// no expiry
	case ttl == 0:
		if c.defaultTTL > 0 {
			entry.ExpiresAt = now.Add(c.defaultTTL)
		}
	default:
		entry.ExpiresAt = now.Add(ttl)
	}

	size := approxSize(payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[id]; ok {
		item := el.Value.(*cachedItem)
		c.bytes += size - item.size
		item.entry = entry
		item.size = size
		c.lru.MoveToFront(el)
		return
	}

	// New key: make room first so the bound always holds.
	for len(c.entries) >= c.maxSize {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest, true)
		if c.metrics != nil {
			c.metrics.Evict()
		}
	}

	el := c.lru.PushFront(&cachedItem{entry: entry, size: size})
	c.entries[id] = el
	c.bytes += size
	if c.metrics != nil {
		c.metrics.Size(len(c.entries))
	}
}

// Delete removes an entry without invoking the eviction callback.
func (c *SessionCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[id]; ok {
		c.removeElement(el, false)
	}
}

// Clear removes all entries without invoking the eviction callback.
func (c *SessionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.bytes = 0
}

// Size returns the number of entries, including any not yet purged
// expired ones.
func (c *SessionCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Prefetch returns the cached entry for id, or invokes fetcher, stores the
// result with the default TTL, and returns it. Concurrent calls for the
// same id are NOT coalesced here; that guarantee belongs to the engine.
func (c *SessionCache) Prefetch(ctx context.Context, id string, fetcher SessionFetcher) (Entry, error) {
	if entry, ok := c.Get(id); ok {
		return entry, nil
	}
	payload, err := fetcher(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	c.Set(id, payload, 0)
	entry, _ := c.Get(id)
	return entry, nil
}

// PreloadAll warms the cache for every id in the manifest, in batches of
// ten, skipping ids already cached and storing fetched payloads without
// expiry. Per-item fetch failures are logged and skipped; onProgress is
// invoked after every item either way. Respects ctx cancellation between
// items and batches.
func (c *SessionCache) PreloadAll(ctx context.Context, ids []string, fetcher SessionFetcher, onProgress func(loaded, total int)) error {
	total := len(ids)
	loaded := 0

	for start := 0; start < total; start += preloadBatchSize {
		end := start + preloadBatchSize
		if end > total {
			end = total
		}

		for _, id := range ids[start:end] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !c.Has(id) {
				payload, err := fetcher(ctx, id)
				if err != nil {
					c.logger.Warn("preload fetch failed", "session_id", id, "error", err)
				} else {
					c.Set(id, payload, TTLForever)
				}
			}
			loaded++
			if onProgress != nil {
				onProgress(loaded, total)
			}
		}

		if end < total {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(preloadBatchPause):
			}
		}
	}
	return nil
}

// Stats returns size, approximate serialized byte total, hit rate, and
// entry count.
func (c *SessionCache) Stats() Stats {
	c.mu.Lock()
	size := len(c.entries)
	bytes := c.bytes
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	rate := 0.0
	if hits+misses > 0 {
		rate = float64(hits) / float64(hits+misses)
	}
	return Stats{Size: size, Bytes: bytes, HitRate: rate, Entries: size}
}

// removeElement unlinks an element, adjusts byte accounting, and optionally
// notifies the eviction callback. Caller holds the lock.
func (c *SessionCache) removeElement(el *list.Element, notify bool) {
	item := el.Value.(*cachedItem)
	delete(c.entries, item.entry.SessionID)
	c.lru.Remove(el)
	c.bytes -= item.size
	if notify && c.onEvict != nil {
		c.safeEvictCallback(item.entry)
	}
	if c.metrics != nil {
		c.metrics.Size(len(c.entries))
	}
}

// safeEvictCallback keeps a panicking callback from corrupting cache state.
func (c *SessionCache) safeEvictCallback(entry Entry) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("eviction callback panicked", "session_id", entry.SessionID, "panic", r)
		}
	}()
	c.onEvict(entry)
}

func (c *SessionCache) recordHit() {
	c.hits.Inc()
	if c.metrics != nil {
		c.metrics.Hit()
	}
}

func (c *SessionCache) recordMiss() {
	c.misses.Inc()
	if c.metrics != nil {
		c.metrics.Miss()
	}
}

// approxSize estimates the serialized byte size of a payload. Unserializable
// payloads count as zero.
func approxSize(payload any) int64 {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0
	}
	return int64(len(b))
}
