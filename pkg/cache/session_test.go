package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(clock *fakeClock, opts ...SessionCacheOption) *SessionCache {
	c := NewSessionCache(opts...)
	c.now = clock.Now
	return c
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(newFakeClock())
	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestSetAndGet(t *testing.T) {
	c := newTestCache(newFakeClock())
	c.Set("a", "payload-a", 0)

	entry, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit for a")
	}
	if entry.Payload != "payload-a" {
		t.Errorf("Payload = %v, want payload-a", entry.Payload)
	}
	if entry.SessionID != "a" {
		t.Errorf("SessionID = %q, want a", entry.SessionID)
	}
}

func TestLRUEvictionScenario(t *testing.T) {
	// maxSize = 2; set(A); set(B); set(C) => A evicted, B and C present.
	c := newTestCache(newFakeClock(), WithMaxSize(2))
	c.Set("A", 1, 0)
	c.Set("B", 2, 0)
	c.Set("C", 3, 0)

	if _, ok := c.Get("A"); ok {
		t.Error("A should have been evicted")
	}
	if _, ok := c.Get("B"); !ok {
		t.Error("B should still be cached")
	}
	if _, ok := c.Get("C"); !ok {
		t.Error("C should still be cached")
	}
}

func TestLRUEvictsLeastRecentlyAccessed(t *testing.T) {
	c := newTestCache(newFakeClock(), WithMaxSize(2))
	c.Set("A", 1, 0)
	c.Set("B", 2, 0)

	// Touch A so B becomes the LRU victim.
	if _, ok := c.Get("A"); !ok {
		t.Fatal("expected hit for A")
	}
	c.Set("C", 3, 0)

	if _, ok := c.Get("B"); ok {
		t.Error("B was least recently used and should have been evicted")
	}
	if _, ok := c.Get("A"); !ok {
		t.Error("A was refreshed and should survive")
	}
}

func TestSizeBoundAlwaysHolds(t *testing.T) {
	const maxSize = 5
	c := newTestCache(newFakeClock(), WithMaxSize(maxSize))
	for i := 0; i < 100; i++ {
		c.Set(string(rune('a'+i%26))+string(rune('0'+i%10)), i, 0)
		if c.Size() > maxSize {
			t.Fatalf("size %d exceeds bound %d after %d sets", c.Size(), maxSize, i+1)
		}
	}
}

func TestTTLExpiry(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	c.Set("a", "v", time.Minute)

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("entry should be live before the TTL elapses")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("entry should expire after the TTL")
	}
	// Purged, not just hidden.
	if c.Size() != 0 {
		t.Errorf("Size() = %d after expiry purge, want 0", c.Size())
	}
}

func TestDefaultTTLApplied(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, WithDefaultTTL(time.Minute))
	c.Set("a", "v", 0)

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("default TTL should apply when ttl is 0")
	}
}

func TestTTLForever(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, WithDefaultTTL(time.Minute))
	c.Set("a", "v", TTLForever)

	clock.Advance(24 * time.Hour)
	if _, ok := c.Get("a"); !ok {
		t.Error("TTLForever entry should never expire")
	}
}

func TestHasDoesNotRefreshRecency(t *testing.T) {
	c := newTestCache(newFakeClock(), WithMaxSize(2))
	c.Set("A", 1, 0)
	c.Set("B", 2, 0)

	// Has must not promote A; A stays the LRU victim.
	if !c.Has("A") {
		t.Fatal("expected A present")
	}
	c.Set("C", 3, 0)
	if c.Has("A") {
		t.Error("A should have been evicted despite the Has call")
	}
}

func TestEvictionCallback(t *testing.T) {
	var evicted []string
	c := newTestCache(newFakeClock(), WithMaxSize(1), WithEvictionCallback(func(e Entry) {
		evicted = append(evicted, e.SessionID)
	}))
	c.Set("A", 1, 0)
	c.Set("B", 2, 0)

	if len(evicted) != 1 || evicted[0] != "A" {
		t.Errorf("evicted = %v, want [A]", evicted)
	}
}

func TestEvictionCallbackPanicIsolated(t *testing.T) {
	c := newTestCache(newFakeClock(), WithMaxSize(1), WithEvictionCallback(func(Entry) {
		panic("listener bug")
	}))
	c.Set("A", 1, 0)
	c.Set("B", 2, 0) // must not panic through

	if _, ok := c.Get("B"); !ok {
		t.Error("cache state corrupted by panicking eviction callback")
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestPrefetchFetchesOnMiss(t *testing.T) {
	c := newTestCache(newFakeClock())
	calls := 0
	fetcher := func(ctx context.Context, id string) (any, error) {
		calls++
		return "fetched:" + id, nil
	}

	entry, err := c.Prefetch(context.Background(), "a", fetcher)
	if err != nil {
		t.Fatalf("Prefetch: %v", err)
	}
	if entry.Payload != "fetched:a" {
		t.Errorf("Payload = %v", entry.Payload)
	}

	// Second call is served from cache.
	if _, err := c.Prefetch(context.Background(), "a", fetcher); err != nil {
		t.Fatalf("Prefetch: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetcher called %d times, want 1", calls)
	}
}

func TestPrefetchPropagatesError(t *testing.T) {
	c := newTestCache(newFakeClock())
	boom := errors.New("network down")
	_, err := c.Prefetch(context.Background(), "a", func(context.Context, string) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want the fetcher error", err)
	}
	if c.Has("a") {
		t.Error("failed fetch must not populate the cache")
	}
}

func TestPreloadAll(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, WithMaxSize(100))
	c.Set("pre", "already", 0)

	ids := []string{"pre"}
	for i := 0; i < 24; i++ {
		ids = append(ids, "s"+string(rune('a'+i)))
	}

	var fetched []string
	var progress [][2]int
	err := c.PreloadAll(context.Background(), ids, func(ctx context.Context, id string) (any, error) {
		if id == "sb" {
			return nil, errors.New("flaky")
		}
		fetched = append(fetched, id)
		return "v:" + id, nil
	}, func(loaded, total int) {
		progress = append(progress, [2]int{loaded, total})
	})
	if err != nil {
		t.Fatalf("PreloadAll: %v", err)
	}

	// Already-cached id skipped, failed id skipped, rest stored forever.
	if len(fetched) != 23 {
		t.Errorf("fetched %d ids, want 23", len(fetched))
	}
	if c.Has("sb") {
		t.Error("failed item must not be cached")
	}
	clock.Advance(48 * time.Hour)
	if !c.Has("sa") {
		t.Error("preloaded entries should have no expiry")
	}

	// Progress advances for every item, failures included.
	if len(progress) != len(ids) {
		t.Fatalf("onProgress called %d times, want %d", len(progress), len(ids))
	}
	last := progress[len(progress)-1]
	if last[0] != len(ids) || last[1] != len(ids) {
		t.Errorf("final progress = %v, want [%d %d]", last, len(ids), len(ids))
	}
}

func TestPreloadAllCancelled(t *testing.T) {
	c := newTestCache(newFakeClock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.PreloadAll(ctx, []string{"a", "b"}, func(context.Context, string) (any, error) {
		t.Error("fetcher should not run after cancellation")
		return nil, nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestStats(t *testing.T) {
	c := newTestCache(newFakeClock())
	c.Set("a", map[string]any{"title": "hello"}, 0)

	c.Get("a")    // hit
	c.Get("nope") // miss

	stats := c.Stats()
	if stats.Entries != 1 || stats.Size != 1 {
		t.Errorf("Entries = %d, Size = %d, want 1, 1", stats.Entries, stats.Size)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("HitRate = %v, want 0.5", stats.HitRate)
	}
	if stats.Bytes <= 0 {
		t.Errorf("Bytes = %d, want > 0", stats.Bytes)
	}
}
