package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestSkeletonCache(clock *fakeClock, opts ...SkeletonCacheOption) *SkeletonCache {
	c := NewSkeletonCache(opts...)
	c.now = clock.Now
	return c
}

func TestSkeletonSetGet(t *testing.T) {
	c := newTestSkeletonCache(newFakeClock())
	c.Set("/blog/[slug]", "hint")

	hint, ok := c.Get("/blog/[slug]")
	if !ok || hint != "hint" {
		t.Errorf("Get = (%v, %v), want (hint, true)", hint, ok)
	}
}

func TestSkeletonTTL(t *testing.T) {
	clock := newFakeClock()
	c := newTestSkeletonCache(clock, WithSkeletonTTL(time.Minute))
	c.Set("/a", "hint")

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("/a"); ok {
		t.Error("expired skeleton should not be returned")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after purge, want 0", c.Size())
	}
}

func TestSkeletonOldestEvictedOnOverflow(t *testing.T) {
	c := newTestSkeletonCache(newFakeClock(), WithSkeletonMaxSize(2))
	c.Set("/first", 1)
	c.Set("/second", 2)
	c.Set("/third", 3)

	if _, ok := c.Get("/first"); ok {
		t.Error("oldest-inserted entry should have been evicted")
	}
	if _, ok := c.Get("/second"); !ok {
		t.Error("/second should survive")
	}
	if _, ok := c.Get("/third"); !ok {
		t.Error("/third should survive")
	}
}

func TestGetWithSkeletonCachedHint(t *testing.T) {
	clock := newFakeClock()
	skeletons := newTestSkeletonCache(clock)
	sessions := newTestCache(clock)
	skeletons.Set("/blog/[slug]", "blog-skeleton")

	res := GetWithSkeleton(context.Background(), "/blog/[slug]", "blog-hello", skeletons, sessions,
		func(ctx context.Context, id string) (any, error) {
			return "full:" + id, nil
		})

	if !res.HasSkeleton || res.Skeleton != "blog-skeleton" {
		t.Errorf("skeleton = (%v, %v), want cached hint", res.Skeleton, res.HasSkeleton)
	}

	select {
	case payload := <-res.Content:
		if payload != "full:blog-hello" {
			t.Errorf("content = %v, want full payload", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("content channel never resolved")
	}

	// The composed fetch populates the session cache.
	if !sessions.Has("blog-hello") {
		t.Error("session should be cached after content resolves")
	}
}

func TestGetWithSkeletonFetchFailureYieldsNil(t *testing.T) {
	clock := newFakeClock()
	res := GetWithSkeleton(context.Background(), "/a", "a", newTestSkeletonCache(clock), newTestCache(clock),
		func(context.Context, string) (any, error) {
			return nil, errors.New("offline")
		})

	if res.HasSkeleton {
		t.Error("no skeleton was cached")
	}
	select {
	case payload := <-res.Content:
		if payload != nil {
			t.Errorf("content = %v, want nil on fetch failure", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("content channel must resolve even on failure")
	}
}
