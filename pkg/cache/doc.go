// Package cache provides the two stores behind navigation: an LRU session
// cache with per-entry TTLs, and a simpler TTL skeleton cache of layout
// hints.
//
// # Session cache
//
//	c := cache.NewSessionCache(
//	    cache.WithMaxSize(50),
//	    cache.WithDefaultTTL(5*time.Minute),
//	    cache.WithEvictionCallback(releaseResources),
//	)
//	c.Set("blog-hello", payload, 0)
//	entry, ok := c.Get("blog-hello")
//
// An entry past its deadline is never returned and is purged on the next
// read; the entry count never exceeds the configured maximum.
//
// # Skeleton composition
//
// GetWithSkeleton returns immediately with whatever layout hint is cached
// and a channel that later yields the full payload, so callers can paint a
// placeholder while content resolves:
//
//	res := cache.GetWithSkeleton(ctx, "/blog/[slug]", "blog-hello", skeletons, sessions, fetch)
//	paint(res.Skeleton)
//	payload := <-res.Content // nil if the fetch failed
//
// # Persistence
//
// Export and Import snapshot the full entry set as JSON so cache state can
// survive a page load.
package cache
