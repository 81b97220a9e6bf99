// Package speculation drives browser speculative-loading hints: it decides
// which paths get prefetched or prerendered, bounds both sets, and
// translates decisions into rules directives or link-prefetch fallbacks.
package speculation

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultHoverDelay is how long a pointer must rest on a link before the
// hover intent fires.
const DefaultHoverDelay = 100 * time.Millisecond

// Stats is a snapshot of the three speculation sets.
type Stats struct {
	Prefetched  int `json:"prefetched"`
	Prerendered int `json:"prerendered"`
	Pending     int `json:"pending"`
}

// Controller maintains the prefetched, prerendered, and pending path sets
// and issues directives through a RulesWriter. Safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	writer RulesWriter

	prefetched  map[string]struct{}
	prerendered map[string]struct{}
	pending     map[string]struct{}

	maxPrefetch  int
	maxPrerender int

	hoverDelay  time.Duration
	hoverTimers map[string]*time.Timer

	seen map[string]struct{} // visibility intents already honored

	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxPrefetch bounds the prefetched set. Default: 10.
func WithMaxPrefetch(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxPrefetch = n
		}
	}
}

// WithMaxPrerender bounds the prerendered set. Default: 2.
func WithMaxPrerender(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxPrerender = n
		}
	}
}

// WithHoverDelay sets the hover-intent delay.
func WithHoverDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.hoverDelay = d
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger.With("component", "speculation")
	}
}

// NewController creates a controller over the given writer. A nil writer
// behaves like NoopWriter.
func NewController(writer RulesWriter, opts ...Option) *Controller {
	if writer == nil {
		writer = NoopWriter{}
	}
	c := &Controller{
		writer:       writer,
		prefetched:   make(map[string]struct{}),
		prerendered:  make(map[string]struct{}),
		pending:      make(map[string]struct{}),
		maxPrefetch:  10,
		maxPrerender: 2,
		hoverDelay:   DefaultHoverDelay,
		hoverTimers:  make(map[string]*time.Timer),
		seen:         make(map[string]struct{}),
		logger:       slog.Default().With("component", "speculation"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prefetch requests a speculative fetch of path. Already-speculated paths
// and requests beyond the prefetch bound are no-ops.
func (c *Controller) Prefetch(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.has(path) {
		return nil
	}
	if len(c.prefetched) >= c.maxPrefetch {
		c.logger.Debug("prefetch budget exhausted", "path", path)
		return nil
	}

	c.pending[path] = struct{}{}
	err := c.issue(path, false)
	delete(c.pending, path)
	if err != nil {
		return err
	}
	c.prefetched[path] = struct{}{}
	return nil
}

// Prerender requests a full speculative render of path, promoting it out of
// the prefetched set if present. Requests beyond the prerender bound are
// no-ops.
func (c *Controller) Prerender(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.prerendered[path]; ok {
		return nil
	}
	if len(c.prerendered) >= c.maxPrerender {
		c.logger.Debug("prerender budget exhausted", "path", path)
		return nil
	}

	c.pending[path] = struct{}{}
	err := c.issue(path, true)
	delete(c.pending, path)
	if err != nil {
		return err
	}
	delete(c.prefetched, path)
	c.prerendered[path] = struct{}{}
	return nil
}

// issue pushes the accumulated sets (plus path) to the platform. The rules
// mechanism replaces the whole directive; the link fallback is incremental
// and only covers prefetch. Caller holds the lock.
func (c *Controller) issue(path string, prerender bool) error {
	switch {
	case c.writer.SupportsRules():
		prefetch := c.sortedSet(c.prefetched)
		prerendered := c.sortedSet(c.prerendered)
		if prerender {
			prerendered = append(prerendered, path)
			sort.Strings(prerendered)
		} else {
			prefetch = append(prefetch, path)
			sort.Strings(prefetch)
		}
		if err := c.writer.ClearRules(); err != nil {
			return err
		}
		return c.writer.WriteRules(prefetch, prerendered)
	case c.writer.SupportsLinkPrefetch():
		// No prerender via links; a prefetch hint is the best available.
		return c.writer.InsertLinkPrefetch(path)
	default:
		return nil
	}
}

// HoverStart arms the hover-intent timer for path. The prefetch fires only
// if the pointer rests for the configured delay.
func (c *Controller) HoverStart(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, armed := c.hoverTimers[path]; armed {
		return
	}
	c.hoverTimers[path] = time.AfterFunc(c.hoverDelay, func() {
		c.mu.Lock()
		delete(c.hoverTimers, path)
		c.mu.Unlock()
		if err := c.Prefetch(path); err != nil {
			c.logger.Warn("hover prefetch failed", "path", path, "error", err)
		}
	})
}

// HoverEnd cancels a pending hover intent for path.
func (c *Controller) HoverEnd(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.hoverTimers[path]; ok {
		timer.Stop()
		delete(c.hoverTimers, path)
	}
}

// OnVisible handles a visibility intent: the first sighting of a path
// triggers a prefetch, later ones are ignored.
func (c *Controller) OnVisible(path string) {
	c.mu.Lock()
	if _, ok := c.seen[path]; ok {
		c.mu.Unlock()
		return
	}
	c.seen[path] = struct{}{}
	c.mu.Unlock()

	if err := c.Prefetch(path); err != nil {
		c.logger.Warn("visibility prefetch failed", "path", path, "error", err)
	}
}

// IsPrefetched reports whether path is in the prefetched set.
func (c *Controller) IsPrefetched(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.prefetched[path]
	return ok
}

// IsPrerendered reports whether path is in the prerendered set.
func (c *Controller) IsPrerendered(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.prerendered[path]
	return ok
}

// Stats returns the current set sizes.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Prefetched:  len(c.prefetched),
		Prerendered: len(c.prerendered),
		Pending:     len(c.pending),
	}
}

// Clear drops all speculation state, cancels hover timers, and removes the
// active directive.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path, timer := range c.hoverTimers {
		timer.Stop()
		delete(c.hoverTimers, path)
	}
	c.prefetched = make(map[string]struct{})
	c.prerendered = make(map[string]struct{})
	c.pending = make(map[string]struct{})
	c.seen = make(map[string]struct{})
	return c.writer.ClearRules()
}

// has reports whether path is already speculated in any form. Caller holds
// the lock.
func (c *Controller) has(path string) bool {
	if _, ok := c.prefetched[path]; ok {
		return true
	}
	if _, ok := c.prerendered[path]; ok {
		return true
	}
	_, ok := c.pending[path]
	return ok
}

func (c *Controller) sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for path := range set {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
