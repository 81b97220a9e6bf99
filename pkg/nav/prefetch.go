package nav

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// PriorityHigh asks the speculation layer to prerender instead of prefetch.
const PriorityHigh = "high"

// PrefetchOptions configures one Prefetch call.
type PrefetchOptions struct {
	// Data controls whether the session payload is fetched. On by default.
	Data bool

	// Presence additionally fetches collaboration info for the route.
	Presence bool

	// Priority selects the speculation tier; PriorityHigh promotes the
	// target to a prerender candidate.
	Priority string
}

// PrefetchOption is a functional option for Prefetch.
type PrefetchOption func(*PrefetchOptions)

// WithoutData skips the session payload fetch, leaving only the
// speculation hint and any presence fetch.
func WithoutData() PrefetchOption {
	return func(o *PrefetchOptions) { o.Data = false }
}

// WithPresence also fetches presence info for the target route.
func WithPresence() PrefetchOption {
	return func(o *PrefetchOptions) { o.Presence = true }
}

// WithPriority sets the speculation tier for the target.
func WithPriority(p string) PrefetchOption {
	return func(o *PrefetchOptions) { o.Priority = p }
}

// Prefetch warms the caches for href ahead of a navigation. Concurrent
// calls for the same target and option set are coalesced into a single
// fetch; all callers share its result.
func (e *Engine) Prefetch(ctx context.Context, href string, opts ...PrefetchOption) error {
	options := PrefetchOptions{Data: true}
	for _, opt := range opts {
		opt(&options)
	}

	match, ok := e.matcher.Match(href)
	if !ok {
		return ErrNoRoute.WithDetail("no route matches %q", href)
	}

	ctx, endSpan := e.tracer.StartPrefetch(ctx, href, match.SessionID)
	kind := "prefetch"
	if options.Priority == PriorityHigh {
		kind = "prerender"
	}
	e.metrics.RecordPrefetch(kind)

	key := fmt.Sprintf("%s|data=%t|presence=%t", match.SessionID, options.Data, options.Presence)
	_, err, _ := e.flight.Do(key, func() (any, error) {
		g, gctx := errgroup.WithContext(ctx)

		if options.Data {
			g.Go(func() error {
				_, err := e.sessions.Prefetch(gctx, match.SessionID, e.fetchSession)
				return err
			})
		}
		if options.Presence && e.fetchPresence != nil {
			g.Go(func() error {
				data, err := e.fetchPresence(gctx, match.Route.Pattern)
				if err != nil {
					return err
				}
				p := Presence{Route: match.Route.Pattern, Data: data, FetchedAt: e.now()}
				e.mu.Lock()
				e.presence[match.Route.Pattern] = p
				e.mu.Unlock()
				e.notifyPresence(p)
				return nil
			})
		}
		return nil, g.Wait()
	})
	endSpan(err)
	if err != nil {
		return err
	}

	if options.Priority == PriorityHigh {
		if err := e.spec.Prerender(href); err != nil {
			e.logger.Debug("prerender hint failed", "href", href, "error", err)
		}
	} else {
		if err := e.spec.Prefetch(href); err != nil {
			e.logger.Debug("prefetch hint failed", "href", href, "error", err)
		}
	}
	return nil
}
