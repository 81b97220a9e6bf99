package nav

import (
	"context"
	"time"
)

// TransitionNone disables view transitions for a navigation.
const TransitionNone = "none"

// NavigateOptions configures one Navigate call.
type NavigateOptions struct {
	// Transition names the view transition to use; TransitionNone (the
	// default) applies the DOM update directly.
	Transition string

	// Replace overwrites the current history entry instead of appending.
	Replace bool
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithTransition requests a view transition of the given type.
func WithTransition(name string) NavigateOption {
	return func(o *NavigateOptions) { o.Transition = name }
}

// WithReplace overwrites the current history entry instead of appending.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) { o.Replace = true }
}

// Navigate resolves href, obtains its session payload, applies the DOM
// update, advances history, and kicks off predicted prefetches.
//
// An unresolved href is a hard failure. Overlapping calls are not queued:
// the newest call wins, and an older call that loses the race returns
// ErrSuperseded without applying its state changes. The Navigating flag is
// always released, even on failure.
func (e *Engine) Navigate(ctx context.Context, href string, opts ...NavigateOption) error {
	options := NavigateOptions{Transition: TransitionNone}
	for _, opt := range opts {
		opt(&options)
	}

	match, ok := e.matcher.Match(href)
	if !ok {
		return ErrNoRoute.WithDetail("no route matches %q", href)
	}

	ctx, endSpan := e.tracer.StartNavigation(ctx, href)
	start := e.now()
	var err error
	defer func() {
		endSpan(err)
		status := "success"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordNavigation(status, time.Since(start).Seconds())
	}()

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.state.Navigating = true
	e.mu.Unlock()
	e.notifyState()

	defer func() {
		e.mu.Lock()
		// A newer navigation owns the flag now; leave it alone.
		if e.generation == gen {
			e.state.Navigating = false
		}
		e.mu.Unlock()
		e.notifyState()
	}()

	entry, fetchErr := e.sessions.Prefetch(ctx, match.SessionID, e.fetchSession)
	if fetchErr != nil {
		err = fetchErr
		return err
	}

	if superseded := e.stale(gen); superseded {
		err = ErrSuperseded
		return err
	}

	// DOM update is delegated; the engine only decides whether it runs
	// inside a view transition.
	if e.render != nil {
		update := func() error { return e.render(ctx, match, entry.Payload) }
		if options.Transition != TransitionNone && e.platform.SupportsViewTransitions() {
			err = e.platform.StartViewTransition(ctx, update)
		} else {
			err = update()
		}
		if err != nil {
			return err
		}
	}

	e.mu.Lock()
	if e.generation != gen {
		e.mu.Unlock()
		err = ErrSuperseded
		return err
	}
	e.state.Previous = e.state.Current
	e.state.Current = href
	if options.Replace && len(e.state.History) > 0 {
		e.state.History[len(e.state.History)-1] = href
	} else {
		e.state.History = append(e.state.History, href)
	}
	history := append([]string(nil), e.state.History...)
	e.mu.Unlock()

	if options.Replace {
		e.platform.HistoryReplace(href)
	} else {
		e.platform.HistoryPush(href)
	}

	e.prefetchPredicted(ctx, history, href)

	e.logger.Debug("navigated", "href", href, "session_id", match.SessionID, "replace", options.Replace)
	return nil
}

// Back pops the current history entry and navigates to the new top with
// replace semantics. With one entry or none there is nowhere to go and the
// call is a no-op.
func (e *Engine) Back(ctx context.Context) error {
	e.mu.Lock()
	if len(e.state.History) <= 1 {
		e.mu.Unlock()
		return nil
	}
	e.state.History = e.state.History[:len(e.state.History)-1]
	target := e.state.History[len(e.state.History)-1]
	e.mu.Unlock()

	return e.Navigate(ctx, target, WithReplace())
}

// prefetchPredicted issues fire-and-forget prefetches for the top
// predicted candidates above the probability threshold.
func (e *Engine) prefetchPredicted(ctx context.Context, history []string, from string) {
	e.metrics.RecordPrediction()
	issued := 0
	for _, p := range e.model.Predict(history, from) {
		if issued >= e.prefetchFanout {
			break
		}
		if p.Probability <= e.prefetchThreshold {
			break // sorted descending, nothing further qualifies
		}
		issued++
		candidate := p.Route
		// Detach from the navigation's ctx: these outlive the call.
		bg := context.WithoutCancel(ctx)
		go func() {
			if err := e.Prefetch(bg, candidate); err != nil {
				e.logger.Debug("predicted prefetch failed", "href", candidate, "error", err)
			}
		}()
	}
}

// stale reports whether a newer navigation has started since gen.
func (e *Engine) stale(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation != gen
}
