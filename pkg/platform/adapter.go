// Package platform abstracts the browser-facing capabilities the engine
// needs: the History API, view transitions, and link visibility
// observation. The engine only ever talks to an Adapter, so non-browser
// environments (tests, SSR, tooling) inject Noop or Recorder instead.
package platform

import "context"

// Adapter is the capability surface injected into the navigation engine.
type Adapter interface {
	// HistoryPush appends a browser history entry for path.
	HistoryPush(path string)

	// HistoryReplace overwrites the current history entry with path.
	HistoryReplace(path string)

	// SupportsViewTransitions reports whether the view-transition
	// capability is available.
	SupportsViewTransitions() bool

	// StartViewTransition runs update inside a view transition. Only called
	// when SupportsViewTransitions reports true.
	StartViewTransition(ctx context.Context, update func() error) error

	// ObserveLinks begins visibility observation of relative links within
	// container, invoking onVisible with each link's href as it becomes
	// visible. ok=false means the capability is unavailable; cancel is
	// always non-nil and safe to call.
	ObserveLinks(container string, onVisible func(href string)) (cancel func(), ok bool)
}

// Noop is an Adapter for environments with no browser at all. Every
// operation succeeds and does nothing; ObserveLinks reports unavailable.
type Noop struct{}

func (Noop) HistoryPush(string)    {}
func (Noop) HistoryReplace(string) {}

func (Noop) SupportsViewTransitions() bool { return false }

func (Noop) StartViewTransition(_ context.Context, update func() error) error {
	return update()
}

func (Noop) ObserveLinks(string, func(href string)) (func(), bool) {
	return func() {}, false
}
