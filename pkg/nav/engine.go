package nav

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	naverrors "github.com/affectively-ai/aeon-nav/internal/errors"
	"github.com/affectively-ai/aeon-nav/pkg/cache"
	"github.com/affectively-ai/aeon-nav/pkg/platform"
	"github.com/affectively-ai/aeon-nav/pkg/predict"
	"github.com/affectively-ai/aeon-nav/pkg/route"
	"github.com/affectively-ai/aeon-nav/pkg/speculation"
	"github.com/affectively-ai/aeon-nav/pkg/telemetry"
)

// Sentinel errors surfaced by the engine.
var (
	// ErrNoRoute is returned when a navigation or prefetch target does not
	// resolve to any registered route.
	ErrNoRoute = naverrors.New("N001")

	// ErrSuperseded is returned by a Navigate call that lost the race to a
	// newer one; its state changes were discarded.
	ErrSuperseded = naverrors.New("N002")
)

// PresenceFetcher loads collaboration info for a route pattern. Injected.
type PresenceFetcher func(ctx context.Context, routePattern string) (any, error)

// RenderFunc applies the DOM update for a resolved navigation. The engine
// does not render anything itself; this hook belongs to the UI layer.
type RenderFunc func(ctx context.Context, match *route.Match, payload any) error

// Engine orchestrates navigation: route resolution, session caching,
// prediction, and speculative loading. Construct one per app with New;
// there is deliberately no package-level singleton.
type Engine struct {
	matcher   *route.Matcher
	sessions  *cache.SessionCache
	skeletons *cache.SkeletonCache
	model     *predict.Model
	spec      *speculation.Controller
	platform  platform.Adapter

	fetchSession  cache.SessionFetcher
	fetchPresence PresenceFetcher
	render        RenderFunc

	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer

	prefetchThreshold float64
	prefetchFanout    int

	mu           sync.Mutex
	state        State
	generation   uint64
	subscribers  map[int]Listener
	presenceSubs map[int]PresenceListener
	nextSubID    int
	presence     map[string]Presence

	flight singleflight.Group

	// now is the clock; overridden in tests.
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSessionCache replaces the default session cache.
func WithSessionCache(c *cache.SessionCache) Option {
	return func(e *Engine) { e.sessions = c }
}

// WithSkeletonCache replaces the default skeleton cache.
func WithSkeletonCache(c *cache.SkeletonCache) Option {
	return func(e *Engine) { e.skeletons = c }
}

// WithModel replaces the default prediction model.
func WithModel(m *predict.Model) Option {
	return func(e *Engine) { e.model = m }
}

// WithSpeculation replaces the default speculation controller.
func WithSpeculation(c *speculation.Controller) Option {
	return func(e *Engine) { e.spec = c }
}

// WithPlatform sets the platform adapter. Default: platform.Noop.
func WithPlatform(a platform.Adapter) Option {
	return func(e *Engine) { e.platform = a }
}

// WithPresenceFetcher sets the presence collaborator.
func WithPresenceFetcher(f PresenceFetcher) Option {
	return func(e *Engine) { e.fetchPresence = f }
}

// WithRenderFunc sets the DOM update hook.
func WithRenderFunc(f RenderFunc) Option {
	return func(e *Engine) { e.render = f }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger.With("component", "nav_engine") }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer attaches an OpenTelemetry tracer.
func WithTracer(t *telemetry.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithPrefetchThreshold sets the minimum predicted probability for an
// automatic prefetch. Default: 0.3.
func WithPrefetchThreshold(p float64) Option {
	return func(e *Engine) {
		if p > 0 && p < 1 {
			e.prefetchThreshold = p
		}
	}
}

// WithPrefetchFanout bounds how many predicted candidates are prefetched
// per navigation. Default: 3.
func WithPrefetchFanout(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.prefetchFanout = n
		}
	}
}

// New creates an engine over a route table and a session fetcher.
func New(matcher *route.Matcher, fetchSession cache.SessionFetcher, opts ...Option) *Engine {
	e := &Engine{
		matcher:           matcher,
		sessions:          cache.NewSessionCache(),
		skeletons:         cache.NewSkeletonCache(),
		model:             predict.NewModel(),
		spec:              speculation.NewController(nil),
		platform:          platform.Noop{},
		fetchSession:      fetchSession,
		logger:            slog.Default().With("component", "nav_engine"),
		prefetchThreshold: 0.3,
		prefetchFanout:    3,
		subscribers:       make(map[int]Listener),
		presenceSubs:      make(map[int]PresenceListener),
		presence:          make(map[string]Presence),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a snapshot of the current navigation state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.snapshot()
}

// Resolve maps a path to its route without navigating.
func (e *Engine) Resolve(path string) (*route.Match, bool) {
	return e.matcher.Match(path)
}

// Predict returns the ranked next-route candidates from the given route,
// derived from the engine's recorded history.
func (e *Engine) Predict(from string) []predict.Prediction {
	e.mu.Lock()
	history := append([]string(nil), e.state.History...)
	e.mu.Unlock()

	e.metrics.RecordPrediction()
	return e.model.Predict(history, from)
}

// IsPreloaded reports whether href's session payload is already cached.
func (e *Engine) IsPreloaded(href string) bool {
	match, ok := e.matcher.Match(href)
	if !ok {
		return false
	}
	return e.sessions.Has(match.SessionID)
}

// CacheStats returns the session cache stats.
func (e *Engine) CacheStats() cache.Stats {
	return e.sessions.Stats()
}

// SpeculationStats returns the speculation set sizes.
func (e *Engine) SpeculationStats() speculation.Stats {
	return e.spec.Stats()
}

// Presence returns the last fetched presence info for a route pattern.
func (e *Engine) Presence(routePattern string) (Presence, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.presence[routePattern]
	return p, ok
}

// WithSkeleton resolves href and returns the cached skeleton hint for its
// route alongside the eventual full payload.
func (e *Engine) WithSkeleton(ctx context.Context, href string) (cache.SkeletonResult, error) {
	match, ok := e.matcher.Match(href)
	if !ok {
		return cache.SkeletonResult{}, ErrNoRoute.WithDetail("no route matches %q", href)
	}
	return cache.GetWithSkeleton(ctx, match.Route.Pattern, match.SessionID, e.skeletons, e.sessions, e.fetchSession), nil
}

// Skeletons exposes the skeleton cache so the UI layer can seed hints.
func (e *Engine) Skeletons() *cache.SkeletonCache {
	return e.skeletons
}

// PreloadAll warms the session cache for every route whose session id needs
// no captured parameters, reporting progress per item.
func (e *Engine) PreloadAll(ctx context.Context, onProgress func(loaded, total int)) error {
	var ids []string
	for _, def := range e.matcher.Definitions() {
		if !strings.Contains(def.SessionID, "$") {
			ids = append(ids, def.SessionID)
		}
	}
	return e.sessions.PreloadAll(ctx, ids, e.fetchSession, onProgress)
}

// Subscribe registers a state listener. Notifications are synchronous
// snapshots. The returned function unregisters the listener; calling it
// more than once is safe.
func (e *Engine) Subscribe(fn Listener) func() {
	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subscribers, id)
		e.mu.Unlock()
	}
}

// SubscribePresence registers a presence listener.
func (e *Engine) SubscribePresence(fn PresenceListener) func() {
	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.presenceSubs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.presenceSubs, id)
		e.mu.Unlock()
	}
}

// notifyState snapshots state and subscribers under the lock, then invokes
// listeners outside it so a listener can safely unsubscribe or re-enter.
func (e *Engine) notifyState() {
	e.mu.Lock()
	snap := e.state.snapshot()
	listeners := make([]Listener, 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (e *Engine) notifyPresence(p Presence) {
	e.mu.Lock()
	listeners := make([]PresenceListener, 0, len(e.presenceSubs))
	for _, fn := range e.presenceSubs {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(p)
	}
}

// ObserveLinks starts visibility-driven prefetching of relative links
// inside container. The returned cancel is a no-op when the platform has
// no observer capability.
func (e *Engine) ObserveLinks(container string) func() {
	cancel, ok := e.platform.ObserveLinks(container, func(href string) {
		e.spec.OnVisible(href)
		go func() {
			if err := e.Prefetch(context.Background(), href); err != nil {
				e.logger.Debug("visibility prefetch failed", "href", href, "error", err)
			}
		}()
	})
	if !ok {
		return func() {}
	}
	return cancel
}
