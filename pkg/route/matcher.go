package route

import (
	"sort"
	"sync"
)

// Definition describes one route as produced by the build-time scanner.
// Definitions are immutable once added; a rescan replaces the whole table
// via Reset.
type Definition struct {
	// Pattern like "/blog/[slug]" or "/api/[...path]".
	Pattern string `json:"pattern"`

	// SessionID is the session-id template, e.g. "blog-$slug".
	SessionID string `json:"sessionId"`

	// ComponentID is an opaque reference to the component that renders
	// this route.
	ComponentID string `json:"componentId"`

	// Layout is an optional layout wrapper reference.
	Layout string `json:"layout,omitempty"`

	// Live marks routes that participate in live collaborative sessions.
	Live bool `json:"live,omitempty"`
}

// Match is the result of resolving a path against the route table.
type Match struct {
	// Route is the matched definition.
	Route Definition

	// Params holds the values captured by dynamic segments.
	Params map[string]string

	// SessionID is the definition's template with params substituted.
	SessionID string
}

// Param returns a captured parameter value.
func (m *Match) Param(name string) (string, bool) {
	v, ok := m.Params[name]
	return v, ok
}

type compiledRoute struct {
	def         Definition
	segments    []Segment
	specificity int
}

// Matcher resolves incoming paths to routes. Safe for concurrent use;
// Add and Reset re-sort the table so the most specific route always wins.
type Matcher struct {
	mu     sync.RWMutex
	routes []compiledRoute
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Add compiles and registers a single route definition.
func (m *Matcher) Add(def Definition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(def)
	m.sortRoutes()
}

// Reset replaces the whole route table, as after a filesystem rescan.
func (m *Matcher) Reset(defs []Definition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = m.routes[:0]
	for _, def := range defs {
		m.insert(def)
	}
	m.sortRoutes()
}

func (m *Matcher) insert(def Definition) {
	segments := CompilePattern(def.Pattern)
	m.routes = append(m.routes, compiledRoute{
		def:         def,
		segments:    segments,
		specificity: Specificity(segments),
	})
}

// sortRoutes keeps the table ordered by descending specificity. Pattern is
// the tiebreak so the order is a deterministic total order.
func (m *Matcher) sortRoutes() {
	sort.SliceStable(m.routes, func(i, j int) bool {
		if m.routes[i].specificity != m.routes[j].specificity {
			return m.routes[i].specificity > m.routes[j].specificity
		}
		return m.routes[i].def.Pattern < m.routes[j].def.Pattern
	})
}

// Match resolves a path to a route and its captured parameters.
// A miss is (nil, false), never an error.
func (m *Matcher) Match(path string) (*Match, bool) {
	pathSegments := splitPath(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.routes {
		params, ok := matchSegments(r.segments, pathSegments)
		if !ok {
			continue
		}
		return &Match{
			Route:     r.def,
			Params:    params,
			SessionID: ResolveSessionID(r.def.SessionID, params),
		}, true
	}
	return nil, false
}

// Has reports whether any route matches the given path.
func (m *Matcher) Has(path string) bool {
	_, ok := m.Match(path)
	return ok
}

// Patterns returns the registered patterns in matching order.
func (m *Matcher) Patterns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	patterns := make([]string, len(m.routes))
	for i, r := range m.routes {
		patterns[i] = r.def.Pattern
	}
	return patterns
}

// Definitions returns a copy of the registered definitions in matching order.
func (m *Matcher) Definitions() []Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	defs := make([]Definition, len(m.routes))
	for i, r := range m.routes {
		defs[i] = r.def
	}
	return defs
}

// Len returns the number of registered routes.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.routes)
}
