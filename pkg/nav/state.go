package nav

import "time"

// State is the engine's navigation state. Subscribers receive value copies,
// never the live instance.
type State struct {
	// Current is the route the app is on.
	Current string

	// Previous is the route before the last navigation, empty at start.
	Previous string

	// History is the ordered sequence of visited paths.
	History []string

	// Navigating is true between the start of a navigation and its
	// completion (successful or not).
	Navigating bool
}

// snapshot returns a deep copy safe to hand to subscribers.
func (s *State) snapshot() State {
	out := *s
	out.History = append([]string(nil), s.History...)
	return out
}

// Presence is collaboration info for one route, fetched through the
// injected presence fetcher. The Data shape is owned by the collaborator.
type Presence struct {
	Route     string    `json:"route"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Listener receives state snapshots.
type Listener func(State)

// PresenceListener receives presence updates.
type PresenceListener func(Presence)
