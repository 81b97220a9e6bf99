package platform

import (
	"context"
	"sync"
)

// HistoryOp is one recorded history mutation.
type HistoryOp struct {
	Kind string // "push" or "replace"
	Path string
}

// Recorder is a fake Adapter for tests. It records history operations,
// counts view transitions, and lets tests fire link visibility by hand.
type Recorder struct {
	mu sync.Mutex

	// ViewTransitions toggles the view-transition capability.
	ViewTransitions bool

	// Links toggles the link observation capability.
	Links bool

	ops         []HistoryOp
	transitions int
	observers   map[int]func(href string)
	nextID      int
}

// NewRecorder creates a Recorder with all capabilities enabled.
func NewRecorder() *Recorder {
	return &Recorder{
		ViewTransitions: true,
		Links:           true,
		observers:       make(map[int]func(string)),
	}
}

func (r *Recorder) HistoryPush(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, HistoryOp{Kind: "push", Path: path})
}

func (r *Recorder) HistoryReplace(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, HistoryOp{Kind: "replace", Path: path})
}

func (r *Recorder) SupportsViewTransitions() bool { return r.ViewTransitions }

func (r *Recorder) StartViewTransition(_ context.Context, update func() error) error {
	r.mu.Lock()
	r.transitions++
	r.mu.Unlock()
	return update()
}

func (r *Recorder) ObserveLinks(_ string, onVisible func(href string)) (func(), bool) {
	if !r.Links {
		return func() {}, false
	}
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.observers[id] = onVisible
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.observers, id)
		r.mu.Unlock()
	}, true
}

// Ops returns the recorded history operations.
func (r *Recorder) Ops() []HistoryOp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]HistoryOp(nil), r.ops...)
}

// Transitions returns how many view transitions ran.
func (r *Recorder) Transitions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transitions
}

// FireVisible simulates a link becoming visible to all active observers.
func (r *Recorder) FireVisible(href string) {
	r.mu.Lock()
	callbacks := make([]func(string), 0, len(r.observers))
	for _, cb := range r.observers {
		callbacks = append(callbacks, cb)
	}
	r.mu.Unlock()
	for _, cb := range callbacks {
		cb(href)
	}
}

// ObserverCount returns how many link observers are active.
func (r *Recorder) ObserverCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observers)
}
