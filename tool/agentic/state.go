package agentic

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/events"
)

// Transition is one entry of the state history.
type Transition[S comparable] struct {
	From S
	To   S
	At   time.Time
}

// StateHolder holds the current state of a state machine driven by tool calls.
// Reads are safe from any goroutine; transitions are expected from one in-flight call at a time.
type StateHolder[S comparable] struct {
	current  atomic.Pointer[S]
	listener events.Listener

	mu      sync.Mutex
	history []Transition[S]
}

// HolderOption configures a StateHolder.
type HolderOption[S comparable] func(*StateHolder[S])

// WithStateListener publishes a StateTransitioned event for every transition.
func WithStateListener[S comparable](l events.Listener) HolderOption[S] {
	return func(h *StateHolder[S]) { h.listener = l }
}

// NewStateHolder creates a holder in state initial.
func NewStateHolder[S comparable](initial S, options ...HolderOption[S]) *StateHolder[S] {
	h := &StateHolder[S]{}
	for _, o := range options {
		o(h)
	}
	h.current.Store(&initial)
	return h
}

// Current returns the current state.
func (h *StateHolder[S]) Current() S {
	return *h.current.Load()
}

// TransitionTo moves the holder to state to and records the transition.
func (h *StateHolder[S]) TransitionTo(ctx context.Context, to S) {
	from := *h.current.Swap(&to)

	h.mu.Lock()
	h.history = append(h.history, Transition[S]{From: from, To: to, At: time.Now()})
	h.mu.Unlock()

	slog.DebugContext(ctx, "state transition", slog.String("from", fmt.Sprint(from)), slog.String("to", fmt.Sprint(to)))
	if h.listener == nil {
		return
	}
	var processID string
	if p, ok := core.ProcessFrom(ctx); ok {
		processID = p.ID()
	}
	h.listener.OnEvent(ctx, events.StateTransitioned{
		Metadata: events.Stamp(processID),
		From:     fmt.Sprint(from),
		To:       fmt.Sprint(to),
	})
}

// History returns the transitions so far, oldest first.
func (h *StateHolder[S]) History() []Transition[S] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.history)
}
