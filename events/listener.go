package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Listener receives events. Implementations must be safe for concurrent use and must not block.
type Listener interface {
	OnEvent(ctx context.Context, event Event)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(ctx context.Context, event Event)

func (fn ListenerFunc) OnEvent(ctx context.Context, event Event) {
	fn(ctx, event)
}

type noop struct{}

func (noop) OnEvent(context.Context, Event) {}

// Noop returns a listener that drops every event.
func Noop() Listener {
	return noop{}
}

type composite struct {
	listeners []Listener
}

// Composite fans events out to all non-nil listeners, in order.
func Composite(listeners ...Listener) Listener {
	c := &composite{}
	for _, l := range listeners {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
	return c
}

func (c *composite) OnEvent(ctx context.Context, event Event) {
	for _, l := range c.listeners {
		l.OnEvent(ctx, event)
	}
}

// Logging returns a listener that writes every event to logger at debug level.
// A nil logger means slog.Default().
func Logging(logger *slog.Logger) Listener {
	return ListenerFunc(func(ctx context.Context, event Event) {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		meta := event.Meta()
		l.DebugContext(ctx, "event",
			slog.String("kind", event.Kind()),
			slog.String("event_id", meta.ID),
			slog.String("process_id", meta.ProcessID),
		)
	})
}

// Recorder keeps every event it receives. It is meant for tests and diagnostics.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) OnEvent(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Kinds returns the kinds of the recorded events, in order.
func (r *Recorder) Kinds() []string {
	evts := r.Events()
	kinds := make([]string, len(evts))
	for i, e := range evts {
		kinds[i] = e.Kind()
	}
	return kinds
}

// OfType returns the recorded events of type T.
func OfType[T Event](r *Recorder) []T {
	var out []T
	for _, e := range r.Events() {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
