package domain

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/events"
	"github.com/embabel/embabel-go/internal/registry"
	"github.com/embabel/embabel-go/pkg/reflectx"
	"github.com/embabel/embabel-go/pkg/slogx"
	"github.com/embabel/embabel-go/pkg/stdx"
	"github.com/embabel/embabel-go/tool"
	"github.com/fogfish/opts"
)

// TrackerOption configures a Tracker.
type TrackerOption = opts.Option[Tracker]

// WithDomainToolsFrom registers sources whose tools appear once a matching object is seen.
func WithDomainToolsFrom(sources ...Source) TrackerOption {
	return opts.Type[Tracker](func(t *Tracker) error {
		t.pending = append(t.pending, sources...)
		return nil
	})
}

// WithAnyDomainTools also binds unregistered objects that implement Provider.
func WithAnyDomainTools() TrackerOption {
	return opts.Type[Tracker](func(t *Tracker) error {
		t.anyTools = true
		return nil
	})
}

// WithListener publishes a DomainToolsBound event for every binding.
var WithListener = opts.ForName[Tracker, events.Listener]("listener")

type binding struct {
	instance any
	tools    []tool.Tool
}

type registered struct {
	source       Source
	placeholders []tool.Tool
}

// Tracker binds at most one object per registered type and promotes that type's
// placeholder tools to live tools. It is safe for concurrent use.
type Tracker struct {
	pending  []Source
	anyTools bool
	listener events.Listener

	order   []string
	sources map[string]registered
	bound   registry.Registry[*binding]

	mu    sync.Mutex
	extra []string
}

// NewTracker creates a tracker. Registering the same type twice is an error.
func NewTracker(options ...TrackerOption) (*Tracker, error) {
	t := &Tracker{
		sources: make(map[string]registered),
		bound:   registry.New[*binding](),
	}
	if err := opts.Apply(t, options); err != nil {
		return nil, err
	}
	for _, s := range t.pending {
		key := s.Key()
		if _, dup := t.sources[key]; dup {
			return nil, fmt.Errorf("domain tool source %s registered twice", key)
		}
		placeholders, err := s.Placeholders()
		if err != nil {
			return nil, err
		}
		t.sources[key] = registered{source: s, placeholders: placeholders}
		t.order = append(t.order, key)
	}
	t.pending = nil
	return t, nil
}

// TryBindArtifact binds candidate when its type is registered and not bound yet, and returns
// the live tools it unlocks. Collections, unregistered types and already bound types yield nil.
func (t *Tracker) TryBindArtifact(ctx context.Context, candidate any) []tool.Tool {
	if candidate == nil || reflectx.IsCollection(candidate) {
		return nil
	}
	typ := reflect.TypeOf(candidate)
	key := core.TypeKey(typ)
	if _, done := t.bound.Get(key); done {
		return nil
	}

	src, ok := t.sourceFor(key, candidate)
	if !ok {
		return nil
	}
	tools, err := src.Bind(candidate)
	if err != nil {
		slog.WarnContext(ctx, "cannot bind domain tools", slog.String("type", key), slogx.Error(err))
		return nil
	}

	b, loaded := t.bound.GetOrAdd(key, func() *binding {
		return &binding{instance: candidate, tools: tools}
	})
	if loaded {
		return nil
	}

	names := make([]string, len(tools))
	for i, tl := range tools {
		names[i] = tl.Definition().Name
	}
	if _, registered := t.sources[key]; !registered {
		t.mu.Lock()
		t.extra = append(t.extra, key)
		t.mu.Unlock()
	}
	slog.DebugContext(ctx, "domain tools bound", slog.String("type", key), slog.Int("tools", len(tools)))
	if t.listener != nil {
		var processID string
		if p, ok := core.ProcessFrom(ctx); ok {
			processID = p.ID()
		}
		t.listener.OnEvent(ctx, events.DomainToolsBound{
			Metadata: events.Stamp(processID),
			Type:     key,
			Tools:    names,
		})
	}
	return b.tools
}

func (t *Tracker) sourceFor(key string, candidate any) (Source, bool) {
	if r, ok := t.sources[key]; ok {
		return r.source, true
	}
	if !t.anyTools {
		return Source{}, false
	}
	p, ok := candidate.(Provider)
	if !ok {
		return Source{}, false
	}
	return Source{Type: reflect.TypeOf(candidate), Methods: p.DomainTools()}, true
}

// TryBindResult binds the artifact of res, if any.
func (t *Tracker) TryBindResult(ctx context.Context, res tool.Result) []tool.Tool {
	art, ok := tool.ArtifactOf(res)
	if !ok {
		return nil
	}
	return t.TryBindArtifact(ctx, art)
}

// ScanBlackboard tries to bind every object on bb and returns the tools unlocked.
func (t *Tracker) ScanBlackboard(ctx context.Context, bb core.Blackboard) []tool.Tool {
	var out []tool.Tool
	for _, o := range bb.Objects() {
		out = append(out, t.TryBindArtifact(ctx, o)...)
	}
	return out
}

// Bound returns the instance bound for type typ.
func (t *Tracker) Bound(typ reflect.Type) (any, bool) {
	b, ok := t.bound.Get(core.TypeKey(typ))
	if !ok {
		return nil, false
	}
	return b.instance, true
}

// BoundAs returns the instance bound for type T.
func BoundAs[T any](t *Tracker) (T, bool) {
	v, ok := t.Bound(core.TypeOf[T]())
	if !ok {
		return stdx.Zero[T](), false
	}
	return v.(T), true
}

// Placeholders returns the placeholder tools of every registered type that is not bound yet.
func (t *Tracker) Placeholders() []tool.Tool {
	var out []tool.Tool
	for _, key := range t.order {
		if _, done := t.bound.Get(key); !done {
			out = append(out, t.sources[key].placeholders...)
		}
	}
	return out
}

// Tools returns, per registered type, the live tools when bound and the placeholders otherwise,
// followed by tools of bound Provider objects.
func (t *Tracker) Tools() []tool.Tool {
	var out []tool.Tool
	for _, key := range t.order {
		if b, done := t.bound.Get(key); done {
			out = append(out, b.tools...)
			continue
		}
		out = append(out, t.sources[key].placeholders...)
	}
	t.mu.Lock()
	extra := slices.Clone(t.extra)
	t.mu.Unlock()
	for _, key := range extra {
		if b, ok := t.bound.Get(key); ok {
			out = append(out, b.tools...)
		}
	}
	return out
}

// Watch wraps delegate so that artifacts it returns are bound, and the unlocked tools replace
// their placeholders in set or are added to it.
func (t *Tracker) Watch(delegate tool.Tool, set *tool.ToolSet) tool.Tool {
	return &watchingTool{Delegate: tool.Delegate{Tool: delegate}, tracker: t, set: set}
}

type watchingTool struct {
	tool.Delegate
	tracker *Tracker
	set     *tool.ToolSet
}

func (w *watchingTool) Call(ctx context.Context, input string) (tool.Result, error) {
	res, err := w.Tool.Call(ctx, input)
	if err != nil {
		return res, err
	}
	for _, live := range w.tracker.TryBindResult(ctx, res) {
		name := live.Definition().Name
		existing, ok := w.set.Get(name)
		if !ok {
			if err := w.set.Add(live); err != nil {
				slog.WarnContext(ctx, "cannot expose domain tool", slogx.Tool(name), slogx.Error(err))
			}
			continue
		}
		if _, isPlaceholder := existing.(*Placeholder); isPlaceholder {
			if err := w.set.Replace(name, live); err != nil {
				slog.WarnContext(ctx, "cannot expose domain tool", slogx.Tool(name), slogx.Error(err))
			}
		}
	}
	return res, nil
}
