package tool

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/pkg/reflectx"
	"github.com/embabel/embabel-go/pkg/slogx"
)

// Sink receives artifacts captured from tool results.
type Sink interface {
	Accept(ctx context.Context, artifact any) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, artifact any) error

func (fn SinkFunc) Accept(ctx context.Context, artifact any) error {
	return fn(ctx, artifact)
}

// BlackboardSink publishes artifacts to the blackboard of the process carried by the context.
// With a name the artifact is bound under it, otherwise it is only added as an object.
func BlackboardSink(name string) Sink {
	return SinkFunc(func(ctx context.Context, artifact any) error {
		p, ok := core.ProcessFrom(ctx)
		if !ok {
			return core.ErrNoProcess
		}
		if name != "" {
			p.Bind(ctx, name, artifact)
			return nil
		}
		p.Blackboard().AddObject(artifact)
		return nil
	})
}

type sinkConfig[T any] struct {
	filter    func(T) bool
	transform func(T) any
}

// SinkOption configures SinkArtifacts.
type SinkOption[T any] func(*sinkConfig[T])

// Filter only sinks artifacts for which keep returns true.
func Filter[T any](keep func(T) bool) SinkOption[T] {
	return func(c *sinkConfig[T]) { c.filter = keep }
}

// Transform replaces each artifact before it reaches the sink.
func Transform[T any](fn func(T) any) SinkOption[T] {
	return func(c *sinkConfig[T]) { c.transform = fn }
}

// SinkArtifacts wraps delegate so that artifacts of type T are delivered to sink.
// The result of the delegate is never altered and sink failures are only logged.
//
// When T is an interface, slices, arrays and maps are not sunk, matching domain tool binding.
// Name a collection type as T to capture collections.
func SinkArtifacts[T any](delegate Tool, sink Sink, options ...SinkOption[T]) Tool {
	var cfg sinkConfig[T]
	for _, o := range options {
		o(&cfg)
	}
	return &sinkingTool[T]{Delegate: Delegate{Tool: delegate}, sink: sink, cfg: cfg}
}

type sinkingTool[T any] struct {
	Delegate
	sink Sink
	cfg  sinkConfig[T]
}

func (t *sinkingTool[T]) Call(ctx context.Context, input string) (Result, error) {
	res, err := t.Tool.Call(ctx, input)
	if err != nil {
		return res, err
	}
	if art, ok := artifactAs[T](res); ok {
		t.deliver(ctx, art)
	}
	return res, nil
}

func (t *sinkingTool[T]) deliver(ctx context.Context, art T) {
	if t.cfg.filter != nil && !t.cfg.filter(art) {
		return
	}
	var value any = art
	if t.cfg.transform != nil {
		value = t.cfg.transform(art)
	}
	if err := t.sink.Accept(ctx, value); err != nil {
		slog.WarnContext(ctx, "failed to sink artifact",
			slogx.Tool(t.Definition().Name),
			slogx.Type("artifact", value),
			slogx.Error(err),
		)
	}
}

// artifactAs extracts the artifact of r when it has type T.
func artifactAs[T any](r Result) (T, bool) {
	var zero T
	art, ok := ArtifactOf(r)
	if !ok {
		return zero, false
	}
	v, ok := art.(T)
	if !ok {
		return zero, false
	}
	if reflect.TypeFor[T]().Kind() == reflect.Interface && reflectx.IsCollection(art) {
		return zero, false
	}
	return v, true
}
