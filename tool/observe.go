package tool

import (
	"context"
	"log/slog"
	"time"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/events"
	"github.com/embabel/embabel-go/pkg/slogx"
)

// Observed wraps delegate so that every completed call is logged and published as a
// ToolCalled event. A nil listener publishes to the listener of the process in the context.
func Observed(delegate Tool, listener events.Listener) Tool {
	return &observedTool{Delegate: Delegate{Tool: delegate}, listener: listener}
}

type observedTool struct {
	Delegate
	listener events.Listener
}

func (t *observedTool) Call(ctx context.Context, input string) (Result, error) {
	name := t.Definition().Name
	start := time.Now()
	res, err := t.Tool.Call(ctx, input)
	elapsed := time.Since(start)

	if err != nil {
		slog.DebugContext(ctx, "tool call interrupted", slogx.Tool(name), slogx.Error(err))
		return res, err
	}
	slog.DebugContext(ctx, "tool called", slogx.Tool(name), slog.Duration("duration", elapsed), slog.Bool("is_error", IsError(res)))

	var processID string
	listener := t.listener
	if p, ok := core.ProcessFrom(ctx); ok {
		processID = p.ID()
		if listener == nil {
			listener = p.ProcessContext().Listener
		}
	}
	if listener == nil {
		return res, nil
	}

	evt := events.ToolCalled{
		Metadata: events.Stamp(processID),
		Tool:     name,
		Input:    input,
		IsError:  IsError(res),
		Duration: elapsed,
	}
	if res != nil {
		evt.Result = res.Content()
	}
	listener.OnEvent(ctx, evt)
	return res, nil
}
