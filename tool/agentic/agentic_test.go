package agentic

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/events"
	"github.com/embabel/embabel-go/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phase int

const (
	draft phase = iota
	review
	done
)

func (p phase) String() string {
	return [...]string{"DRAFT", "REVIEW", "DONE"}[p]
}

type fakeTool struct {
	name   string
	calls  atomic.Int32
	result tool.Result
	err    error
}

func (f *fakeTool) Definition() tool.Definition {
	return tool.Definition{Name: f.name, Description: "does " + f.name}
}

func (f *fakeTool) Call(context.Context, string) (tool.Result, error) {
	f.calls.Add(1)
	return f.result, f.err
}

func TestStateHolder(t *testing.T) {
	rec := &events.Recorder{}
	h := NewStateHolder(draft, WithStateListener[phase](rec))
	assert.Equal(t, draft, h.Current())

	h.TransitionTo(context.Background(), review)
	h.TransitionTo(context.Background(), done)
	assert.Equal(t, done, h.Current())

	hist := h.History()
	require.Len(t, hist, 2)
	assert.Equal(t, draft, hist[0].From)
	assert.Equal(t, review, hist[0].To)
	assert.Equal(t, done, hist[1].To)

	transitions := events.OfType[events.StateTransitioned](rec)
	require.Len(t, transitions, 2)
	assert.Equal(t, "DRAFT", transitions[0].From)
	assert.Equal(t, "REVIEW", transitions[0].To)
}

func TestStateHolderConcurrentReads(t *testing.T) {
	h := NewStateHolder("a")
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = h.Current()
			}
		}()
	}
	for range 100 {
		h.TransitionTo(context.Background(), "b")
	}
	wg.Wait()
	assert.Len(t, h.History(), 100)
}

func TestStateBoundTool(t *testing.T) {
	ctx := context.Background()

	t.Run("description is annotated", func(t *testing.T) {
		h := NewStateHolder(draft)
		sb := NewStateBound(&fakeTool{name: "submit"}, h, draft, TransitionsTo(review))
		assert.Equal(t, "does submit [Available in state: DRAFT] [Transitions to: REVIEW]", sb.Definition().Description)
		assert.Equal(t, "submit", sb.Definition().Name)

		plain := NewStateBound(&fakeTool{name: "edit"}, h, draft)
		assert.Equal(t, "does edit [Available in state: DRAFT]", plain.Definition().Description)
	})

	t.Run("wrong state never calls delegate", func(t *testing.T) {
		for _, current := range []phase{review, done} {
			h := NewStateHolder(current)
			delegate := &fakeTool{name: "submit", result: tool.Text("submitted")}
			sb := NewStateBound(delegate, h, draft, TransitionsTo(review))

			res, err := sb.Call(ctx, "{}")
			require.NoError(t, err)
			assert.IsType(t, tool.TextResult{}, res)
			assert.False(t, tool.IsError(res))
			assert.Contains(t, res.Content(), "not available")
			assert.EqualValues(t, 0, delegate.calls.Load())
			assert.Equal(t, current, h.Current())
			assert.False(t, sb.Available())
		}
	})

	t.Run("right state calls and transitions", func(t *testing.T) {
		h := NewStateHolder(draft)
		delegate := &fakeTool{name: "submit", result: tool.Text("submitted")}
		sb := NewStateBound(delegate, h, draft, TransitionsTo(review))

		res, err := sb.Call(ctx, "{}")
		require.NoError(t, err)
		assert.Equal(t, "submitted", res.Content())
		assert.EqualValues(t, 1, delegate.calls.Load())
		assert.Equal(t, review, h.Current())
	})

	t.Run("error result does not transition", func(t *testing.T) {
		h := NewStateHolder(draft)
		sb := NewStateBound(&fakeTool{name: "submit", result: tool.Error("rejected")}, h, draft, TransitionsTo(review))
		res, err := sb.Call(ctx, "{}")
		require.NoError(t, err)
		assert.True(t, tool.IsError(res))
		assert.Equal(t, draft, h.Current())
	})

	t.Run("control signal propagates without transition", func(t *testing.T) {
		h := NewStateHolder(draft)
		delegate := &fakeTool{name: "submit", err: &core.ReplanRequestedError{Reason: "x"}}
		_, err := NewStateBound(delegate, h, draft, TransitionsTo(review)).Call(ctx, "{}")
		assert.True(t, core.IsControlSignal(err))
		assert.Equal(t, draft, h.Current())
	})

	t.Run("artifacts reach the blackboard", func(t *testing.T) {
		proc, err := core.NewProcess()
		require.NoError(t, err)
		pctx := core.WithProcess(ctx, proc)
		doc := &struct{ Title string }{Title: "report"}

		h := NewStateHolder(draft)
		_, err = NewStateBound(&fakeTool{name: "write", result: tool.WithArtifact("report", doc)}, h, draft).Call(pctx, "{}")
		require.NoError(t, err)
		_, err = NewGlobal(&fakeTool{name: "list", result: tool.WithArtifact("[]", []string{"a"})}, h).Call(pctx, "{}")
		require.NoError(t, err)
		assert.Equal(t, []any{doc}, proc.Blackboard().Objects())
	})
}

func TestGlobalStateTool(t *testing.T) {
	h := NewStateHolder(done)
	delegate := &fakeTool{name: "status", result: tool.Text("fine")}
	g := NewGlobal(delegate, h)
	assert.Equal(t, "does status [Available in all states]", g.Definition().Description)

	for _, s := range []phase{draft, review, done} {
		h.TransitionTo(context.Background(), s)
		res, err := g.Call(context.Background(), "{}")
		require.NoError(t, err)
		assert.Equal(t, "fine", res.Content())
	}
	assert.EqualValues(t, 3, delegate.calls.Load())

	reset := NewGlobal(&fakeTool{name: "reset", result: tool.Text("ok")}, h, TransitionsTo(draft))
	assert.Contains(t, reset.Definition().Description, "[Transitions to: DRAFT]")
	_, err := reset.Call(context.Background(), "{}")
	require.NoError(t, err)
	assert.Equal(t, draft, h.Current())
}

func TestStateTools(t *testing.T) {
	h := NewStateHolder(draft)
	b := NewStateTools(h).
		InState(draft, &fakeTool{name: "submit", result: tool.Text("ok")}, TransitionsTo(review)).
		InState(review, &fakeTool{name: "approve", result: tool.Text("ok")}, TransitionsTo(done)).
		Global(&fakeTool{name: "status", result: tool.Text("ok")})

	names := func(tools []tool.Tool) []string {
		var out []string
		for _, tl := range tools {
			out = append(out, tl.Definition().Name)
		}
		return out
	}
	assert.Equal(t, []string{"submit", "approve", "status"}, names(b.Tools()))
	assert.Equal(t, []string{"submit", "status"}, names(b.Available()))

	_, err := b.Tools()[0].Call(context.Background(), "{}")
	require.NoError(t, err)
	assert.Equal(t, []string{"approve", "status"}, names(b.Available()))
	assert.Same(t, h, b.Holder())
}
