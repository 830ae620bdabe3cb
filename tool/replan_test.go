package tool

import (
	"context"
	"testing"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invoice struct {
	Total  float64 `json:"total"`
	Status string  `json:"status"`
}

func processCtx(t *testing.T, options ...core.ProcessOption) (context.Context, *core.Process) {
	t.Helper()
	proc, err := core.NewProcess(options...)
	require.NoError(t, err)
	return core.WithProcess(context.Background(), proc), proc
}

func TestReplanAlways(t *testing.T) {
	rec := &events.Recorder{}
	ctx, proc := processCtx(t, core.WithListener(rec))

	delegate := newCounting("refresh", Text("refreshed"))
	update := func(bb core.Blackboard) { bb.Set("refreshed", true) }
	_, err := ReplanAlways(delegate, "data changed", update).Call(ctx, "{}")

	rr, ok := core.AsReplanRequest(err)
	require.True(t, ok)
	assert.Equal(t, "data changed", rr.Reason)
	assert.EqualValues(t, 1, delegate.calls.Load())

	v, ok := proc.Blackboard().Get("refreshed")
	require.True(t, ok, "update must be applied before the signal is returned")
	assert.Equal(t, true, v)

	replans := events.OfType[events.ReplanRequested](rec)
	require.Len(t, replans, 1)
	assert.Equal(t, "refresh", replans[0].Tool)
}

func TestReplanDecide(t *testing.T) {
	big := &invoice{Total: 500, Status: "open"}
	small := &invoice{Total: 5, Status: "open"}

	var applied []string
	update := func(bb core.Blackboard) { applied = append(applied, "big") }
	decider := func(inv *invoice, rc ReplanContext) *core.ReplanDecision {
		if inv.Total < 100 {
			return nil
		}
		require.NotNil(t, rc.Process)
		assert.Equal(t, "bill", rc.Tool.Name)
		return &core.ReplanDecision{Reason: "needs approval", Update: update}
	}

	t.Run("decision raises signal with same reason and updater", func(t *testing.T) {
		ctx, _ := processCtx(t)
		_, err := ReplanDecide(newCounting("bill", WithArtifact("big", big)), decider).Call(ctx, "{}")
		rr, ok := core.AsReplanRequest(err)
		require.True(t, ok)
		assert.Equal(t, "needs approval", rr.Reason)
		require.NotNil(t, rr.BlackboardUpdater)
		assert.Equal(t, []string{"big"}, applied)

		rr.BlackboardUpdater(core.NewBlackboard())
		assert.Equal(t, []string{"big", "big"}, applied)
	})

	t.Run("nil decision returns delegate result", func(t *testing.T) {
		ctx, _ := processCtx(t)
		want := WithArtifact("small", small)
		res, err := ReplanDecide(newCounting("bill", want), decider).Call(ctx, "{}")
		require.NoError(t, err)
		assert.Equal(t, want, res)
	})

	t.Run("absent or wrong artifact returns delegate result", func(t *testing.T) {
		ctx, _ := processCtx(t)
		for _, want := range []Result{Text("no artifact"), WithArtifact("addr", &address{}), Error("failed")} {
			res, err := ReplanDecide(newCounting("bill", want), decider).Call(ctx, "{}")
			require.NoError(t, err)
			assert.Equal(t, want, res)
		}
	})
}

func TestReplanWhen(t *testing.T) {
	ctx, _ := processCtx(t)
	overdue := func(inv *invoice) bool { return inv.Status == "overdue" }

	_, err := ReplanWhen(newCounting("check", WithArtifact("x", &invoice{Status: "overdue"})), overdue, "chase payment", nil).Call(ctx, "{}")
	rr, ok := core.AsReplanRequest(err)
	require.True(t, ok)
	assert.Equal(t, "chase payment", rr.Reason)

	res, err := ReplanWhen(newCounting("check", WithArtifact("x", &invoice{Status: "paid"})), overdue, "chase payment", nil).Call(ctx, "{}")
	require.NoError(t, err)
	assert.Equal(t, "x", res.Content())
}

func TestReplanWhenExpression(t *testing.T) {
	ctx := context.Background()

	tl, err := ReplanWhenExpression[*invoice](newCounting("bill", WithArtifact("x", &invoice{Total: 250, Status: "open"})), "total > 100 && status == 'open'", "too large")
	require.NoError(t, err)
	_, err = tl.Call(ctx, "{}")
	rr, ok := core.AsReplanRequest(err)
	require.True(t, ok)
	assert.Equal(t, "too large", rr.Reason)

	tl, err = ReplanWhenExpression[*invoice](newCounting("bill", WithArtifact("x", &invoice{Total: 20, Status: "open"})), "total > 100", "too large")
	require.NoError(t, err)
	res, err := tl.Call(ctx, "{}")
	require.NoError(t, err)
	assert.Equal(t, "x", res.Content())

	tl, err = ReplanWhenExpression[*invoice](newCounting("bill", WithArtifact("x", &invoice{})), "missing > 1", "r")
	require.NoError(t, err)
	_, err = tl.Call(ctx, "{}")
	assert.NoError(t, err)

	_, err = ReplanWhenExpression[*invoice](newCounting("bill", Text("x")), "total >", "r")
	assert.Error(t, err)
}
