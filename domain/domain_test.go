package domain

import (
	"context"
	"sync"
	"testing"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/events"
	"github.com/embabel/embabel-go/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Order struct {
	ID        string
	Cancelled bool
}

func (o *Order) Cancel(reason string) string {
	o.Cancelled = true
	return "order " + o.ID + " cancelled: " + reason
}

func (o *Order) Status() string {
	if o.Cancelled {
		return "cancelled"
	}
	return "open"
}

type Invoice struct {
	Number string
}

func (i *Invoice) Pay() string { return "paid " + i.Number }

type gadget struct {
	Name string
}

func (g *gadget) Describe() string { return "gadget " + g.Name }

func (g *gadget) DomainTools() []MethodSpec {
	return []MethodSpec{Method((*gadget).Describe)}
}

func orderSource() Source {
	return NewSource[*Order](
		Method((*Order).Cancel, tool.Params("reason"), tool.Description("Cancel the order")),
		Method((*Order).Status),
	)
}

func newTracker(t *testing.T, options ...TrackerOption) *Tracker {
	t.Helper()
	tr, err := NewTracker(options...)
	require.NoError(t, err)
	return tr
}

func names(tools []tool.Tool) []string {
	out := make([]string, len(tools))
	for i, tl := range tools {
		out[i] = tl.Definition().Name
	}
	return out
}

func TestSource(t *testing.T) {
	src := orderSource()
	assert.Equal(t, "*github.com/embabel/embabel-go/domain.Order", src.Key())

	defs, err := src.Definitions()
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "Cancel", defs[0].Name)
	assert.Equal(t, []string{"reason"}, defs[0].InputSchema.Names())

	bad := NewSource[*Invoice](Method((*Order).Cancel))
	_, err = bad.Definitions()
	assert.ErrorIs(t, err, tool.ErrBadReceiver)

	_, err = NewTracker(WithDomainToolsFrom(bad))
	assert.Error(t, err)
	_, err = NewTracker(WithDomainToolsFrom(orderSource(), orderSource()))
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	tr := newTracker(t, WithDomainToolsFrom(orderSource(), NewSource[*Invoice](Method((*Invoice).Pay))))
	placeholders := tr.Placeholders()
	assert.Equal(t, []string{"Cancel", "Status", "Pay"}, names(placeholders))

	res, err := placeholders[0].Call(context.Background(), `{"reason":"x"}`)
	require.NoError(t, err)
	assert.IsType(t, tool.TextResult{}, res)
	assert.Contains(t, res.Content(), "not yet available")
	assert.Contains(t, res.Content(), "must be retrieved first")
	assert.Contains(t, res.Content(), "Order")
	assert.Equal(t, "Cancel the order", placeholders[0].Definition().Description)
}

func TestTryBindArtifact(t *testing.T) {
	ctx := context.Background()

	t.Run("first writer wins", func(t *testing.T) {
		rec := &events.Recorder{}
		tr := newTracker(t, WithDomainToolsFrom(orderSource()), WithListener(rec))
		first := &Order{ID: "1"}

		live := tr.TryBindArtifact(ctx, first)
		require.Len(t, live, 2)
		for _, o := range []*Order{{ID: "2"}, {ID: "3"}, first} {
			assert.Empty(t, tr.TryBindArtifact(ctx, o))
		}

		bound, ok := BoundAs[*Order](tr)
		require.True(t, ok)
		assert.Same(t, first, bound)

		res, err := live[0].Call(ctx, `{"reason":"duplicate"}`)
		require.NoError(t, err)
		assert.Equal(t, "order 1 cancelled: duplicate", res.Content())
		assert.True(t, first.Cancelled)

		evts := events.OfType[events.DomainToolsBound](rec)
		require.Len(t, evts, 1)
		assert.Equal(t, []string{"Cancel", "Status"}, evts[0].Tools)
	})

	t.Run("live tools replace placeholders", func(t *testing.T) {
		tr := newTracker(t, WithDomainToolsFrom(orderSource(), NewSource[*Invoice](Method((*Invoice).Pay))))
		tr.TryBindArtifact(ctx, &Invoice{Number: "INV-1"})

		tools := tr.Tools()
		assert.Equal(t, []string{"Cancel", "Status", "Pay"}, names(tools))
		_, isPlaceholder := tools[0].(*Placeholder)
		assert.True(t, isPlaceholder)
		_, isPlaceholder = tools[2].(*Placeholder)
		assert.False(t, isPlaceholder)
		assert.Equal(t, []string{"Cancel", "Status"}, names(tr.Placeholders()))
	})

	t.Run("ignored candidates", func(t *testing.T) {
		tr := newTracker(t, WithDomainToolsFrom(orderSource()))
		assert.Empty(t, tr.TryBindArtifact(ctx, nil))
		assert.Empty(t, tr.TryBindArtifact(ctx, []*Order{{ID: "1"}}))
		assert.Empty(t, tr.TryBindArtifact(ctx, map[string]*Order{"a": {ID: "1"}}))
		assert.Empty(t, tr.TryBindArtifact(ctx, Order{ID: "value, not pointer"}))
		assert.Empty(t, tr.TryBindArtifact(ctx, &Invoice{}))
		_, ok := tr.Bound(core.TypeOf[*Order]())
		assert.False(t, ok)
	})

	t.Run("concurrent binds", func(t *testing.T) {
		for round := range 100 {
			tr := newTracker(t, WithDomainToolsFrom(orderSource()))
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				start   = make(chan struct{})
				winners []*Order
			)
			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					o := &Order{}
					<-start
					if len(tr.TryBindArtifact(ctx, o)) > 0 {
						mu.Lock()
						winners = append(winners, o)
						mu.Unlock()
					}
				}()
			}
			close(start)
			wg.Wait()
			require.Len(t, winners, 1, "round %d", round)
			bound, _ := BoundAs[*Order](tr)
			assert.Same(t, winners[0], bound)
		}
	})

	t.Run("any domain tools", func(t *testing.T) {
		tr := newTracker(t, WithAnyDomainTools())
		live := tr.TryBindArtifact(ctx, &gadget{Name: "g1"})
		require.Len(t, live, 1)
		assert.Empty(t, tr.TryBindArtifact(ctx, &gadget{Name: "g2"}))
		assert.Empty(t, tr.TryBindArtifact(ctx, &Order{}))
		assert.Equal(t, []string{"Describe"}, names(tr.Tools()))

		res, err := live[0].Call(ctx, "{}")
		require.NoError(t, err)
		assert.Equal(t, "gadget g1", res.Content())

		off := newTracker(t)
		assert.Empty(t, off.TryBindArtifact(ctx, &gadget{}))
	})
}

func TestScanBlackboard(t *testing.T) {
	tr := newTracker(t, WithDomainToolsFrom(orderSource()))
	bb := core.NewBlackboard("noise", []*Order{{ID: "list"}}, &Order{ID: "7"}, &Order{ID: "8"})

	live := tr.ScanBlackboard(context.Background(), bb)
	assert.Equal(t, []string{"Cancel", "Status"}, names(live))
	bound, _ := BoundAs[*Order](tr)
	assert.Equal(t, "7", bound.ID)
}

func TestWatch(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, WithDomainToolsFrom(orderSource()))

	order := &Order{ID: "42"}
	fetch := tool.MustFunc(func(id string) *Order { return order }, tool.Name("fetchOrder"), tool.Params("id"))

	set, err := tool.NewToolSet(tr.Placeholders()...)
	require.NoError(t, err)
	watched := tr.Watch(fetch, set)
	require.NoError(t, set.Add(watched))
	assert.Equal(t, []string{"Cancel", "Status", "fetchOrder"}, set.Names())

	status, _ := set.Get("Status")
	res, err := status.Call(ctx, "{}")
	require.NoError(t, err)
	assert.Contains(t, res.Content(), "not yet available")

	_, err = watched.Call(ctx, `{"id":"42"}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"Cancel", "Status", "fetchOrder"}, set.Names())
	status, _ = set.Get("Status")
	_, isPlaceholder := status.(*Placeholder)
	assert.False(t, isPlaceholder)
	res, err = status.Call(ctx, "{}")
	require.NoError(t, err)
	assert.Equal(t, "open", res.Content())
}
