package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/embabel/embabel-go/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type counter struct {
	n int
}

func (c *counter) Add(delta int) int {
	c.n += delta
	return c.n
}

func (c *counter) Reset() {
	c.n = 0
}

type status string

func TestFromFunc(t *testing.T) {
	ctx := context.Background()

	t.Run("artifact result", func(t *testing.T) {
		tl, err := FromFunc(lookupCity, Params("city"))
		require.NoError(t, err)

		res, err := tl.Call(ctx, `{"city":"Paris"}`)
		require.NoError(t, err)
		art, ok := ArtifactOf(res)
		require.True(t, ok)
		assert.Equal(t, "Paris", art.(*address).City)
		assert.Equal(t, "Paris", gjson.Get(res.Content(), "city").String())
	})

	t.Run("returned error becomes error result", func(t *testing.T) {
		tl := MustFunc(lookupCity, Params("city"))
		res, err := tl.Call(ctx, `{"city":"Atlantis"}`)
		require.NoError(t, err)
		require.True(t, IsError(res))
		assert.Equal(t, "city not found", res.Content())
		assert.ErrorIs(t, res.(ErrorResult).Cause, errCityNotFound)
	})

	t.Run("control signal propagates", func(t *testing.T) {
		signal := &core.ReplanRequestedError{Reason: "stop"}
		tl := MustFunc(func() error { return fmt.Errorf("wrapped: %w", signal) })
		res, err := tl.Call(ctx, "")
		assert.Nil(t, res)
		rr, ok := core.AsReplanRequest(err)
		require.True(t, ok)
		assert.Same(t, signal, rr)
	})

	t.Run("invalid json", func(t *testing.T) {
		tl := MustFunc(lookupCity, Params("city"))
		res, err := tl.Call(ctx, `{"city":`)
		require.NoError(t, err)
		assert.True(t, IsError(res))
	})

	t.Run("schema violation", func(t *testing.T) {
		tl := MustFunc(func(n int) int { return n }, Params("n"))
		res, err := tl.Call(ctx, `{"n":"five"}`)
		require.NoError(t, err)
		assert.True(t, IsError(res))
		assert.Contains(t, res.Content(), "invalid input")
	})

	t.Run("conversion failure without validation", func(t *testing.T) {
		tl := MustFunc(func(n int) int { return n }, Params("n"), SkipValidation())
		res, err := tl.Call(ctx, `{"n":"five"}`)
		require.NoError(t, err)
		assert.True(t, IsError(res))
		assert.Contains(t, res.Content(), `parameter "n"`)
	})

	t.Run("missing optional value is zero", func(t *testing.T) {
		tl := MustFunc(func(s string, n int) string { return fmt.Sprintf("%q/%d", s, n) }, Params("s", "n"), SkipValidation())
		res, err := tl.Call(ctx, `{"s":"x"}`)
		require.NoError(t, err)
		assert.Equal(t, `"x"/0`, res.Content())
	})

	t.Run("zero arguments accept empty input", func(t *testing.T) {
		tl := MustFunc(func() string { return "pong" }, Name("ping"))
		for _, input := range []string{"", "{}", "  "} {
			res, err := tl.Call(ctx, input)
			require.NoError(t, err)
			assert.Equal(t, Text("pong"), res)
		}
	})

	t.Run("flattened struct", func(t *testing.T) {
		tl := MustFunc(func(a address) string { return a.Street + ", " + a.City })
		res, err := tl.Call(ctx, `{"street":"Rue 1","city":"Lyon"}`)
		require.NoError(t, err)
		assert.Equal(t, "Rue 1, Lyon", res.Content())
	})

	t.Run("context is passed", func(t *testing.T) {
		type key struct{}
		tl := MustFunc(func(ctx context.Context) string { return ctx.Value(key{}).(string) })
		res, err := tl.Call(context.WithValue(ctx, key{}, "from ctx"), "{}")
		require.NoError(t, err)
		assert.Equal(t, "from ctx", res.Content())
	})

	t.Run("void function", func(t *testing.T) {
		res, err := MustFunc(func() {}).Call(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, Text("done"), res)
	})

	t.Run("not a function", func(t *testing.T) {
		_, err := FromFunc(42)
		assert.ErrorIs(t, err, ErrNotAFunction)
		assert.Panics(t, func() { MustFunc(42) })
	})
}

func TestFromMethod(t *testing.T) {
	ctx := context.Background()
	c := &counter{}

	add, err := FromMethod(c, (*counter).Add, Params("delta"), Description("adds to the counter"))
	require.NoError(t, err)
	assert.Equal(t, "Add", add.Definition().Name)
	assert.Equal(t, []string{"delta"}, add.Definition().InputSchema.Names())

	res, err := add.Call(ctx, `{"delta":3}`)
	require.NoError(t, err)
	assert.Equal(t, "3", res.Content())
	_, err = add.Call(ctx, `{"delta":4}`)
	require.NoError(t, err)
	assert.Equal(t, 7, c.n)

	reset := MustMethod(c, (*counter).Reset)
	_, err = reset.Call(ctx, "{}")
	require.NoError(t, err)
	assert.Equal(t, 0, c.n)

	_, err = FromMethod(counter{}, (*counter).Add)
	assert.ErrorIs(t, err, ErrBadReceiver)
	_, err = FromMethod(nil, (*counter).Add)
	assert.ErrorIs(t, err, ErrBadReceiver)
}

func TestResultFor(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var nilAddr *address

	tests := []struct {
		name     string
		value    any
		want     string
		artifact bool
	}{
		{name: "nil", value: nil, want: "null"},
		{name: "string", value: "hi", want: "hi"},
		{name: "named string", value: status("open"), want: "open"},
		{name: "bool", value: true, want: "true"},
		{name: "int", value: 12, want: "12"},
		{name: "int32", value: int32(-3), want: "-3"},
		{name: "uint", value: uint16(7), want: "7"},
		{name: "float", value: 1.5, want: "1.5"},
		{name: "time", value: ts, want: "2024-05-01T12:00:00Z"},
		{name: "nil pointer", value: nilAddr, want: "null"},
		{name: "struct", value: address{City: "Oslo"}, want: `{"street":"","city":"Oslo"}`, artifact: true},
		{name: "slice", value: []int{1, 2}, want: `[1,2]`, artifact: true},
		{name: "opaque pointer", value: errors.New("x"), want: "{}", artifact: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResultFor(tt.value)
			_, isArtifact := ArtifactOf(res)
			assert.Equal(t, tt.artifact, isArtifact)
			assert.Equal(t, tt.want, res.Content())
		})
	}

	passthrough := Error("kept")
	assert.Equal(t, passthrough, ResultFor(passthrough))
}

func TestResults(t *testing.T) {
	assert.Equal(t, "a b", Textf("%s %s", "a", "b").Content())
	assert.False(t, IsError(Text("x")))
	assert.True(t, IsError(Error("x")))

	cause := errors.New("root")
	e := Errorf("failed: %w", cause).(ErrorResult)
	assert.Equal(t, "failed: root", e.Message)
	assert.Same(t, cause, e.Cause)

	_, ok := ArtifactOf(WithArtifact("x", nil))
	assert.False(t, ok)
	_, ok = ArtifactOf(Text("x"))
	assert.False(t, ok)
}

func TestNewAndRedefine(t *testing.T) {
	tl := New(Definition{Name: "echo"}, func(_ context.Context, input string) (Result, error) {
		return Text(input), nil
	})
	res, err := tl.Call(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Content())

	renamed := Renamed(WithDescription(tl, "echoes"), "parrot")
	assert.Equal(t, "parrot", renamed.Definition().Name)
	assert.Equal(t, "echoes", renamed.Definition().Description)
	assert.Same(t, tl, Unwrap(Unwrap(renamed)))
	assert.Nil(t, Unwrap(tl))
}
