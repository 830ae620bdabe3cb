package tool

import (
	"context"
	"errors"
	"sync/atomic"
)

var errCityNotFound = errors.New("city not found")

func lookupCity(_ context.Context, city string) (*address, error) {
	if city == "Atlantis" {
		return nil, errCityNotFound
	}
	return &address{City: city, Street: "Main St 1"}, nil
}

type countingTool struct {
	def    Definition
	calls  atomic.Int32
	result Result
	err    error
	inputs []string
}

func newCounting(name string, result Result) *countingTool {
	return &countingTool{def: Definition{Name: name, Description: name + " tool"}, result: result}
}

func (c *countingTool) Definition() Definition { return c.def }

func (c *countingTool) Call(_ context.Context, input string) (Result, error) {
	c.calls.Add(1)
	c.inputs = append(c.inputs, input)
	return c.result, c.err
}

func named(names ...string) []Tool {
	out := make([]Tool, len(names))
	for i, n := range names {
		out[i] = newCounting(n, Text(n))
	}
	return out
}
