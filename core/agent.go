package core

import (
	"context"
	"reflect"
)

// Agent describes something that can run as a (sub) process.
type Agent struct {
	Name        string
	Description string
	// Runner executes the agent. It may be nil when the process has a custom sub-process runner.
	Runner Runner
}

// Runner executes an agent inside the given process and returns its result.
type Runner interface {
	Run(ctx context.Context, process AgentProcess) (any, error)
}

// RunnerFunc adapts a function to a Runner.
type RunnerFunc func(ctx context.Context, process AgentProcess) (any, error)

func (fn RunnerFunc) Run(ctx context.Context, process AgentProcess) (any, error) {
	return fn(ctx, process)
}

// AgentDescriber lets a plain instance provide its own agent metadata.
type AgentDescriber interface {
	AgentName() string
	AgentDescription() string
}

// AgentFromInstance synthesizes agent metadata for instance.
// Agent values are returned unchanged. Other instances are named by AgentDescriber or by
// their type name, and run through their Runner implementation when they have one.
func AgentFromInstance(instance any) Agent {
	switch v := instance.(type) {
	case Agent:
		return v
	case *Agent:
		if v != nil {
			return *v
		}
	}

	agent := Agent{}
	if instance != nil {
		agent.Name = SimpleName(reflect.TypeOf(instance))
	}
	if d, ok := instance.(AgentDescriber); ok {
		agent.Name = d.AgentName()
		agent.Description = d.AgentDescription()
	}
	if r, ok := instance.(Runner); ok {
		agent.Runner = r
	}
	return agent
}
