package core

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/embabel/embabel-go/events"
	"github.com/embabel/embabel-go/pkg/slogx"
	"github.com/embabel/embabel-go/pkg/uuidx"
	"github.com/fogfish/opts"
)

// AgentProcess is the execution context tools and actions run in.
type AgentProcess interface {
	ID() string
	Blackboard() Blackboard
	// Bind sets value under name on the blackboard and announces it.
	Bind(ctx context.Context, name string, value any)
	LastResult() any
	ProcessContext() *ProcessContext
	// AsSubProcess runs agent in a child process and returns a result assignable to resultType.
	AsSubProcess(ctx context.Context, resultType reflect.Type, agent Agent) (any, error)
}

// SubProcessRunner runs an agent inside an already spawned child process.
type SubProcessRunner func(ctx context.Context, child AgentProcess, agent Agent) (any, error)

// ProcessOption configures a Process.
type ProcessOption = opts.Option[Process]

var (
	// WithID sets the process id. A UUIDv7 is generated when unset.
	WithID = opts.ForName[Process, string]("id")
	// WithBlackboard sets the blackboard. An empty InMemoryBlackboard is used when unset.
	WithBlackboard = opts.ForName[Process, Blackboard]("blackboard")
	// WithListener sets the event listener.
	WithListener = opts.ForName[Process, events.Listener]("listener")
	// WithSubProcessRunner replaces how sub-agents are executed.
	WithSubProcessRunner = opts.ForName[Process, SubProcessRunner]("runner")
)

var _ AgentProcess = (*Process)(nil)

// Process is the in-memory AgentProcess.
type Process struct {
	id         string
	parentID   string
	blackboard Blackboard
	listener   events.Listener
	runner     SubProcessRunner
	pc         *ProcessContext
}

// NewProcess creates a process.
func NewProcess(options ...ProcessOption) (*Process, error) {
	p := &Process{}
	if err := opts.Apply(p, options); err != nil {
		return nil, err
	}
	if p.id == "" {
		p.id = uuidx.NewString()
	}
	if p.blackboard == nil {
		p.blackboard = NewBlackboard()
	}
	if p.listener == nil {
		p.listener = events.Noop()
	}
	if p.runner == nil {
		p.runner = runAgent
	}
	p.pc = &ProcessContext{Process: p, Listener: p.listener}
	return p, nil
}

func (p *Process) ID() string { return p.id }

// ParentID returns the id of the process that spawned this one, if any.
func (p *Process) ParentID() string { return p.parentID }

func (p *Process) Blackboard() Blackboard { return p.blackboard }

func (p *Process) ProcessContext() *ProcessContext { return p.pc }

func (p *Process) LastResult() any { return p.blackboard.LastResult() }

func (p *Process) Bind(ctx context.Context, name string, value any) {
	p.blackboard.Set(name, value)
	p.listener.OnEvent(ctx, events.ObjectBound{
		Metadata: events.Stamp(p.id),
		Name:     name,
		Type:     typeKeyOf(value),
	})
}

func (p *Process) AsSubProcess(ctx context.Context, resultType reflect.Type, agent Agent) (any, error) {
	child := &Process{
		id:         uuidx.NewString(),
		parentID:   p.id,
		blackboard: p.blackboard.Spawn(),
		listener:   p.listener,
		runner:     p.runner,
	}
	child.pc = &ProcessContext{Process: child, Listener: child.listener}

	slog.DebugContext(ctx, "starting sub-process",
		slog.String("process_id", child.id),
		slog.String("parent_id", p.id),
		slog.String("agent", agent.Name),
	)
	p.listener.OnEvent(ctx, events.SubProcessStarted{
		Metadata: events.Stamp(child.id),
		ParentID: p.id,
		Agent:    agent.Name,
	})

	result, err := p.runner(WithProcess(ctx, child), child, agent)
	if err == nil && resultType != nil && !IsAssignable(result, resultType) {
		err = fmt.Errorf("sub-process %s returned %s, expected %s", agent.Name, typeKeyOf(result), TypeKey(resultType))
	}

	p.listener.OnEvent(ctx, events.SubProcessCompleted{
		Metadata: events.Stamp(child.id),
		ParentID: p.id,
		Agent:    agent.Name,
		Err:      err,
	})
	if err != nil {
		slog.DebugContext(ctx, "sub-process failed", slog.String("process_id", child.id), slogx.Error(err))
		return nil, err
	}
	return result, nil
}

func runAgent(ctx context.Context, child AgentProcess, agent Agent) (any, error) {
	if agent.Runner == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRunner, agent.Name)
	}
	return agent.Runner.Run(ctx, child)
}

func typeKeyOf(value any) string {
	if value == nil {
		return "<nil>"
	}
	return TypeKey(reflect.TypeOf(value))
}

type processKey struct{}

// WithProcess returns a context carrying process.
func WithProcess(ctx context.Context, process AgentProcess) context.Context {
	return context.WithValue(ctx, processKey{}, process)
}

// ProcessFrom returns the process carried by ctx.
func ProcessFrom(ctx context.Context) (AgentProcess, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(processKey{}).(AgentProcess)
	return p, ok && p != nil
}
