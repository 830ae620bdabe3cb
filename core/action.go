package core

import (
	"context"
	"reflect"

	"github.com/embabel/embabel-go/events"
)

// ActionStatusCode is the terminal state of one action execution.
type ActionStatusCode string

const (
	StatusSucceeded ActionStatusCode = "succeeded"
	StatusFailed    ActionStatusCode = "failed"
	StatusWaiting   ActionStatusCode = "waiting"
	StatusPaused    ActionStatusCode = "paused"
	StatusKilled    ActionStatusCode = "killed"
)

// ActionStatus reports how an action execution ended.
type ActionStatus struct {
	Code ActionStatusCode
	Err  error
}

func Succeeded() ActionStatus { return ActionStatus{Code: StatusSucceeded} }

func Failed(err error) ActionStatus { return ActionStatus{Code: StatusFailed, Err: err} }

func (s ActionStatus) String() string {
	if s.Err != nil {
		return string(s.Code) + ": " + s.Err.Error()
	}
	return string(s.Code)
}

// Action is a planner-visible unit of work with typed inputs.
type Action interface {
	Name() string
	ShortName() string
	Description() string
	Inputs() []IoBinding
	// Execute runs the action against the process. A returned error is reserved for control
	// signals and failures the action could not report through its status.
	Execute(ctx context.Context, pc *ProcessContext) (ActionStatus, error)
}

// ProcessContext is what an executing action sees of its process.
type ProcessContext struct {
	Process  AgentProcess
	Listener events.Listener
}

// Publish sends event to the process listener, if any.
func (pc *ProcessContext) Publish(ctx context.Context, event events.Event) {
	if pc == nil || pc.Listener == nil {
		return
	}
	pc.Listener.OnEvent(ctx, event)
}

// ActionContext is handed to special returns while the action that raised them is intercepted.
type ActionContext struct {
	Process AgentProcess
	Action  Action
}

// AsSubProcess runs agent as a child of the current process and returns its result.
func (a ActionContext) AsSubProcess(ctx context.Context, resultType reflect.Type, agent Agent) (any, error) {
	if a.Process == nil {
		return nil, ErrNoProcess
	}
	return a.Process.AsSubProcess(ctx, resultType, agent)
}
