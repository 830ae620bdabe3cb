package special

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/pkg/slogx"
	"github.com/embabel/embabel-go/pkg/stdx"
)

// SpecialReturn is returned as the error of an action function in place of its result.
// The action machinery intercepts it once and uses the value produced by Handle as the
// function's real result.
type SpecialReturn interface {
	core.ControlSignal
	// ReturnType is the result type the action function declares.
	ReturnType() reflect.Type
	// Handle produces the actual result.
	Handle(ctx context.Context, actx core.ActionContext) (any, error)
}

var _ SpecialReturn = (*SubagentExecutionRequest)(nil)

// SubagentExecutionRequest asks for Instance to run as a sub-agent whose result replaces the
// action's own result.
type SubagentExecutionRequest struct {
	Instance any
	Type     reflect.Type
}

func (r *SubagentExecutionRequest) Error() string {
	return fmt.Sprintf("sub-agent execution requested for %s returning %s", describe(r.Instance), core.TypeKey(r.Type))
}

func (*SubagentExecutionRequest) ControlSignal() {}

func (r *SubagentExecutionRequest) ReturnType() reflect.Type { return r.Type }

// Agent returns the agent the request will run. Plain instances get synthesized metadata.
func (r *SubagentExecutionRequest) Agent() core.Agent {
	return core.AgentFromInstance(r.Instance)
}

func (r *SubagentExecutionRequest) Handle(ctx context.Context, actx core.ActionContext) (any, error) {
	return actx.AsSubProcess(ctx, r.Type, r.Agent())
}

func describe(instance any) string {
	if a, ok := instance.(core.Agent); ok {
		return a.Name
	}
	if instance == nil {
		return "<nil>"
	}
	return core.TypeKey(reflect.TypeOf(instance))
}

// RunSubagent requests that instance runs as a sub-agent producing a T. Return its results
// straight from an action function:
//
//	func summarize(doc *Document) (*Summary, error) {
//		return special.RunSubagent[*Summary](summarizer)
//	}
//
// An instance that already is a pending request is returned unchanged.
func RunSubagent[T any](instance any) (T, error) {
	v, err := RunAnySubagent(core.TypeOf[T](), instance)
	if t, ok := v.(T); ok {
		return t, err
	}
	return stdx.Zero[T](), err
}

// RunAnySubagent is RunSubagent for a result type known only at run time.
func RunAnySubagent(resultType reflect.Type, instance any) (any, error) {
	if pending, ok := pendingRequest(instance); ok {
		return nil, pending
	}
	return nil, &SubagentExecutionRequest{Instance: instance, Type: resultType}
}

func pendingRequest(instance any) (*SubagentExecutionRequest, bool) {
	if req, ok := instance.(*SubagentExecutionRequest); ok && req != nil {
		return req, true
	}
	if err, ok := instance.(error); ok {
		var req *SubagentExecutionRequest
		if errors.As(err, &req) {
			return req, true
		}
	}
	return nil, false
}

// Intercept resolves a special return carried by err. Values and other errors pass through.
// A special return produced while handling is not intercepted again.
func Intercept(ctx context.Context, actx core.ActionContext, value any, err error) (any, error) {
	var sr SpecialReturn
	if err == nil || !errors.As(err, &sr) {
		return value, err
	}
	slog.DebugContext(ctx, "intercepted special return", slogx.Type("signal", sr), slog.String("return_type", core.TypeKey(sr.ReturnType())))
	return sr.Handle(ctx, actx)
}

// Replan applies update to the blackboard of the process in ctx and returns the signal asking
// that process to replan. Return it as the error of an action function.
func Replan(ctx context.Context, reason string, update core.BlackboardUpdater) error {
	if p, ok := core.ProcessFrom(ctx); ok && update != nil {
		update(p.Blackboard())
	}
	return &core.ReplanRequestedError{Reason: reason, BlackboardUpdater: update}
}
