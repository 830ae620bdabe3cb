package tool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Knetic/govaluate"
	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/events"
	"github.com/embabel/embabel-go/pkg/jsonx"
	"github.com/embabel/embabel-go/pkg/slogx"
)

// ReplanContext is what a replan decider sees besides the artifact.
type ReplanContext struct {
	// Process is the current agent process, nil when the call runs outside of one.
	Process core.AgentProcess
	Tool    Definition
	Result  Result
}

// Decider inspects an artifact and returns a decision to replan, or nil to continue.
type Decider[T any] func(artifact T, rc ReplanContext) *core.ReplanDecision

// ReplanAlways wraps delegate so that every completed call requests a replan.
func ReplanAlways(delegate Tool, reason string, update core.BlackboardUpdater) Tool {
	return &replanningTool{
		Delegate: Delegate{Tool: delegate},
		decide: func(_ Result, _ ReplanContext) *core.ReplanDecision {
			return &core.ReplanDecision{Reason: reason, Update: update}
		},
	}
}

// ReplanWhen wraps delegate so that a replan is requested when the artifact has type T and
// predicate accepts it.
func ReplanWhen[T any](delegate Tool, predicate func(T) bool, reason string, update core.BlackboardUpdater) Tool {
	return ReplanDecide(delegate, func(art T, _ ReplanContext) *core.ReplanDecision {
		if !predicate(art) {
			return nil
		}
		return &core.ReplanDecision{Reason: reason, Update: update}
	})
}

// ReplanDecide wraps delegate so that decide chooses, per artifact of type T, whether to replan.
// Results without such an artifact are returned unchanged.
func ReplanDecide[T any](delegate Tool, decide Decider[T]) Tool {
	return &replanningTool{
		Delegate: Delegate{Tool: delegate},
		decide: func(res Result, rc ReplanContext) *core.ReplanDecision {
			art, ok := artifactAs[T](res)
			if !ok {
				return nil
			}
			return decide(art, rc)
		},
	}
}

// ReplanWhenExpression wraps delegate so that a replan is requested when expression evaluates to
// true against the JSON fields of an artifact of type T, for example `total > 100 && status == 'open'`.
// The artifact itself is available as "it".
func ReplanWhenExpression[T any](delegate Tool, expression, reason string) (Tool, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid replan expression %q: %w", expression, err)
	}
	return ReplanDecide(delegate, func(art T, rc ReplanContext) *core.ReplanDecision {
		params, err := jsonx.ToDynamicJSON(art)
		if err != nil {
			params = make(map[string]any)
		}
		params["it"] = art

		out, err := expr.Evaluate(params)
		if err != nil {
			slog.Warn("replan expression failed", slogx.Tool(rc.Tool.Name), slog.String("expression", expression), slogx.Error(err))
			return nil
		}
		if yes, ok := out.(bool); !ok || !yes {
			return nil
		}
		return &core.ReplanDecision{Reason: reason}
	}), nil
}

type replanningTool struct {
	Delegate
	decide func(Result, ReplanContext) *core.ReplanDecision
}

func (t *replanningTool) Call(ctx context.Context, input string) (Result, error) {
	res, err := t.Tool.Call(ctx, input)
	if err != nil {
		return res, err
	}

	proc, _ := core.ProcessFrom(ctx)
	rc := ReplanContext{Process: proc, Tool: t.Definition(), Result: res}
	decision := t.decide(res, rc)
	if decision == nil {
		return res, nil
	}

	if proc != nil {
		if decision.Update != nil {
			decision.Update(proc.Blackboard())
		}
		proc.ProcessContext().Publish(ctx, events.ReplanRequested{
			Metadata: events.Stamp(proc.ID()),
			Tool:     rc.Tool.Name,
			Reason:   decision.Reason,
		})
	} else if decision.Update != nil {
		slog.WarnContext(ctx, "replan requested without a process, blackboard update skipped", slogx.Tool(rc.Tool.Name))
	}
	slog.DebugContext(ctx, "replan requested", slogx.Tool(rc.Tool.Name), slog.String("reason", decision.Reason))
	return nil, &core.ReplanRequestedError{Reason: decision.Reason, BlackboardUpdater: decision.Update}
}
