package agentic

import (
	"context"
	"fmt"
	"strings"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/pkg/reflectx"
	"github.com/embabel/embabel-go/tool"
)

type boundConfig[S comparable] struct {
	transitionsTo *S
}

// BoundOption configures a state tool.
type BoundOption[S comparable] func(*boundConfig[S])

// TransitionsTo moves the state holder to s after every call that does not return an error result.
func TransitionsTo[S comparable](s S) BoundOption[S] {
	return func(c *boundConfig[S]) { c.transitionsTo = &s }
}

// StateBoundTool is only usable while its state holder is in one state.
type StateBoundTool[S comparable] struct {
	tool.Delegate
	def         tool.Definition
	holder      *StateHolder[S]
	availableIn S
	cfg         boundConfig[S]
}

// NewStateBound gates delegate on holder being in state availableIn.
func NewStateBound[S comparable](delegate tool.Tool, holder *StateHolder[S], availableIn S, options ...BoundOption[S]) *StateBoundTool[S] {
	var cfg boundConfig[S]
	for _, o := range options {
		o(&cfg)
	}
	def := delegate.Definition()
	notes := []string{fmt.Sprintf("[Available in state: %v]", availableIn)}
	if cfg.transitionsTo != nil {
		notes = append(notes, fmt.Sprintf("[Transitions to: %v]", *cfg.transitionsTo))
	}
	def.Description = annotate(def.Description, notes...)

	return &StateBoundTool[S]{
		Delegate:    tool.Delegate{Tool: delegate},
		def:         def,
		holder:      holder,
		availableIn: availableIn,
		cfg:         cfg,
	}
}

func (t *StateBoundTool[S]) Definition() tool.Definition { return t.def }

// AvailableIn returns the state the tool is usable in.
func (t *StateBoundTool[S]) AvailableIn() S { return t.availableIn }

// Available reports whether the tool is usable in the current state.
func (t *StateBoundTool[S]) Available() bool { return t.holder.Current() == t.availableIn }

func (t *StateBoundTool[S]) Call(ctx context.Context, input string) (tool.Result, error) {
	if current := t.holder.Current(); current != t.availableIn {
		return tool.Textf("Tool %s is not available in the current state %v. It is only available in state %v.",
			t.def.Name, current, t.availableIn), nil
	}
	return callAndTransition(ctx, t.Tool, input, t.holder, t.cfg)
}

// GlobalStateTool is usable in every state.
type GlobalStateTool[S comparable] struct {
	tool.Delegate
	def    tool.Definition
	holder *StateHolder[S]
	cfg    boundConfig[S]
}

// NewGlobal exposes delegate in all states of holder.
func NewGlobal[S comparable](delegate tool.Tool, holder *StateHolder[S], options ...BoundOption[S]) *GlobalStateTool[S] {
	var cfg boundConfig[S]
	for _, o := range options {
		o(&cfg)
	}
	def := delegate.Definition()
	notes := []string{"[Available in all states]"}
	if cfg.transitionsTo != nil {
		notes = append(notes, fmt.Sprintf("[Transitions to: %v]", *cfg.transitionsTo))
	}
	def.Description = annotate(def.Description, notes...)

	return &GlobalStateTool[S]{
		Delegate: tool.Delegate{Tool: delegate},
		def:      def,
		holder:   holder,
		cfg:      cfg,
	}
}

func (t *GlobalStateTool[S]) Definition() tool.Definition { return t.def }

func (t *GlobalStateTool[S]) Call(ctx context.Context, input string) (tool.Result, error) {
	return callAndTransition(ctx, t.Tool, input, t.holder, t.cfg)
}

func callAndTransition[S comparable](ctx context.Context, delegate tool.Tool, input string, holder *StateHolder[S], cfg boundConfig[S]) (tool.Result, error) {
	res, err := delegate.Call(ctx, input)
	if err != nil {
		return res, err
	}
	if tool.IsError(res) {
		return res, nil
	}
	bindArtifact(ctx, res)
	if cfg.transitionsTo != nil {
		holder.TransitionTo(ctx, *cfg.transitionsTo)
	}
	return res, nil
}

// bindArtifact adds a non-collection artifact to the blackboard of the current process.
func bindArtifact(ctx context.Context, res tool.Result) {
	art, ok := tool.ArtifactOf(res)
	if !ok || reflectx.IsCollection(art) {
		return
	}
	if p, ok := core.ProcessFrom(ctx); ok {
		p.Blackboard().AddObject(art)
	}
}

func annotate(description string, notes ...string) string {
	all := strings.Join(notes, " ")
	if description == "" {
		return all
	}
	return description + " " + all
}

// StateTools assembles the tools of one state machine.
type StateTools[S comparable] struct {
	holder *StateHolder[S]
	tools  []tool.Tool
}

// NewStateTools starts a builder for tools driven by holder.
func NewStateTools[S comparable](holder *StateHolder[S]) *StateTools[S] {
	return &StateTools[S]{holder: holder}
}

// InState adds t, usable only in state.
func (b *StateTools[S]) InState(state S, t tool.Tool, options ...BoundOption[S]) *StateTools[S] {
	b.tools = append(b.tools, NewStateBound(t, b.holder, state, options...))
	return b
}

// Global adds t, usable in every state.
func (b *StateTools[S]) Global(t tool.Tool, options ...BoundOption[S]) *StateTools[S] {
	b.tools = append(b.tools, NewGlobal(t, b.holder, options...))
	return b
}

// Tools returns every tool, gated or not.
func (b *StateTools[S]) Tools() []tool.Tool {
	return append([]tool.Tool(nil), b.tools...)
}

// Available returns the tools usable in the current state.
func (b *StateTools[S]) Available() []tool.Tool {
	var out []tool.Tool
	for _, t := range b.tools {
		if sb, ok := t.(*StateBoundTool[S]); ok && !sb.Available() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Holder returns the state holder the tools are bound to.
func (b *StateTools[S]) Holder() *StateHolder[S] { return b.holder }
