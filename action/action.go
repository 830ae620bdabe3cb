package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/pkg/reflectx"
	"github.com/embabel/embabel-go/pkg/slogx"
	"github.com/embabel/embabel-go/pkg/stdx"
	"github.com/embabel/embabel-go/special"
	"github.com/fogfish/opts"
)

// ErrMissingInput is reported in the failed status of an action whose inputs are not on the
// blackboard.
var ErrMissingInput = errors.New("missing input")

type config struct {
	description string
	shortName   string
	output      string
	inputs      []string
}

// Option configures an action built from a function.
type Option = opts.Option[config]

var (
	// Description sets the action description.
	Description = opts.ForName[config, string]("description")
	// ShortName sets the name used for tools derived from the action. It defaults to the
	// last dot separated segment of the action name.
	ShortName = opts.ForName[config, string]("shortName")
	// Output sets the blackboard name the result is bound under. It defaults to "it".
	Output = opts.ForName[config, string]("output")
)

// Inputs names the function parameters in declaration order, skipping context.Context.
// An empty name, or a missing one, leaves the input as the default "it" binding.
func Inputs(names ...string) Option {
	return opts.Type[config](func(c *config) error {
		c.inputs = names
		return nil
	})
}

var _ core.Action = (*Action)(nil)

// Action is a core.Action backed by a Go function. Its inputs are the function parameters,
// resolved from the blackboard when it executes.
type Action struct {
	name        string
	shortName   string
	description string
	output      string
	inputs      []core.IoBinding
	takesCtx    []bool
	resultType  reflect.Type
	fn          reflect.Value
}

// New creates an action named name that calls fn.
//
// fn may take a context.Context anywhere in its parameter list and returns a value, an error, or
// a value and an error. The error result may carry a special return or a control signal.
func New(name string, fn any, options ...Option) (*Action, error) {
	if !reflectx.IsFunction(fn) {
		return nil, fmt.Errorf("action %s: %T is not a function", name, fn)
	}
	if name == "" {
		name = reflectx.FunctionName(fn)
	}
	var c config
	if err := opts.Apply(&c, options); err != nil {
		return nil, err
	}

	ft := reflect.TypeOf(fn)
	if ft.IsVariadic() {
		return nil, fmt.Errorf("action %s: variadic functions are not supported", name)
	}

	a := &Action{
		name:        name,
		shortName:   c.shortName,
		description: c.description,
		output:      c.output,
		fn:          reflect.ValueOf(fn),
	}
	if a.shortName == "" {
		a.shortName = name[strings.LastIndex(name, ".")+1:]
	}
	if a.output == "" {
		a.output = core.DefaultBinding
	}

	idx := 0
	for i := range ft.NumIn() {
		in := ft.In(i)
		if reflectx.IsContext(in) {
			a.takesCtx = append(a.takesCtx, true)
			continue
		}
		var inputName string
		if idx < len(c.inputs) {
			inputName = c.inputs[idx]
		}
		a.takesCtx = append(a.takesCtx, false)
		a.inputs = append(a.inputs, core.NewBinding(inputName, in))
		idx++
	}
	if len(c.inputs) > idx {
		return nil, fmt.Errorf("action %s: %d input names for %d inputs", name, len(c.inputs), idx)
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if !reflectx.IsError(ft.Out(0)) {
			a.resultType = ft.Out(0)
		}
	case 2:
		if !reflectx.IsError(ft.Out(1)) {
			return nil, fmt.Errorf("action %s: second result must be an error", name)
		}
		a.resultType = ft.Out(0)
	default:
		return nil, fmt.Errorf("action %s: too many results", name)
	}
	return a, nil
}

// Must is New that panics on error.
func Must(name string, fn any, options ...Option) *Action {
	return stdx.Must1(New(name, fn, options...))
}

func (a *Action) Name() string             { return a.name }
func (a *Action) ShortName() string        { return a.shortName }
func (a *Action) Description() string      { return a.description }
func (a *Action) Inputs() []core.IoBinding { return a.inputs }

// Output is the binding the result is stored under. Its type is nil for actions without a
// result value.
func (a *Action) Output() core.IoBinding {
	return core.IoBinding{Name: a.output, Type: a.resultType}
}

// Execute resolves the inputs, calls the function once and binds its result.
//
// A special return is intercepted once and its value used as the result. Control signals are
// returned as the error. Every other error is reported as a failed status.
func (a *Action) Execute(ctx context.Context, pc *core.ProcessContext) (core.ActionStatus, error) {
	if pc == nil || pc.Process == nil {
		return core.Failed(core.ErrNoProcess), nil
	}
	proc := pc.Process
	ctx = core.WithProcess(ctx, proc)

	supplied := core.InputValuesFor(ctx, a.name)
	ctx = core.WithInputValues(ctx, "", nil)
	args, err := a.resolve(ctx, proc.Blackboard(), supplied)
	if err != nil {
		return core.Failed(err), nil
	}

	log := slog.With(slogx.LoggerName("action"), slog.String("action", a.name), slog.String("process_id", proc.ID()))
	log.DebugContext(ctx, "executing action")

	value, err := a.split(a.fn.Call(args))
	value, err = special.Intercept(ctx, core.ActionContext{Process: proc, Action: a}, value, err)
	if err != nil {
		if core.IsControlSignal(err) {
			log.DebugContext(ctx, "action raised control signal", slogx.Error(err))
			return core.ActionStatus{}, err
		}
		log.DebugContext(ctx, "action failed", slogx.Error(err))
		return core.Failed(err), nil
	}

	if a.resultType != nil && value != nil && !core.IsAssignable(value, a.resultType) {
		return core.Failed(fmt.Errorf("action %s produced %s, expected %s",
			a.name, core.TypeKey(reflect.TypeOf(value)), core.TypeKey(a.resultType))), nil
	}
	if value != nil {
		proc.Bind(ctx, a.output, value)
	}
	return core.Succeeded(), nil
}

// resolve builds the call arguments. Values supplied for this execution win over the blackboard.
func (a *Action) resolve(ctx context.Context, bb core.Blackboard, supplied map[int]any) ([]reflect.Value, error) {
	args := make([]reflect.Value, 0, len(a.takesCtx))
	next := 0
	for _, isCtx := range a.takesCtx {
		if isCtx {
			args = append(args, reflect.ValueOf(ctx))
			continue
		}
		in := a.inputs[next]
		v, ok := supplied[next]
		if !ok || !core.IsAssignable(v, in.Type) {
			v, ok = lookup(bb, in)
		}
		next++
		if !ok {
			return nil, fmt.Errorf("%w %s for action %s", ErrMissingInput, in, a.name)
		}
		args = append(args, reflect.ValueOf(v))
	}
	return args, nil
}

// lookup finds the value for in: by name first, then the most recent object of its type.
func lookup(bb core.Blackboard, in core.IoBinding) (any, bool) {
	if !in.IsDefault() {
		if v, ok := bb.Get(in.Name); ok && core.IsAssignable(v, in.Type) {
			return v, true
		}
	}
	return core.LastOfType(bb, in.Type)
}

func (a *Action) split(out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && reflectx.IsError(out[n-1].Type()) {
		if errv := out[n-1]; !isNil(errv) {
			err = errv.Interface().(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 || isNil(out[0]) {
		return nil, err
	}
	return out[0].Interface(), err
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
