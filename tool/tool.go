package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/fogfish/opts"
)

var (
	// ErrNotAFunction is returned when a tool is built from something that is not a function.
	ErrNotAFunction = errors.New("provided value is not a function")
	// ErrBadReceiver is returned when a method expression does not accept the given receiver.
	ErrBadReceiver = errors.New("receiver does not match method")
	// ErrDuplicateTool is returned when a tool name is already taken in a ToolSet.
	ErrDuplicateTool = errors.New("duplicate tool name")
)

// Tool is a named, described, schema-carrying operation an LLM can invoke.
//
// Call never reports expected failures through its error: bad input, conversion problems and
// failed operations come back as an ErrorResult. The error return is reserved for control signals
// (see core.ControlSignal) and unexpected failures, both of which must propagate.
type Tool interface {
	Definition() Definition
	Call(ctx context.Context, input string) (Result, error)
}

// Definition is the LLM-facing description of a tool.
type Definition struct {
	Name        string
	Description string
	InputSchema InputSchema
}

// Wrapper is implemented by tools that decorate another tool.
type Wrapper interface {
	Unwrap() Tool
}

// Unwrap returns the tool wrapped by t, or nil when t does not wrap anything.
func Unwrap(t Tool) Tool {
	if w, ok := t.(Wrapper); ok {
		return w.Unwrap()
	}
	return nil
}

// As finds the first tool in the wrapper chain of t that has type T.
func As[T Tool](t Tool) (T, bool) {
	for t != nil {
		if v, ok := t.(T); ok {
			return v, true
		}
		t = Unwrap(t)
	}
	var zero T
	return zero, false
}

// CallFunc is the signature of a tool invocation.
type CallFunc func(ctx context.Context, input string) (Result, error)

type callTool struct {
	def  Definition
	call CallFunc
}

// New creates a tool from a definition and a call function.
func New(def Definition, call CallFunc) Tool {
	return &callTool{def: def, call: call}
}

func (t *callTool) Definition() Definition { return t.def }

func (t *callTool) Call(ctx context.Context, input string) (Result, error) {
	return t.call(ctx, input)
}

// Delegate is embedded by decorators that forward to another tool.
type Delegate struct {
	Tool Tool
}

func (d Delegate) Definition() Definition { return d.Tool.Definition() }

func (d Delegate) Call(ctx context.Context, input string) (Result, error) {
	return d.Tool.Call(ctx, input)
}

func (d Delegate) Unwrap() Tool { return d.Tool }

// WithDescription returns t with its description replaced.
func WithDescription(t Tool, description string) Tool {
	def := t.Definition()
	def.Description = description
	return &redefined{Delegate: Delegate{Tool: t}, def: def}
}

// Renamed returns t exposed under a different name.
func Renamed(t Tool, name string) Tool {
	def := t.Definition()
	def.Name = name
	return &redefined{Delegate: Delegate{Tool: t}, def: def}
}

type redefined struct {
	Delegate
	def Definition
}

func (r *redefined) Definition() Definition { return r.def }

type config struct {
	name         string
	description  string
	params       []string
	paramDocs    map[string]string
	skipValidate bool
}

// Option configures a tool built from a function.
type Option = opts.Option[config]

// Name sets the tool name. It defaults to the function name.
var Name = opts.ForName[config, string]("name")

// Description sets the tool description.
var Description = opts.ForName[config, string]("description")

// Params names the exposed parameters in declaration order, skipping context.Context.
// Unnamed parameters are called arg0, arg1, ...
func Params(names ...string) Option {
	return opts.Type[config](func(o *config) error {
		o.params = names
		return nil
	})
}

// ParamDescription documents one exposed parameter.
func ParamDescription(name, description string) Option {
	return opts.Type[config](func(o *config) error {
		if name == "" {
			return fmt.Errorf("parameter description needs a parameter name")
		}
		if o.paramDocs == nil {
			o.paramDocs = make(map[string]string)
		}
		o.paramDocs[name] = description
		return nil
	})
}

// SkipValidation disables JSON schema validation of tool input before the call.
func SkipValidation() Option {
	return opts.Type[config](func(o *config) error {
		o.skipValidate = true
		return nil
	})
}
