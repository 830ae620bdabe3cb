package domain

import (
	"context"
	"fmt"
	"reflect"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/tool"
)

// MethodSpec registers one method of a domain type as a tool.
type MethodSpec struct {
	// Fn is a method expression such as (*Order).Cancel.
	Fn      any
	Options []tool.Option
}

// Method registers the method expression fn with tool options.
func Method(fn any, options ...tool.Option) MethodSpec {
	return MethodSpec{Fn: fn, Options: options}
}

// Provider is implemented by domain objects that declare their own tools.
// It is consulted when a tracker binds any domain object.
type Provider interface {
	DomainTools() []MethodSpec
}

// Source declares that once an object of Type appears its methods become tools.
type Source struct {
	Type    reflect.Type
	Methods []MethodSpec
}

// NewSource creates a source for objects of type T, usually a pointer type.
func NewSource[T any](methods ...MethodSpec) Source {
	return Source{Type: core.TypeOf[T](), Methods: methods}
}

// Key returns the type key the source is tracked under.
func (s Source) Key() string {
	return core.TypeKey(s.Type)
}

// Definitions synthesizes the tool definitions of every registered method.
func (s Source) Definitions() ([]tool.Definition, error) {
	defs := make([]tool.Definition, 0, len(s.Methods))
	for _, m := range s.Methods {
		def, err := tool.SynthesizeMethod(m.Fn, m.Options...)
		if err != nil {
			return nil, fmt.Errorf("domain tool on %s: %w", s.Key(), err)
		}
		if recv := reflect.TypeOf(m.Fn).In(0); !s.Type.AssignableTo(recv) {
			return nil, fmt.Errorf("%w: %s is not a %s", tool.ErrBadReceiver, s.Key(), core.TypeKey(recv))
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Bind creates live tools calling the registered methods on instance.
func (s Source) Bind(instance any) ([]tool.Tool, error) {
	tools := make([]tool.Tool, 0, len(s.Methods))
	for _, m := range s.Methods {
		t, err := tool.FromMethod(instance, m.Fn, m.Options...)
		if err != nil {
			return nil, fmt.Errorf("domain tool on %s: %w", s.Key(), err)
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// Placeholders creates inert tools that advertise the methods before an instance exists.
func (s Source) Placeholders() ([]tool.Tool, error) {
	defs, err := s.Definitions()
	if err != nil {
		return nil, err
	}
	tools := make([]tool.Tool, len(defs))
	for i, def := range defs {
		tools[i] = placeholder(def, s.Type)
	}
	return tools, nil
}

// Placeholder is an inert stand-in for a domain tool whose object is not bound yet.
type Placeholder struct {
	def  tool.Definition
	Type reflect.Type
}

func placeholder(def tool.Definition, t reflect.Type) *Placeholder {
	return &Placeholder{def: def, Type: t}
}

func (p *Placeholder) Definition() tool.Definition { return p.def }

func (p *Placeholder) Call(context.Context, string) (tool.Result, error) {
	name := core.SimpleName(p.Type)
	return tool.Textf("Tool %s is not yet available: it operates on a %s, which must be retrieved first.", p.def.Name, name), nil
}
