package core

import (
	"context"
	"reflect"
)

// DefaultBinding is the name given to an input or output that was not named explicitly.
const DefaultBinding = "it"

// IoBinding describes one named, typed input or output of an action.
type IoBinding struct {
	Name string
	Type reflect.Type
}

// NewBinding creates a binding, falling back to DefaultBinding for an empty name.
func NewBinding(name string, t reflect.Type) IoBinding {
	if name == "" {
		name = DefaultBinding
	}
	return IoBinding{Name: name, Type: t}
}

// Bind creates a binding for type T.
func Bind[T any](name string) IoBinding {
	return NewBinding(name, TypeOf[T]())
}

// TypeName returns the fully qualified name of the bound type.
func (b IoBinding) TypeName() string {
	return TypeKey(b.Type)
}

// IsDefault reports whether the binding still carries the DefaultBinding name.
func (b IoBinding) IsDefault() bool {
	return b.Name == DefaultBinding
}

// SatisfiedBy reports whether value can be supplied for this binding.
func (b IoBinding) SatisfiedBy(value any) bool {
	return IsAssignable(value, b.Type)
}

func (b IoBinding) String() string {
	return b.Name + ":" + b.TypeName()
}

type inputValuesKey struct{}

type inputValues struct {
	action string
	values map[int]any
}

// WithInputValues returns a context carrying values for one execution of the named action,
// keyed by the position of the input in Action.Inputs. Actions consult them before the
// blackboard, so inputs sharing a binding still receive distinct values.
func WithInputValues(ctx context.Context, action string, values map[int]any) context.Context {
	return context.WithValue(ctx, inputValuesKey{}, inputValues{action: action, values: values})
}

// InputValuesFor returns the values ctx carries for the named action.
func InputValuesFor(ctx context.Context, action string) map[int]any {
	if ctx == nil {
		return nil
	}
	iv, ok := ctx.Value(inputValuesKey{}).(inputValues)
	if !ok || iv.action != action {
		return nil
	}
	return iv.values
}
