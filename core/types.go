package core

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/embabel/embabel-go/pkg/reflectx"
)

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// TypeKey returns a stable, fully qualified identifier for t.
// Named types render as "import/path.Name", composite types recurse into their elements.
func TypeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + TypeKey(t.Elem())
	case reflect.Slice:
		if t.Name() == "" {
			return "[]" + TypeKey(t.Elem())
		}
	case reflect.Array:
		if t.Name() == "" {
			return "[" + strconv.Itoa(t.Len()) + "]" + TypeKey(t.Elem())
		}
	case reflect.Map:
		if t.Name() == "" {
			return "map[" + TypeKey(t.Key()) + "]" + TypeKey(t.Elem())
		}
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// SimpleName returns the unqualified name of t with pointers stripped.
// Generic instantiations lose their type arguments.
func SimpleName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	return name
}

// IsAssignable reports whether value is non-nil and its runtime type is assignable to t.
func IsAssignable(value any, t reflect.Type) bool {
	return reflectx.AssignableTo(value, t)
}
