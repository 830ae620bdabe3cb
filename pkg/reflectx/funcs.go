package reflectx

import (
	"context"
	"reflect"
	"runtime"
	"strings"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// IsFunction reports whether fn is a non-nil function value.
func IsFunction(fn any) bool {
	if fn == nil {
		return false
	}
	return reflect.TypeOf(fn).Kind() == reflect.Func
}

// FunctionName returns the unqualified name of fn as known to the runtime.
// Method expressions such as (*Order).Cancel yield "Cancel"; method values lose their "-fm" suffix.
func FunctionName(fn any) string {
	if !IsFunction(fn) {
		return ""
	}

	val := reflect.ValueOf(fn)
	f := runtime.FuncForPC(val.Pointer())
	if f == nil {
		return val.Type().String()
	}
	name := f.Name()
	if lastDot := strings.LastIndex(name, "."); lastDot >= 0 {
		name = name[lastDot+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

// IsContext reports whether t is context.Context.
func IsContext(t reflect.Type) bool {
	return t == contextType
}

// IsError reports whether t is the error interface or implements it.
func IsError(t reflect.Type) bool {
	return t != nil && t.Implements(errorType)
}

// Indirect strips all pointer indirections from t.
func Indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// IsCollection reports whether v (after pointer indirection) is a slice, array or map.
func IsCollection(v any) bool {
	if v == nil {
		return false
	}
	switch Indirect(reflect.TypeOf(v)).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}

// AssignableTo reports whether the dynamic type of v is assignable to t.
// A nil value is never assignable.
func AssignableTo(v any, t reflect.Type) bool {
	if v == nil || t == nil {
		return false
	}
	return reflect.TypeOf(v).AssignableTo(t)
}
