package core

import (
	"reflect"
	"slices"
	"sync"

	"github.com/alphadose/haxmap"
)

// Blackboard is the shared store of one agent process.
//
// It keeps named bindings plus the ordered list of all distinct objects ever added.
// Reads return snapshots; no lock is held once a method returns.
type Blackboard interface {
	// Get returns the value bound to name.
	Get(name string) (any, bool)
	// Set binds value to name and records it as an object.
	Set(name string, value any)
	// AddObject records value without binding it to a name.
	AddObject(value any)
	// Objects returns the distinct values ever added, in insertion order.
	Objects() []any
	// Values returns a snapshot of the named bindings.
	Values() map[string]any
	// LastResult returns the most recently added value.
	LastResult() any
	// Spawn creates a child blackboard seeded with a copy of this one.
	Spawn() Blackboard
}

// BlackboardUpdater mutates a blackboard.
type BlackboardUpdater func(bb Blackboard)

var _ Blackboard = (*InMemoryBlackboard)(nil)

// InMemoryBlackboard is the default Blackboard, safe for concurrent use.
type InMemoryBlackboard struct {
	values *haxmap.Map[string, any]

	mu      sync.RWMutex
	objects []any
	last    any
}

// NewBlackboard creates an empty blackboard and adds the given objects to it.
func NewBlackboard(objects ...any) *InMemoryBlackboard {
	bb := &InMemoryBlackboard{
		values: haxmap.New[string, any](),
	}
	for _, o := range objects {
		bb.AddObject(o)
	}
	return bb
}

func (b *InMemoryBlackboard) Get(name string) (any, bool) {
	return b.values.Get(name)
}

func (b *InMemoryBlackboard) Set(name string, value any) {
	b.values.Set(name, value)
	b.AddObject(value)
}

func (b *InMemoryBlackboard) AddObject(value any) {
	if value == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = value
	if slices.ContainsFunc(b.objects, func(o any) bool { return SameObject(o, value) }) {
		return
	}
	b.objects = append(b.objects, value)
}

func (b *InMemoryBlackboard) Objects() []any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.objects)
}

func (b *InMemoryBlackboard) Values() map[string]any {
	out := make(map[string]any, b.values.Len())
	b.values.ForEach(func(k string, v any) bool {
		out[k] = v
		return true
	})
	return out
}

func (b *InMemoryBlackboard) LastResult() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

func (b *InMemoryBlackboard) Spawn() Blackboard {
	child := NewBlackboard()
	b.values.ForEach(func(k string, v any) bool {
		child.values.Set(k, v)
		return true
	})
	b.mu.RLock()
	child.objects = slices.Clone(b.objects)
	child.last = b.last
	b.mu.RUnlock()
	return child
}

// LastOfType returns the most recently added object assignable to t.
func LastOfType(bb Blackboard, t reflect.Type) (any, bool) {
	objs := bb.Objects()
	for i := len(objs) - 1; i >= 0; i-- {
		if IsAssignable(objs[i], t) {
			return objs[i], true
		}
	}
	return nil, false
}

// Last returns the most recently added object of type T.
func Last[T any](bb Blackboard) (T, bool) {
	v, ok := LastOfType(bb, TypeOf[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// SameObject reports whether a and b are the same blackboard object.
// Reference kinds compare by identity and everything else by value.
func SameObject(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return reflect.DeepEqual(a, b)
	}
}
