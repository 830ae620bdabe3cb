// Package registry provides a concurrent string-keyed registry with atomic get-or-add.
package registry

import (
	"sync"

	"github.com/alphadose/haxmap"
)

// Registry maps names to values. All methods are safe for concurrent use.
type Registry[T any] interface {
	Get(name string) (T, bool)
	// GetOrAdd returns the value for name, computing and storing it when absent.
	// The bool is true when the value was already present. When callers race, value runs for
	// exactly one of them and every other caller observes the stored result.
	GetOrAdd(name string, value func() T) (T, bool)
}

type registry[T any] struct {
	values *haxmap.Map[string, T]
	// mu serializes inserts; haxmap's GetOrCompute may run and store several computations.
	mu sync.Mutex
}

func New[T any]() Registry[T] {
	return &registry[T]{
		values: haxmap.New[string, T](),
	}
}

func (r *registry[T]) Get(name string) (T, bool) {
	return r.values.Get(name)
}

func (r *registry[T]) GetOrAdd(name string, valueFn func() T) (T, bool) {
	if v, ok := r.values.Get(name); ok {
		return v, true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.values.Get(name); ok {
		return v, true
	}
	v := valueFn()
	r.values.Set(name, v)
	return v, false
}
