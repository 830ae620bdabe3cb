package tool

import (
	"fmt"
	"slices"
	"sync"
)

// ToolSet is an exposure scope: an ordered set of tools with unique names.
// The zero value is empty and ready to use. It is safe for concurrent use.
type ToolSet struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Tool
}

// NewToolSet creates a set holding tools. Duplicate names are rejected.
func NewToolSet(tools ...Tool) (*ToolSet, error) {
	s := &ToolSet{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends t.
func (s *ToolSet) Add(t Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(len(s.order), t)
}

func (s *ToolSet) add(at int, t Tool) error {
	if s.tools == nil {
		s.tools = make(map[string]Tool)
	}
	name := t.Definition().Name
	if _, ok := s.tools[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	s.tools[name] = t
	s.order = slices.Insert(s.order, at, name)
	return nil
}

// Remove drops the tool called name and reports whether it was present.
func (s *ToolSet) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(name) >= 0
}

func (s *ToolSet) remove(name string) int {
	if _, ok := s.tools[name]; !ok {
		return -1
	}
	delete(s.tools, name)
	i := slices.Index(s.order, name)
	s.order = slices.Delete(s.order, i, i+1)
	return i
}

// Replace swaps the tool called name for replacements, keeping its position.
// Replacements already present in the set are skipped.
func (s *ToolSet) Replace(name string, replacements ...Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	at := s.remove(name)
	if at < 0 {
		return fmt.Errorf("tool %s is not in the set", name)
	}
	return s.insert(at, replacements)
}

// insert adds tools starting at position at, skipping names already present.
func (s *ToolSet) insert(at int, tools []Tool) error {
	for _, t := range tools {
		if _, ok := s.tools[t.Definition().Name]; ok {
			continue
		}
		if err := s.add(at, t); err != nil {
			return err
		}
		at++
	}
	return nil
}

// Get returns the tool called name.
func (s *ToolSet) Get(name string) (Tool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tools[name]
	return t, ok
}

// Tools returns the tools in order.
func (s *ToolSet) Tools() []Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tool, len(s.order))
	for i, n := range s.order {
		out[i] = s.tools[n]
	}
	return out
}

// Names returns the tool names in order.
func (s *ToolSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

func (s *ToolSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// ApplyDisclosure surfaces the tools of a Matryoshka call. The facade is replaced in place
// when it asks to be removed, otherwise the children are appended after it.
// Children already in the set are left alone.
func (s *ToolSet) ApplyDisclosure(d Disclosure) error {
	if d.Facade == nil {
		return fmt.Errorf("disclosure without facade")
	}
	name := d.Facade.Definition().Name

	s.mu.Lock()
	defer s.mu.Unlock()
	at := -1
	if d.RemoveFacade {
		at = s.remove(name)
	} else if i := slices.Index(s.order, name); i >= 0 {
		at = i + 1
	}
	if at < 0 {
		at = len(s.order)
	}
	return s.insert(at, d.Tools)
}
