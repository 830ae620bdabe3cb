package tool

// Categorized is implemented by tools that belong to a category.
type Categorized interface {
	Category() string
}

type categorized struct {
	Delegate
	category string
}

func (c *categorized) Category() string { return c.category }

// WithCategory returns t tagged with category.
func WithCategory(t Tool, category string) Tool {
	return &categorized{Delegate: Delegate{Tool: t}, category: category}
}

// CategoryOf returns the category of t or of any tool it wraps, or "" when it has none.
func CategoryOf(t Tool) string {
	for t != nil {
		if c, ok := t.(Categorized); ok {
			return c.Category()
		}
		t = Unwrap(t)
	}
	return ""
}
