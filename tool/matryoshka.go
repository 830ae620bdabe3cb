package tool

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/fogfish/opts"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultCategoryParameter is the input field a Matryoshka reads its category filter from.
const DefaultCategoryParameter = "category"

// Disclosure is the artifact returned by a Matryoshka call.
type Disclosure struct {
	Facade *Matryoshka
	Tools  []Tool
	// RemoveFacade reports whether the facade should leave the active tool set.
	RemoveFacade bool
}

type matryoshkaConfig struct {
	keepOnInvoke      bool
	categoryParameter string
	usageNotes        string
}

// MatryoshkaOption configures a Matryoshka.
type MatryoshkaOption = opts.Option[matryoshkaConfig]

// KeepOnInvoke keeps the facade in the tool set after its children are disclosed.
func KeepOnInvoke() MatryoshkaOption {
	return opts.Type[matryoshkaConfig](func(o *matryoshkaConfig) error {
		o.keepOnInvoke = true
		return nil
	})
}

// CategoryParameter renames the input field used to select a category.
var CategoryParameter = opts.ForName[matryoshkaConfig, string]("categoryParameter")

// ChildToolUsageNotes adds guidance on using the disclosed tools to the disclosure payload.
var ChildToolUsageNotes = opts.ForName[matryoshkaConfig, string]("usageNotes")

// Matryoshka is a facade tool. Calling it runs nothing, it discloses its inner tools,
// optionally limited to one category.
type Matryoshka struct {
	def        Definition
	inner      []Tool
	categories []string
	cfg        matryoshkaConfig
}

// NewMatryoshka creates a facade over inner. Inner tools tagged with WithCategory can be
// disclosed per category.
func NewMatryoshka(name, description string, inner []Tool, options ...MatryoshkaOption) (*Matryoshka, error) {
	if name == "" {
		return nil, fmt.Errorf("matryoshka tool needs a name")
	}
	cfg := matryoshkaConfig{categoryParameter: DefaultCategoryParameter}
	if err := opts.Apply(&cfg, options); err != nil {
		return nil, err
	}
	if cfg.categoryParameter == "" {
		cfg.categoryParameter = DefaultCategoryParameter
	}

	seen := make(map[string]bool, len(inner))
	var categories []string
	for _, t := range inner {
		n := t.Definition().Name
		if seen[n] {
			return nil, fmt.Errorf("%w: %s inside %s", ErrDuplicateTool, n, name)
		}
		seen[n] = true
		if c := CategoryOf(t); c != "" && !slices.Contains(categories, c) {
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	m := &Matryoshka{
		inner:      slices.Clone(inner),
		categories: categories,
		cfg:        cfg,
	}
	m.def = Definition{Name: name, Description: m.describe(description)}
	if len(categories) > 0 {
		m.def.InputSchema.Parameters = []Parameter{{
			Name:        cfg.categoryParameter,
			Type:        TypeString,
			Description: "Category of tools to reveal. Omit to reveal all tools.",
			Enum:        categories,
		}}
	}
	return m, nil
}

// MatryoshkaByCategory creates a facade whose inner tools are grouped by category.
func MatryoshkaByCategory(name, description string, byCategory map[string][]Tool, options ...MatryoshkaOption) (*Matryoshka, error) {
	keys := make([]string, 0, len(byCategory))
	for k := range byCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var inner []Tool
	for _, k := range keys {
		for _, t := range byCategory[k] {
			inner = append(inner, WithCategory(t, k))
		}
	}
	return NewMatryoshka(name, description, inner, options...)
}

func (m *Matryoshka) describe(description string) string {
	var b strings.Builder
	b.WriteString(description)
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "Invoke this tool to reveal %d more tools.", len(m.inner))
	if len(m.categories) > 0 {
		fmt.Fprintf(&b, " Available categories: %s.", strings.Join(m.categories, ", "))
	}
	return b.String()
}

func (m *Matryoshka) Definition() Definition { return m.def }

// Inner returns the inner tools in declaration order.
func (m *Matryoshka) Inner() []Tool { return slices.Clone(m.inner) }

// Categories returns the sorted categories of the inner tools.
func (m *Matryoshka) Categories() []string { return slices.Clone(m.categories) }

// RemoveOnInvoke reports whether the facade goes away once its children are disclosed.
func (m *Matryoshka) RemoveOnInvoke() bool { return !m.cfg.keepOnInvoke }

// Select returns the inner tools of category, or all inner tools for an empty category.
func (m *Matryoshka) Select(category string) []Tool {
	if category == "" {
		return m.Inner()
	}
	var out []Tool
	for _, t := range m.inner {
		if CategoryOf(t) == category {
			out = append(out, t)
		}
	}
	return out
}

func (m *Matryoshka) Call(_ context.Context, input string) (Result, error) {
	input = normalizeInput(input)
	if !gjson.Valid(input) {
		return Errorf("invalid JSON input for tool %s", m.def.Name), nil
	}
	category := gjson.Parse(input).Map()[m.cfg.categoryParameter].String()

	selected := m.Select(category)
	if category != "" && len(selected) == 0 {
		if len(m.categories) == 0 {
			return Textf("%s has no categories. Invoke it without a %s to reveal its tools.", m.def.Name, m.cfg.categoryParameter), nil
		}
		return Textf("Unknown category %q. Available categories: %s", category, strings.Join(m.categories, ", ")), nil
	}

	content, err := m.disclosureContent(category, selected)
	if err != nil {
		return Errorf("failed to render disclosure: %w", err), nil
	}
	return WithArtifact(content, Disclosure{
		Facade:       m,
		Tools:        selected,
		RemoveFacade: m.RemoveOnInvoke(),
	}), nil
}

func (m *Matryoshka) disclosureContent(category string, selected []Tool) (string, error) {
	msg := fmt.Sprintf("Revealed %d tools", len(selected))
	if category != "" {
		msg += fmt.Sprintf(" in category %s", category)
	}
	content, err := sjson.Set("", "message", msg)
	if err != nil {
		return "", err
	}
	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	tools := make([]entry, len(selected))
	for i, t := range selected {
		def := t.Definition()
		tools[i] = entry{Name: def.Name, Description: def.Description}
	}
	if content, err = sjson.Set(content, "tools", tools); err != nil {
		return "", err
	}
	if m.cfg.usageNotes != "" {
		if content, err = sjson.Set(content, "usage_notes", m.cfg.usageNotes); err != nil {
			return "", err
		}
	}
	return content, nil
}
