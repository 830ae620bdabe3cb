package tool

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ParameterType is the JSON schema type of a tool parameter.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeNumber  ParameterType = "number"
	TypeInteger ParameterType = "integer"
	TypeBoolean ParameterType = "boolean"
	TypeObject  ParameterType = "object"
	TypeArray   ParameterType = "array"
)

// Parameter is one input of a tool. Object parameters list their Properties,
// array parameters always carry the schema of their Items.
type Parameter struct {
	Name        string
	Type        ParameterType
	Description string
	Required    bool
	Items       *Parameter
	Properties  []Parameter
	Enum        []string
}

// InputSchema is the ordered list of tool parameters.
type InputSchema struct {
	Parameters []Parameter
}

// Parameter returns the parameter called name.
func (s InputSchema) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Names returns the parameter names in order.
func (s InputSchema) Names() []string {
	names := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		names[i] = p.Name
	}
	return names
}

// JSONSchema renders the schema as a JSON schema object.
func (s InputSchema) JSONSchema() *jsonschema.Schema {
	props, required := objectProperties(s.Parameters)
	return &jsonschema.Schema{
		Type:       string(TypeObject),
		Properties: props,
		Required:   required,
	}
}

// ToJSONSchema renders the schema as a compact JSON string.
func (s InputSchema) ToJSONSchema() (string, error) {
	b, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return "", fmt.Errorf("failed to encode input schema: %w", err)
	}
	return string(b), nil
}

// Compile prepares the schema for validating tool input.
func (s InputSchema) Compile() (*sjsonschema.Schema, error) {
	raw, err := s.ToJSONSchema()
	if err != nil {
		return nil, err
	}

	const schemaURL = "https://embabel.local/tool/input.schema.json"
	c := sjsonschema.NewCompiler()
	c.Draft = sjsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("input schema load failed: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("input schema compile failed: %w", err)
	}
	return compiled, nil
}

// Validate checks a raw JSON input against the schema.
func (s InputSchema) Validate(input string) error {
	compiled, err := s.Compile()
	if err != nil {
		return err
	}
	return validateInput(compiled, input)
}

func validateInput(compiled *sjsonschema.Schema, input string) error {
	var doc any
	dec := json.NewDecoder(strings.NewReader(normalizeInput(input)))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid JSON input: %w", err)
	}
	return compiled.Validate(doc)
}

func (p Parameter) schema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:        string(p.Type),
		Description: p.Description,
	}
	switch p.Type {
	case TypeArray:
		items := p.Items
		if items == nil {
			items = &Parameter{Type: TypeObject}
		}
		s.Items = items.schema()
	case TypeObject:
		if len(p.Properties) > 0 {
			s.Properties, s.Required = objectProperties(p.Properties)
		}
	}
	for _, e := range p.Enum {
		s.Enum = append(s.Enum, e)
	}
	return s
}

func objectProperties(params []Parameter) (*orderedmap.OrderedMap[string, *jsonschema.Schema], []string) {
	props := orderedmap.New[string, *jsonschema.Schema]()
	var required []string
	for _, p := range params {
		props.Set(p.Name, p.schema())
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return props, required
}

// normalizeInput maps an empty input to an empty object.
func normalizeInput(input string) string {
	if strings.TrimSpace(input) == "" {
		return "{}"
	}
	return input
}
