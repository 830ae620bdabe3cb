package tool

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/embabel/embabel-go/pkg/reflectx"
	"github.com/fogfish/opts"
)

var (
	timeType          = reflect.TypeFor[time.Time]()
	bytesType         = reflect.TypeFor[[]byte]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// ParameterFor maps a Go type to a required parameter called name.
//
// Integers map to integer, floats to number, bool to boolean. Strings, []byte, time.Time and
// encoding.TextMarshaler implementations map to string. Slices and arrays map to array with
// items taken from the declared element type. Structs expand their exported fields, honoring
// json tag names, the description and enum tags and omitempty as not required.
// Everything else, including recursive references, maps to a plain object.
func ParameterFor(name string, t reflect.Type) Parameter {
	p := parameterFor(t, make(map[reflect.Type]bool))
	p.Name = name
	p.Required = true
	return p
}

func parameterFor(t reflect.Type, visiting map[reflect.Type]bool) Parameter {
	t = reflectx.Indirect(t)
	if t == nil {
		return Parameter{Type: TypeObject}
	}
	if isStringLike(t) {
		return Parameter{Type: TypeString}
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Parameter{Type: TypeInteger}
	case reflect.Float32, reflect.Float64:
		return Parameter{Type: TypeNumber}
	case reflect.Bool:
		return Parameter{Type: TypeBoolean}
	case reflect.String:
		return Parameter{Type: TypeString}
	case reflect.Slice, reflect.Array:
		items := parameterFor(t.Elem(), visiting)
		return Parameter{Type: TypeArray, Items: &items}
	case reflect.Struct:
		if visiting[t] {
			return Parameter{Type: TypeObject}
		}
		visiting[t] = true
		defer delete(visiting, t)
		return Parameter{Type: TypeObject, Properties: structFields(t, visiting)}
	default:
		return Parameter{Type: TypeObject}
	}
}

func isStringLike(t reflect.Type) bool {
	if t == timeType || t == bytesType {
		return true
	}
	return t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)
}

func structFields(t reflect.Type, visiting map[reflect.Type]bool) []Parameter {
	var props []Parameter
	for i := range t.NumField() {
		f := t.Field(i)
		name, omitempty, skip := jsonField(f)
		if skip {
			continue
		}

		if f.Anonymous && !hasJSONName(f) {
			if ft := reflectx.Indirect(f.Type); ft.Kind() == reflect.Struct && !isStringLike(ft) {
				if !visiting[ft] {
					visiting[ft] = true
					props = append(props, structFields(ft, visiting)...)
					delete(visiting, ft)
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}

		p := parameterFor(f.Type, visiting)
		p.Name = name
		p.Description = f.Tag.Get("description")
		p.Required = !omitempty
		if enum := f.Tag.Get("enum"); enum != "" {
			p.Enum = strings.Split(enum, ",")
		}
		props = append(props, p)
	}
	return props
}

func jsonField(f reflect.StructField) (name string, omitempty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = f.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func hasJSONName(f reflect.StructField) bool {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	return name != ""
}

// argKind describes how a function argument is supplied on a call.
type argKind int

const (
	argNamed argKind = iota
	argContext
	argReceiver
	argExpanded
)

type argSpec struct {
	kind argKind
	name string
	typ  reflect.Type
}

// signature is the analysed shape of a function backing a tool.
type signature struct {
	def          Definition
	args         []argSpec
	skipValidate bool
}

// Synthesize builds the definition of a tool backed by fn.
//
// context.Context parameters are supplied by the caller and not exposed. A single struct
// parameter without explicit names is flattened so its fields become the tool parameters.
// Calling Synthesize twice on the same function yields equal definitions.
func Synthesize(fn any, options ...Option) (Definition, error) {
	sig, err := synthesize(fn, false, options)
	if err != nil {
		return Definition{}, err
	}
	return sig.def, nil
}

// SynthesizeMethod is Synthesize for a method expression such as (*Order).Cancel.
// The receiver is not exposed.
func SynthesizeMethod(method any, options ...Option) (Definition, error) {
	sig, err := synthesize(method, true, options)
	if err != nil {
		return Definition{}, err
	}
	return sig.def, nil
}

func synthesize(fn any, hasReceiver bool, options []Option) (signature, error) {
	if !reflectx.IsFunction(fn) {
		return signature{}, ErrNotAFunction
	}
	var cfg config
	if err := opts.Apply(&cfg, options); err != nil {
		return signature{}, err
	}

	typ := reflect.TypeOf(fn)
	start := 0
	var args []argSpec
	if hasReceiver {
		if typ.NumIn() == 0 {
			return signature{}, fmt.Errorf("%w: method expression without receiver", ErrBadReceiver)
		}
		args = append(args, argSpec{kind: argReceiver, typ: typ.In(0)})
		start = 1
	}

	var exposed []int
	for i := start; i < typ.NumIn(); i++ {
		in := typ.In(i)
		if reflectx.IsContext(in) {
			args = append(args, argSpec{kind: argContext, typ: in})
			continue
		}
		exposed = append(exposed, len(args))
		args = append(args, argSpec{kind: argNamed, typ: in})
	}
	if typ.IsVariadic() {
		return signature{}, fmt.Errorf("variadic functions are not supported as tools")
	}

	def := Definition{Name: cfg.name, Description: cfg.description}
	if def.Name == "" {
		def.Name = reflectx.FunctionName(fn)
	}

	if len(exposed) == 1 && len(cfg.params) == 0 && isExpandable(args[exposed[0]].typ) {
		arg := &args[exposed[0]]
		arg.kind = argExpanded
		def.InputSchema.Parameters = parameterFor(arg.typ, make(map[reflect.Type]bool)).Properties
	} else {
		for n, idx := range exposed {
			name := fmt.Sprintf("arg%d", n)
			if n < len(cfg.params) && cfg.params[n] != "" {
				name = cfg.params[n]
			}
			args[idx].name = name
			def.InputSchema.Parameters = append(def.InputSchema.Parameters, ParameterFor(name, args[idx].typ))
		}
	}

	for i, p := range def.InputSchema.Parameters {
		if doc, ok := cfg.paramDocs[p.Name]; ok {
			def.InputSchema.Parameters[i].Description = doc
		}
	}
	return signature{def: def, args: args, skipValidate: cfg.skipValidate}, nil
}

func isExpandable(t reflect.Type) bool {
	t = reflectx.Indirect(t)
	return t.Kind() == reflect.Struct && !isStringLike(t)
}
