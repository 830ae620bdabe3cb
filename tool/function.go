package tool

import (
	"context"
	"encoding"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/pkg/slogx"
	"github.com/embabel/embabel-go/pkg/stdx"
	"github.com/goccy/go-json"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// FromFunc creates a tool backed by fn.
//
// fn may take a context.Context anywhere in its parameter list and may return nothing,
// a value, an error, or a value and an error. A returned error becomes an ErrorResult unless
// it is a control signal, which is returned as is.
func FromFunc(fn any, options ...Option) (Tool, error) {
	sig, err := synthesize(fn, false, options)
	if err != nil {
		return nil, err
	}
	return newFuncTool(sig, reflect.ValueOf(fn), reflect.Value{}), nil
}

// FromMethod creates a tool that calls the method expression method on receiver,
// for example FromMethod(order, (*Order).Cancel).
func FromMethod(receiver, method any, options ...Option) (Tool, error) {
	sig, err := synthesize(method, true, options)
	if err != nil {
		return nil, err
	}
	want := sig.args[0].typ
	if receiver == nil || !reflect.TypeOf(receiver).AssignableTo(want) {
		return nil, fmt.Errorf("%w: %T is not a %s", ErrBadReceiver, receiver, want)
	}
	return newFuncTool(sig, reflect.ValueOf(method), reflect.ValueOf(receiver)), nil
}

// MustFunc is FromFunc that panics on error.
func MustFunc(fn any, options ...Option) Tool {
	return stdx.Must1(FromFunc(fn, options...))
}

// MustMethod is FromMethod that panics on error.
func MustMethod(receiver, method any, options ...Option) Tool {
	return stdx.Must1(FromMethod(receiver, method, options...))
}

type funcTool struct {
	sig      signature
	fn       reflect.Value
	receiver reflect.Value

	once      sync.Once
	validator *sjsonschema.Schema
}

func newFuncTool(sig signature, fn, receiver reflect.Value) *funcTool {
	return &funcTool{sig: sig, fn: fn, receiver: receiver}
}

func (t *funcTool) Definition() Definition { return t.sig.def }

func (t *funcTool) Call(ctx context.Context, input string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	input = normalizeInput(input)
	if !gjson.Valid(input) {
		return Errorf("invalid JSON input for tool %s", t.sig.def.Name), nil
	}
	if v := t.compiled(ctx); v != nil {
		if err := validateInput(v, input); err != nil {
			return Errorf("invalid input for tool %s: %w", t.sig.def.Name, err), nil
		}
	}

	args, err := t.buildArgs(ctx, input)
	if err != nil {
		return Errorf("%w", err), nil
	}

	slog.DebugContext(ctx, "calling tool", slogx.Tool(t.sig.def.Name))
	return mapOutputs(t.fn.Call(args))
}

func (t *funcTool) compiled(ctx context.Context) *sjsonschema.Schema {
	if t.sig.skipValidate {
		return nil
	}
	t.once.Do(func() {
		v, err := t.sig.def.InputSchema.Compile()
		if err != nil {
			slog.WarnContext(ctx, "input schema not usable for validation", slogx.Tool(t.sig.def.Name), slogx.Error(err))
			return
		}
		t.validator = v
	})
	return t.validator
}

func (t *funcTool) buildArgs(ctx context.Context, input string) ([]reflect.Value, error) {
	fields := gjson.Parse(input).Map()
	args := make([]reflect.Value, 0, len(t.sig.args))
	for _, spec := range t.sig.args {
		switch spec.kind {
		case argContext:
			args = append(args, reflect.ValueOf(ctx))
		case argReceiver:
			args = append(args, t.receiver)
		case argExpanded:
			v, err := decodeValue(input, spec.typ)
			if err != nil {
				return nil, fmt.Errorf("invalid input: %w", err)
			}
			args = append(args, v)
		default:
			raw, ok := fields[spec.name]
			if !ok || raw.Type == gjson.Null {
				args = append(args, reflect.Zero(spec.typ))
				continue
			}
			v, err := decodeValue(raw.Raw, spec.typ)
			if err != nil {
				return nil, fmt.Errorf("invalid value for parameter %q: %w", spec.name, err)
			}
			args = append(args, v)
		}
	}
	return args, nil
}

// decodeValue unmarshals raw JSON into a new value of type t.
func decodeValue(raw string, t reflect.Type) (reflect.Value, error) {
	ptr := reflect.New(t)
	if err := json.Unmarshal([]byte(raw), ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

var errorType = reflect.TypeFor[error]()

func mapOutputs(out []reflect.Value) (Result, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if errv := out[n-1]; !errv.IsNil() {
			err := errv.Interface().(error)
			if core.IsControlSignal(err) {
				return nil, err
			}
			return Errorf("%w", err), nil
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return Text("done"), nil
	}
	return ResultFor(out[0].Interface()), nil
}

// ResultFor maps a returned value to a tool result.
// Results pass through, scalars become text and composite values become an artifact
// whose content is their JSON encoding.
func ResultFor(value any) Result {
	switch v := value.(type) {
	case nil:
		return Text("null")
	case Result:
		return v
	case string:
		return Text(v)
	case time.Time:
		return Text(v.Format(time.RFC3339))
	case bool:
		return Text(strconv.FormatBool(v))
	case int:
		return Text(strconv.Itoa(v))
	case int64:
		return Text(strconv.FormatInt(v, 10))
	case float64:
		return Text(strconv.FormatFloat(v, 'f', -1, 64))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return Text("null")
		}
		fallthrough
	case reflect.Struct, reflect.Array:
		b, err := json.Marshal(value)
		if err != nil {
			return Errorf("failed to encode result: %w", err)
		}
		return WithArtifact(string(b), value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Text(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Text(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		return Text(strconv.FormatFloat(rv.Float(), 'f', -1, 32))
	}

	switch v := value.(type) {
	case encoding.TextMarshaler:
		if b, err := v.MarshalText(); err == nil {
			return Text(string(b))
		}
	case fmt.Stringer:
		return Text(v.String())
	}
	return Text(fmt.Sprint(value))
}
