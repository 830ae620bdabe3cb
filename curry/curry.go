package curry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/embabel/embabel-go/core"
	"github.com/embabel/embabel-go/pkg/slogx"
	"github.com/embabel/embabel-go/tool"
	"github.com/go-openapi/swag"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RequiredInputs returns the inputs of action that nothing on bb can satisfy yet.
// An input counts as satisfied when a bound value or an object on the blackboard is
// assignable to its type. The result reflects bb at the time of the call only.
func RequiredInputs(action core.Action, bb core.Blackboard) []core.IoBinding {
	inputs := action.Inputs()
	positions := requiredPositions(inputs, bb)
	required := make([]core.IoBinding, 0, len(positions))
	for _, i := range positions {
		required = append(required, inputs[i])
	}
	return required
}

func requiredPositions(inputs []core.IoBinding, bb core.Blackboard) []int {
	available := candidates(bb)
	var positions []int
	for i, in := range inputs {
		if !slices.ContainsFunc(available, in.SatisfiedBy) {
			positions = append(positions, i)
		}
	}
	return positions
}

func candidates(bb core.Blackboard) []any {
	if bb == nil {
		return nil
	}
	var out []any
	add := func(v any) {
		if v != nil && !slices.ContainsFunc(out, func(o any) bool { return core.SameObject(o, v) }) {
			out = append(out, v)
		}
	}
	for _, v := range bb.Values() {
		add(v)
	}
	for _, o := range bb.Objects() {
		add(o)
	}
	return out
}

type param struct {
	name    string
	input   int
	binding core.IoBinding
}

// ActionTool exposes an action as a tool whose parameters are the inputs still missing from
// the blackboard it was built against.
type ActionTool struct {
	action core.Action
	def    tool.Definition
	params []param
}

var _ tool.Tool = (*ActionTool)(nil)

// NewTool curries action against bb.
//
// Inputs with an explicit name keep it. Inputs with the default name are named after their
// type in lower camel case. Clashing names get a numeric suffix starting at 2.
func NewTool(action core.Action, bb core.Blackboard) *ActionTool {
	inputs := action.Inputs()
	positions := requiredPositions(inputs, bb)
	t := &ActionTool{
		action: action,
		def: tool.Definition{
			Name:        action.ShortName(),
			Description: action.Description(),
		},
	}

	used := make(map[string]bool, len(positions))
	for _, i := range positions {
		in := inputs[i]
		name := uniqueName(parameterName(in), used)
		used[name] = true
		t.params = append(t.params, param{name: name, input: i, binding: in})

		p := tool.ParameterFor(name, in.Type)
		p.Description = in.TypeName()
		t.def.InputSchema.Parameters = append(t.def.InputSchema.Parameters, p)
	}
	return t
}

func parameterName(in core.IoBinding) string {
	if !in.IsDefault() {
		return in.Name
	}
	return swag.ToJSONName(core.SimpleName(in.Type))
}

func uniqueName(base string, used map[string]bool) string {
	if !used[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + strconv.Itoa(i)
		if !used[candidate] {
			return candidate
		}
	}
}

func (t *ActionTool) Definition() tool.Definition { return t.def }

// Action returns the curried action.
func (t *ActionTool) Action() core.Action { return t.action }

// Required returns the inputs the tool still asks for, in parameter order.
func (t *ActionTool) Required() []core.IoBinding {
	out := make([]core.IoBinding, len(t.params))
	for i, p := range t.params {
		out[i] = p.binding
	}
	return out
}

// Binding maps a tool parameter name back to the action input it feeds.
func (t *ActionTool) Binding(name string) (core.IoBinding, bool) {
	for _, p := range t.params {
		if p.name == name {
			return p.binding, true
		}
	}
	return core.IoBinding{}, false
}

type converted struct {
	name  string
	input int
	value any
}

func (t *ActionTool) Call(ctx context.Context, input string) (tool.Result, error) {
	proc, ok := core.ProcessFrom(ctx)
	if !ok {
		return tool.Errorf("cannot run action %s: %v", t.action.Name(), core.ErrNoProcess), nil
	}

	if strings.TrimSpace(input) == "" {
		input = "{}"
	}
	parsed := gjson.Parse(input)
	if !gjson.Valid(input) || !parsed.IsObject() {
		return tool.Errorf("invalid JSON input for action %s: expected an object", t.action.Name()), nil
	}

	fields := parsed.Map()
	values := make([]converted, 0, len(t.params))
	for _, p := range t.params {
		raw, ok := fields[p.name]
		if !ok || raw.Type == gjson.Null {
			continue
		}
		v, err := convert(raw, p.binding.Type)
		if err != nil {
			return tool.Errorf("cannot convert parameter %s to %s: %v", p.name, p.binding.TypeName(), err), nil
		}
		values = append(values, converted{name: p.binding.Name, input: p.input, value: v})
	}

	byInput := make(map[int]any, len(values))
	for _, v := range values {
		proc.Bind(ctx, v.name, v.value)
		byInput[v.input] = v.value
	}
	before := proc.LastResult()

	slog.DebugContext(ctx, "executing curried action", slogx.Tool(t.def.Name), slog.Int("bound", len(values)))
	status, err := t.action.Execute(core.WithInputValues(ctx, t.action.Name(), byInput), proc.ProcessContext())
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "curried action finished", slogx.Tool(t.def.Name), slogx.Stringer("status", status))

	switch status.Code {
	case core.StatusSucceeded:
		var result any
		if last := proc.LastResult(); !core.SameObject(last, before) {
			result = last
		}
		return summarize(t.action.Name(), status, result), nil
	case core.StatusFailed:
		if status.Err != nil {
			return tool.Errorf("action %s failed: %w", t.action.Name(), status.Err), nil
		}
		return tool.Errorf("action %s failed", t.action.Name()), nil
	default:
		return tool.Textf("action %s finished with status %s", t.action.Name(), status.Code), nil
	}
}

// convert passes assignable values through and decodes everything else into a value of type t.
func convert(raw gjson.Result, t reflect.Type) (any, error) {
	if v := raw.Value(); core.IsAssignable(v, t) {
		return v, nil
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal([]byte(raw.Raw), ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func summarize(action string, status core.ActionStatus, result any) tool.Result {
	content, _ := sjson.Set("", "action", action)
	content, _ = sjson.Set(content, "status", string(status.Code))
	if result != nil {
		if b, err := json.MarshalNoEscape(result); err == nil {
			content, _ = sjson.SetRaw(content, "result", string(b))
		} else {
			content, _ = sjson.Set(content, "result", fmt.Sprint(result))
		}
	}
	return tool.Text(content)
}

// Tools curries every action against bb. Tools needing the fewest inputs come first;
// ties keep the order of actions.
func Tools(actions []core.Action, bb core.Blackboard) []tool.Tool {
	curried := make([]*ActionTool, len(actions))
	for i, a := range actions {
		curried[i] = NewTool(a, bb)
	}
	slices.SortStableFunc(curried, func(a, b *ActionTool) int {
		return len(a.params) - len(b.params)
	})

	out := make([]tool.Tool, len(curried))
	for i, c := range curried {
		out[i] = c
	}
	return out
}
