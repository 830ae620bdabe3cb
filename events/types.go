package events

import (
	"time"

	"github.com/embabel/embabel-go/pkg/uuidx"
	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/tidwall/sjson"
)

// Event is implemented by every event published to a Listener.
type Event interface {
	// Kind returns the stable type discriminator of the event.
	Kind() string
	// Meta returns the identifying metadata of the event.
	Meta() Metadata
}

// Metadata is shared by all events.
type Metadata struct {
	ID        string          `json:"id"`
	ProcessID string          `json:"process_id,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp"`
}

// Stamp creates fresh metadata for an event raised on behalf of the given process.
func Stamp(processID string) Metadata {
	return Metadata{
		ID:        uuidx.NewString(),
		ProcessID: processID,
		Timestamp: strfmt.DateTime(time.Now()),
	}
}

// ObjectBound is published when a value is bound into a blackboard by name.
type ObjectBound struct {
	Metadata
	Name string `json:"name"`
	Type string `json:"value_type"`
}

// ToolCalled is published after a tool call returns a result.
type ToolCalled struct {
	Metadata
	Tool     string        `json:"tool"`
	Input    string        `json:"input"`
	Result   string        `json:"result"`
	IsError  bool          `json:"is_error"`
	Duration time.Duration `json:"duration"`
}

// DomainToolsBound is published when an artifact binds a domain tool source.
type DomainToolsBound struct {
	Metadata
	Type  string   `json:"value_type"`
	Tools []string `json:"tools"`
}

// StateTransitioned is published when a state holder changes state.
type StateTransitioned struct {
	Metadata
	From string `json:"from"`
	To   string `json:"to"`
}

// ReplanRequested is published when a tool signals that the process should replan.
type ReplanRequested struct {
	Metadata
	Tool   string `json:"tool"`
	Reason string `json:"reason"`
}

// SubProcessStarted is published when a sub-agent process is spawned.
type SubProcessStarted struct {
	Metadata
	ParentID string `json:"parent_id"`
	Agent    string `json:"agent"`
}

// SubProcessCompleted is published when a sub-agent process returns.
type SubProcessCompleted struct {
	Metadata
	ParentID string `json:"parent_id"`
	Agent    string `json:"agent"`
	Err      error  `json:"-"`
}

func (e ObjectBound) Kind() string         { return "object_bound" }
func (e ToolCalled) Kind() string          { return "tool_called" }
func (e DomainToolsBound) Kind() string    { return "domain_tools_bound" }
func (e StateTransitioned) Kind() string   { return "state_transitioned" }
func (e ReplanRequested) Kind() string     { return "replan_requested" }
func (e SubProcessStarted) Kind() string   { return "subprocess_started" }
func (e SubProcessCompleted) Kind() string { return "subprocess_completed" }

func (e ObjectBound) Meta() Metadata         { return e.Metadata }
func (e ToolCalled) Meta() Metadata          { return e.Metadata }
func (e DomainToolsBound) Meta() Metadata    { return e.Metadata }
func (e StateTransitioned) Meta() Metadata   { return e.Metadata }
func (e ReplanRequested) Meta() Metadata     { return e.Metadata }
func (e SubProcessStarted) Meta() Metadata   { return e.Metadata }
func (e SubProcessCompleted) Meta() Metadata { return e.Metadata }

func (e ObjectBound) MarshalJSON() ([]byte, error) {
	type alias ObjectBound
	return marshalTyped(e.Kind(), alias(e))
}

func (e ToolCalled) MarshalJSON() ([]byte, error) {
	type alias ToolCalled
	return marshalTyped(e.Kind(), alias(e))
}

func (e DomainToolsBound) MarshalJSON() ([]byte, error) {
	type alias DomainToolsBound
	return marshalTyped(e.Kind(), alias(e))
}

func (e StateTransitioned) MarshalJSON() ([]byte, error) {
	type alias StateTransitioned
	return marshalTyped(e.Kind(), alias(e))
}

func (e ReplanRequested) MarshalJSON() ([]byte, error) {
	type alias ReplanRequested
	return marshalTyped(e.Kind(), alias(e))
}

func (e SubProcessStarted) MarshalJSON() ([]byte, error) {
	type alias SubProcessStarted
	return marshalTyped(e.Kind(), alias(e))
}

func (e SubProcessCompleted) MarshalJSON() ([]byte, error) {
	type alias SubProcessCompleted
	b, err := marshalTyped(e.Kind(), alias(e))
	if err != nil || e.Err == nil {
		return b, err
	}
	return sjson.SetBytes(b, "error", e.Err.Error())
}

// marshalTyped encodes v and adds the "type" discriminator.
func marshalTyped(kind string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(b, "type", kind)
}
