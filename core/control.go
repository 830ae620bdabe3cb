package core

import (
	"errors"
	"fmt"
)

// ErrNoProcess is returned when an operation needs an agent process and none is available.
var ErrNoProcess = errors.New("no agent process available")

// ErrNoRunner is returned when a sub-process is requested for an agent that cannot run.
var ErrNoRunner = errors.New("agent has no runner")

// ControlSignal marks errors that steer the execution loop instead of reporting a failure.
// They travel through tools and adapters untouched and are interpreted by the execution loop.
type ControlSignal interface {
	error
	ControlSignal()
}

// IsControlSignal reports whether err is or wraps a ControlSignal.
func IsControlSignal(err error) bool {
	var cs ControlSignal
	return errors.As(err, &cs)
}

// ReplanDecision asks the process to replan after applying Update to its blackboard.
type ReplanDecision struct {
	Reason string
	Update BlackboardUpdater
}

// ReplanRequestedError signals that the current plan must be abandoned and recomputed.
// The blackboard update has already been applied by the time the error is returned.
type ReplanRequestedError struct {
	Reason            string
	BlackboardUpdater BlackboardUpdater
}

func (e *ReplanRequestedError) Error() string {
	return fmt.Sprintf("replan requested: %s", e.Reason)
}

func (*ReplanRequestedError) ControlSignal() {}

// AsReplanRequest extracts a replan request from err.
func AsReplanRequest(err error) (*ReplanRequestedError, bool) {
	var rr *ReplanRequestedError
	if errors.As(err, &rr) {
		return rr, true
	}
	return nil, false
}
