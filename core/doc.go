// Package core holds the collaborators the tool layer runs against: the blackboard,
// actions and their input bindings, the agent process and the control signals that
// escape ordinary tool results.
//
// A process is carried through tool calls on the context:
//
//	proc := core.NewProcess(core.WithListener(listener))
//	ctx = core.WithProcess(ctx, proc)
//	res, err := someTool.Call(ctx, `{"orderId": "42"}`)
//
// Control signals such as *ReplanRequestedError are returned as errors and must be
// checked with errors.As by the execution loop. Everything else is an ordinary failure.
package core
