// Package events provides the observation sink for the tool execution core.
//
// Processes, domain tool trackers, state holders and observed tools publish typed
// events to a Listener. Listeners are deliberately small: a single OnEvent method
// that must not block. Compose several with Composite, log them with Logging and
// capture them in tests with Recorder.
//
// Event hierarchy:
//   - Event: base interface, every event carries Metadata (id, process id, timestamp)
//     ├── ObjectBound: a value was bound into a process blackboard
//     ├── ToolCalled: a tool call finished (successfully or with an error result)
//     ├── DomainToolsBound: an artifact promoted placeholder domain tools to live tools
//     ├── StateTransitioned: a state holder moved to a new state
//     ├── ReplanRequested: a tool asked the execution context to replan
//     ├── SubProcessStarted: a sub-agent process was spawned
//     └── SubProcessCompleted: a sub-agent process returned
//
// Each event marshals to JSON with a "type" discriminator:
//
//	data, _ := json.Marshal(events.StateTransitioned{From: "draft", To: "review"})
//	// {"type":"state_transitioned","from":"draft","to":"review",...}
package events
