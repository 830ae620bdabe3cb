// Package agentic gates tools on the state of a state machine.
//
// A StateHolder keeps the current state. State bound tools only run in their state and may
// move the holder on; global tools run in every state. Descriptions are annotated so an LLM can
// pick valid tools without trying them:
//
//	holder := agentic.NewStateHolder(Draft)
//	tools := agentic.NewStateTools(holder).
//		InState(Draft, submit, agentic.TransitionsTo(Review)).
//		InState(Review, approve, agentic.TransitionsTo(Done)).
//		Global(status).
//		Tools()
package agentic
