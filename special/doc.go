// Package special lets action functions escape their declared result: run a sub-agent in
// their place, or ask the process to replan, without giving up a typed signature.
//
// Both travel as the error result of the action function. The action machinery calls
// Intercept exactly once around every invocation; replan signals pass through it untouched
// and reach the execution loop.
package special
