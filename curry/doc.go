// Package curry exposes actions as tools that only ask for the inputs the blackboard
// cannot already provide.
//
// Currying is decided once, when the tool is built. A tool built before a satisfying value
// reaches the blackboard keeps asking for it; build a new tool to pick up the change.
package curry
