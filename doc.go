/*
Package embabel is the tool resolution and execution core of an agent framework.

It turns Go functions and methods into tools an LLM can call, decorates those tools with
process-aware behavior, and lets actions escape their typed signature when they need to run a
sub-agent or ask for a new plan.

# Packages

  - tool: tool definitions, schema synthesis from Go signatures, function-backed tools,
    artifact sinking, replanning, Matryoshka progressive disclosure and tool sets
  - tool/agentic: tools gated by the current state of a state machine
  - curry: actions exposed as tools whose parameters are the inputs still missing from the
    blackboard
  - domain: methods of application objects that become tools once such an object appears
  - special: sub-agent and replan returns from action functions
  - action: function-backed actions that intercept special returns
  - core: blackboard, actions, agent processes and control signals
  - events: typed events published by processes, trackers and state holders

# Basic Usage

	lookup := tool.MustFunc(lookupOrder,
		tool.Description("Look up an order by id"),
		tool.Params("id"),
	)

	tracker, _ := domain.NewTracker(domain.WithDomainToolsFrom(orderDomainTools))
	set := &tool.ToolSet{}
	watched := tracker.Watch(lookup, set)
	set.Add(watched)
	for _, p := range tracker.Placeholders() {
		set.Add(p)
	}

	proc, _ := core.NewProcess()
	ctx := core.WithProcess(context.Background(), proc)
	result, err := watched.Call(ctx, `{"id":"42"}`)

Once lookupOrder returns an *Order, the order's own tools replace the placeholders in the set.

The cmd/embabel-tool-gen generator writes domain registrations such as orderDomainTools
from methods annotated with an embabel:llmTool comment.
*/
package embabel
