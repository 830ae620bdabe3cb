/*
Package tool turns Go functions and methods into LLM-callable tools and provides the
decorators that control how those tools are exposed.

# Key Concepts

 1. Tool
    A Tool has a Definition (name, description, input schema) and a Call method taking raw
    JSON input. Expected failures are returned as an ErrorResult. The error return is kept for
    control signals such as *core.ReplanRequestedError, which must reach the execution loop.

 2. Input Schema
    Schemas are synthesized from function signatures. Integers, floats, booleans and strings
    map to their JSON schema types, structs expand into nested properties and slices always
    carry the schema of their elements:

    def, _ := Synthesize(func(ratings []float64) float64 { ... }, Params("ratings"))
    js, _ := def.InputSchema.ToJSONSchema()
    // {"properties":{"ratings":{"items":{"type":"number"},"type":"array"}},...}

 3. Results
    Text, Error and WithArtifact build the three result kinds. Only artifact results carry a
    typed value, and only that value is eligible for sinking or domain tool binding.

# Usage Examples

Function tool:

	func lookupOrder(ctx context.Context, id string) (*Order, error) { ... }

	t := MustFunc(lookupOrder,
		Name("lookupOrder"),
		Description("Finds an order by id"),
		Params("id"),
	)
	res, err := t.Call(ctx, `{"id": "42"}`)

Method tool on a bound receiver:

	t := MustMethod(order, (*Order).Cancel, Description("Cancels the order"))

Capturing artifacts on the blackboard:

	t = SinkArtifacts[*Order](t, BlackboardSink("order"))

Replanning when a result needs attention:

	t = ReplanWhen(t, func(o *Order) bool { return o.Total > 100 }, "order needs approval", nil)

Progressive disclosure:

	facade, _ := MatryoshkaByCategory("orders", "Order operations", map[string][]Tool{
		"read":  {lookup, list},
		"write": {cancel},
	})
	set, _ := NewToolSet(facade)
	res, _ := facade.Call(ctx, `{"category": "read"}`)
	if d, ok := ArtifactOf(res); ok {
		_ = set.ApplyDisclosure(d.(Disclosure))
	}
	fmt.Println(FormatTree("agent", set.Tools()))

# Thread Safety

Function tools, decorators and ToolSet are safe for concurrent use. Whether a call is safe to
run concurrently with another depends on the function behind it.
*/
package tool
