// Package action turns Go functions into planner-visible actions.
//
//	summarize := action.Must("docs.summarize", func(ctx context.Context, doc *Document) (*Summary, error) {
//		if doc.Long() {
//			return special.RunSubagent[*Summary](summarizer)
//		}
//		return doc.Summary(), nil
//	}, action.Description("Summarize a document"))
//
// Combined with curry.NewTool the same function becomes a tool whose parameters are the
// inputs that are not on the blackboard yet.
package action
