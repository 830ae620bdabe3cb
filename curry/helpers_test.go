package curry

import "github.com/embabel/embabel-go/tool"

func isError(r tool.Result) bool {
	return tool.IsError(r)
}
