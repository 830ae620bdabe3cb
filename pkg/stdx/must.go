package stdx

// Must1 returns v, or panics with err when err is not nil.
//
// It is meant for package-level declarations that are known to be valid, for example
//
//	var cancelTool = stdx.Must1(tool.FromFunc(cancel, tool.Params("orderId")))
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Zero returns the zero value of T.
func Zero[T any]() T {
	var zero T
	return zero
}
