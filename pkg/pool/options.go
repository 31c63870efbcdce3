package pool

// useOptions holds per-call Use behavior.
type useOptions struct {
	awaitDisposal bool
}

// UseOption adjusts the behavior of a single Use call.
type UseOption func(*useOptions)

// WithAwaitDisposal makes Use block until Dispose has completed if the
// borrow ends in retirement, propagating the disposal error to the caller
// instead of routing it through the error log.
func WithAwaitDisposal() UseOption {
	return func(o *useOptions) {
		o.awaitDisposal = true
	}
}
