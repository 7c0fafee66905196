// Package result provides a two-variant success/failure return value used by
// service operations in place of thrown errors for domain-level failures.
package result

// Result holds exactly one failure or success payload, never both.
//
// The zero value is a success holding the zero value of S. Accessing the
// variant a Result does not hold panics, so a failure cannot be silently
// consumed as a success.
type Result[F, S any] struct {
	failure F
	success S
	failed  bool
}

// Fail creates a Result holding a failure payload.
func Fail[F, S any](failure F) Result[F, S] {
	return Result[F, S]{failure: failure, failed: true}
}

// OK creates a Result holding a success payload.
func OK[F, S any](success S) Result[F, S] {
	return Result[F, S]{success: success}
}

// Failed reports whether the Result holds a failure.
func (r Result[F, S]) Failed() bool {
	return r.failed
}

// Failure returns the failure payload. It panics when the Result holds a
// success.
func (r Result[F, S]) Failure() F {
	if !r.failed {
		panic("result: failure accessed on a success result")
	}
	return r.failure
}

// Success returns the success payload. It panics when the Result holds a
// failure.
func (r Result[F, S]) Success() S {
	if r.failed {
		panic("result: success accessed on a failure result")
	}
	return r.success
}
