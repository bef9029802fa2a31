package common

import "fmt"

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Precondition panics with a formatted message when ok is false and Debug is enabled.
// Release builds return ok so the caller can fall back to a bounded behaviour.
//
// Parameters:
//   - ok: the condition that must hold
//   - format: message format used for the panic
//   - args: format arguments
//
// Returns:
//   - bool: ok, unchanged
func Precondition(ok bool, format string, args ...any) bool {
	if !ok && Debug {
		panic(fmt.Sprintf("precondition violated: "+format, args...))
	}
	return ok
}
