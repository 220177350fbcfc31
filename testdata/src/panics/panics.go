package panics

import "log"

//oblicheck:entrypoint
func mustPositive(x int) int { // want `mustPositive directly contains 1 unjustified panics-relevant operation`
	if x <= 0 {
		panic("must be positive")
	}
	return x
}

//oblicheck:entrypoint
func mustNonNil(v any) any {
	if v == nil {
		// Panics: callers construct v unconditionally
		panic("nil value")
	}
	return v
}

//oblicheck:entrypoint
func fatalLog(msg string) { // want `fatalLog directly contains 1 unjustified panics-relevant operation`
	log.Panicf("bad input: %s", msg)
}

// reject documents its panic.
//
// # Panics
//   - positive: x must be positive
func reject(x int) {
	if x <= 0 {
		panic("non-positive")
	}
}

//oblicheck:entrypoint
func callReject(x int) { // want `callReject directly contains 1 unjustified obligated call`
	reject(x)
}

//oblicheck:entrypoint
func callRejectJustified(x int) {
	// Panics: x comes from the validated config
	reject(x)
}
