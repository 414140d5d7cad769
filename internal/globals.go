package internal

import "time"

// NativeFunc is the host side of a native function. A returned error aborts
// the program as a runtime error at the call site.
type NativeFunc func(arguments []Value) (Value, error)

var nativeNames = []string{"clock"}

func defineGlobals(e *env) {
	defineClock(e)
}

func defineClock(e *env) {
	e.define("clock", &nativeFn{
		name:       "clock",
		arityValue: 0,
		callFn: func(arguments []Value) (Value, error) {
			return float64(time.Now().UnixNano()) / float64(time.Second), nil
		},
	})
}
