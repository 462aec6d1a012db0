package recovery

import (
	"fmt"
	"runtime/debug"
)

// SafeExecute executes a function with panic recovery.
// If the function panics, the panic is logged and returned as an error so the
// recovery policy can treat it like any other turn failure.
func SafeExecute(logger Logger, operation string, fn func() error) error {
	var panicErr error

	func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				if logger != nil {
					logger.Error("panic_recovered",
						"operation", operation,
						"panic", r,
						"stack", stack,
					)
				}
				panicErr = fmt.Errorf("panic in %s: %v", operation, r)
			}
		}()
		panicErr = fn()
	}()

	return panicErr
}

// SafeExecuteWithResult executes a function with panic recovery and returns
// both result and error.
func SafeExecuteWithResult[T any](logger Logger, operation string, fn func() (T, error)) (T, error) {
	var result T
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				if logger != nil {
					logger.Error("panic_recovered",
						"operation", operation,
						"panic", r,
						"stack", stack,
					)
				}
				err = fmt.Errorf("panic in %s: %v", operation, r)
			}
		}()
		result, err = fn()
	}()

	return result, err
}
