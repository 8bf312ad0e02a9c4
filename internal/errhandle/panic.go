package errhandle

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

// PanicError carries a recovered panic value that was not an error.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// errorFromPanic keeps error panic values as they are so identity checks on
// the original error still hold.
func errorFromPanic(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r, Stack: debug.Stack()}
}

// sameError reports whether a and b are the same error value.
func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
