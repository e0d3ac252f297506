// Package failfast panics on programming errors detected while wiring
// the process. It is not meant for request-time validation.
package failfast

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

// Err panics if err != nil, attaching the stack
func Err(err error) {
	if err != nil {
		panic(fmt.Errorf("fail-fast: %w\n%s", err, debug.Stack()))
	}
}

// If panics unless condition holds
func If(condition bool, message string, args ...interface{}) {
	if !condition {
		panic(fmt.Errorf("fail-fast: "+message, args...))
	}
}

// NotNil panics if v is nil, including typed nil pointers, funcs,
// maps and interfaces holding them
func NotNil(v interface{}, name string) {
	if v == nil {
		panic(fmt.Errorf("fail-fast: %s is nil", name))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Interface, reflect.Chan:
		if rv.IsNil() {
			panic(fmt.Errorf("fail-fast: %s is nil", name))
		}
	}
}

// NotEmpty panics if s is empty
func NotEmpty(s, name string) {
	if s == "" {
		panic(fmt.Errorf("fail-fast: %s is empty", name))
	}
}
