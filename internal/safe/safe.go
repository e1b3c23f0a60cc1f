// Package safe holds small defensive helpers used while wiring components
// together: nil checks on required collaborators, pointer-with-fallback
// accessors for optional config fields, and a panic-recovering goroutine
// launcher for the background loops (cmd/dungeonhubd's tick loop and
// per-connection write pump) that must not take the process down with them.
package safe

import (
	"fmt"
	"reflect"
)

// MustNotNil panics if v is a nil interface or a nil pointer/map/slice/chan
// wrapped in one. Used during constructor wiring to catch a missing
// collaborator immediately instead of nil-dereferencing deep in a handler.
func MustNotNil(v any, name string) {
	if v == nil {
		panic(fmt.Sprintf("%s must not be nil", name))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		if rv.IsNil() {
			panic(fmt.Sprintf("%s must not be nil", name))
		}
	}
}

func DefaultString(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func DefaultInt(i *int, fallback int) int {
	if i == nil {
		return fallback
	}
	return *i
}

// Go starts f in a new goroutine, recovering any panic so a single
// misbehaving background task doesn't crash the process. onPanic, if
// non-nil, is invoked with the recovered value (cmd/dungeonhubd wires this
// to obslog so recovered panics still show up as structured error logs).
func Go(f func(), onPanic func(r any)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if onPanic != nil {
					onPanic(r)
					return
				}
				fmt.Printf("panic recovered: %v\n", r)
			}
		}()
		f()
	}()
}
