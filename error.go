package rda

import (
	"fmt"
	"reflect"
)

// TypeError is the error returned when a type cannot be represented
// as an RDA tree.
type TypeError struct {
	// Type is the name of the type that caused the error.
	Type string
	// Reason is an explanation of why the type isn't representable by
	// RDA.
	Reason error
}

func (e TypeError) Error() string {
	return fmt.Sprintf("rda cannot represent %s: %s", e.Type, e.Reason)
}

func (e TypeError) Unwrap() error {
	return e.Reason
}

func typeErr(t reflect.Type, reason string, args ...any) error {
	ts := ""
	if t != nil {
		ts = t.String()
	}
	return TypeError{ts, fmt.Errorf(reason, args...)}
}

// CapacityError is the error returned when a tree needs more nesting
// levels than its delimiter table can provide.
//
// A CapacityError is not transient: the same shape of data will fail
// again until its nesting depth is reduced.
type CapacityError struct {
	// Levels is the number of nesting levels that was requested.
	Levels int
	// Max is the maximum number of levels the table supports.
	Max int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("rda nesting limit reached: %d levels requested, at most %d available", e.Levels, e.Max)
}
