package metadata

import (
	"fmt"
	"reflect"
)

// InvalidConstructorError is returned when Mark is given something that cannot
// serve as a constructor.
type InvalidConstructorError struct {
	Reason string
}

func (e *InvalidConstructorError) Error() string {
	return fmt.Sprintf("invalid constructor: %s", e.Reason)
}

// ParameterIndexError is returned when an override names a parameter the
// constructor does not have.
type ParameterIndexError struct {
	Type      reflect.Type
	Index     int
	NumParams int
}

func (e *ParameterIndexError) Error() string {
	return fmt.Sprintf("constructor for %v has %d parameter(s), no parameter at index %d", e.Type, e.NumParams, e.Index)
}

// NotMarkedError is returned by SetOverride for a type that was never marked.
type NotMarkedError struct {
	Type reflect.Type
}

func (e *NotMarkedError) Error() string {
	return fmt.Sprintf("type %v is not marked injectable", e.Type)
}
