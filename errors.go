package nasc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/toutaio/toutago-nasc-injector/registry"
)

var (
	// ErrArgumentType is wrapped when a resolved dependency cannot be passed
	// to the constructor parameter it was resolved for.
	ErrArgumentType = errors.New("resolved value is not assignable to parameter")

	// ErrTypeAssertion is wrapped when a generic helper receives an instance
	// of a different type than requested.
	ErrTypeAssertion = errors.New("resolved value has unexpected type")

	// ErrPanic is wrapped when a factory or constructor panics.
	ErrPanic = errors.New("panic during construction")
)

// NotInjectableError is returned when a class provider targets a type whose
// constructor was never marked injectable.
type NotInjectableError = registry.NotInjectableError

// InvalidProviderError is returned when a provider descriptor is malformed.
type InvalidProviderError = registry.InvalidProviderError

// NoProviderError is returned when nothing can produce the requested token.
//
// When the token is a type token with no registered provider and the type is
// not injectable, Cause holds the *NotInjectableError explaining why no
// implicit class provider could be used.
type NoProviderError struct {
	Token string
	Cause error
}

func (e *NoProviderError) Error() string {
	return fmt.Sprintf("no provider for type %s", e.Token)
}

// Unwrap returns the underlying cause error.
func (e *NoProviderError) Unwrap() error {
	return e.Cause
}

// RecursiveDependencyError indicates a class that (directly or transitively)
// depends on itself. Type is the class that was re-entered and Index the
// constructor parameter it was resolving when that happened.
type RecursiveDependencyError struct {
	Type  string
	Index int
	Path  []string
}

func (e *RecursiveDependencyError) Error() string {
	msg := fmt.Sprintf("recursive dependency detected in constructor for type %s with parameter at index %d", e.Type, e.Index)
	if len(e.Path) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (%s)", msg, strings.Join(e.Path, " -> "))
}

// ResolutionError is returned when instance resolution fails for a reason
// other than a missing provider or a cycle: a factory or constructor error, a
// panic, or a dependency of the wrong type.
type ResolutionError struct {
	Token   string
	Cause   error
	Context string
}

func (e *ResolutionError) Error() string {
	tokenStr := "unknown"
	if e.Token != "" {
		tokenStr = e.Token
	}

	contextStr := ""
	if e.Context != "" {
		contextStr = fmt.Sprintf(": %s", e.Context)
	}

	causeStr := ""
	if e.Cause != nil {
		causeStr = fmt.Sprintf(": %v", e.Cause)
	}

	return fmt.Sprintf("failed to resolve %s%s%s", tokenStr, contextStr, causeStr)
}

// Unwrap returns the underlying cause error.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}
