package nasc

import (
	"fmt"
	"reflect"

	"github.com/toutaio/toutago-nasc-injector/token"
)

// Resolve resolves tok from c and asserts the result to T.
// A nil instance (from a nil value provider) yields the zero T.
//
//	service, err := nasc.Resolve[*UserService](container, nasc.Type[*UserService]())
func Resolve[T any](c *Container, tok Token) (T, error) {
	var zero T

	instance, err := c.Resolve(tok)
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, &ResolutionError{
			Token:   token.Name(tok),
			Context: fmt.Sprintf("expected %v, got %T", reflect.TypeFor[T](), instance),
			Cause:   ErrTypeAssertion,
		}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, tok Token) T {
	typed, err := Resolve[T](c, tok)
	if err != nil {
		panic(err)
	}
	return typed
}

// Get resolves the type token for T.
//
//	logger, err := nasc.Get[Logger](container)
func Get[T any](c *Container) (T, error) {
	return Resolve[T](c, Type[T]())
}
