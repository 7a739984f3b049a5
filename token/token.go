// Package token defines the keys providers are registered and resolved under.
//
// There are two kinds of token:
//
//   - TypeToken identifies a Go type. Two type tokens are equal when their
//     types are identical, so they can be used directly as map keys.
//   - InjectionToken is an opaque named marker for values that have no useful
//     type identity of their own (strings, ints, interfaces shared by several
//     providers). Injection tokens are compared by pointer identity: two tokens
//     created with the same identifier are different tokens.
package token

import (
	"fmt"
	"reflect"
)

// Token identifies something that can be provided and resolved.
type Token interface {
	// Name returns the human readable name used in error messages.
	Name() string
}

// TypeToken identifies a Go type.
type TypeToken struct {
	typ reflect.Type
}

// Of returns the type token for t.
func Of(t reflect.Type) TypeToken {
	return TypeToken{typ: t}
}

// Type returns the type token for T.
//
//	token.Type[*UserService]()
//	token.Type[Logger]() // interface types work too
func Type[T any]() TypeToken {
	return TypeToken{typ: reflect.TypeFor[T]()}
}

// Type returns the underlying reflect.Type.
func (t TypeToken) Type() reflect.Type {
	return t.typ
}

// Name returns the type's string form, e.g. "*app.UserService".
func (t TypeToken) Name() string {
	if t.typ == nil {
		return "<nil>"
	}
	return t.typ.String()
}

func (t TypeToken) String() string {
	return t.Name()
}

// InjectionToken is an opaque token carrying a human readable identifier.
type InjectionToken struct {
	identifier string
}

// New creates a new injection token. Every call returns a distinct token.
func New(identifier string) *InjectionToken {
	return &InjectionToken{identifier: identifier}
}

// Identifier returns the identifier the token was created with.
func (t *InjectionToken) Identifier() string {
	if t == nil {
		return ""
	}
	return t.identifier
}

// Name returns the identifier.
func (t *InjectionToken) Name() string {
	if t == nil {
		return "<nil>"
	}
	return t.identifier
}

func (t *InjectionToken) String() string {
	return fmt.Sprintf("InjectionToken(%s)", t.Name())
}

// Name returns the display name of tok, tolerating nil.
func Name(tok Token) string {
	if tok == nil {
		return "<nil>"
	}
	return tok.Name()
}

// TypeOf reports the reflect.Type behind a type token.
// It returns false for injection tokens.
func TypeOf(tok Token) (reflect.Type, bool) {
	tt, ok := tok.(TypeToken)
	if !ok || tt.typ == nil {
		return nil, false
	}
	return tt.typ, true
}

// IsInjectionToken reports whether tok is an injection token.
func IsInjectionToken(tok Token) bool {
	_, ok := tok.(*InjectionToken)
	return ok
}
