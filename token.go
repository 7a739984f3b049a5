package nasc

import "github.com/toutaio/toutago-nasc-injector/token"

// Token identifies something that can be provided and resolved.
type Token = token.Token

// InjectionToken is an opaque named token for values without a useful type
// identity, such as configuration strings or one of several implementations
// of an interface.
type InjectionToken = token.InjectionToken

// Type returns the type token for T.
//
//	container.Resolve(nasc.Type[*UserService]())
func Type[T any]() Token {
	return token.Type[T]()
}

// NewInjectionToken creates a new injection token. Tokens are compared by
// identity, so declare them once as package variables:
//
//	var DSN = nasc.NewInjectionToken("dsn")
func NewInjectionToken(identifier string) *InjectionToken {
	return token.New(identifier)
}
