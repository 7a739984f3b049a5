package nasc

import (
	"reflect"

	"github.com/toutaio/toutago-nasc-injector/metadata"
	"github.com/toutaio/toutago-nasc-injector/registry"
)

// Provider describes how to produce an instance for a token.
type Provider = registry.Provider

// Factory produces an instance. It is called on every resolution that reaches
// it; results are never cached.
type Factory = registry.Factory

// Kind describes how a provider produces its instance.
type Kind = registry.Kind

// Provider kinds.
const (
	KindValue   = registry.KindValue
	KindFactory = registry.KindFactory
	KindClass   = registry.KindClass
)

// ValueProvider returns a provider that always yields v itself.
//
//	container.Register(nasc.ValueProvider(DSN, "postgres://localhost/app"))
func ValueProvider(provide Token, v any) *Provider {
	return registry.ValueProvider(provide, v)
}

// FactoryProvider returns a provider that calls fn on every resolution.
//
//	container.Register(nasc.FactoryProvider(nasc.Type[*Request](), func() (any, error) {
//	    return &Request{ID: uuid()}, nil
//	}))
func FactoryProvider(provide Token, fn Factory) *Provider {
	return registry.FactoryProvider(provide, fn)
}

// ClassProvider returns a provider that constructs class. The class must be
// injectable when the provider is registered.
//
//	container.Register(nasc.ClassProvider(nasc.Type[Logger](), reflect.TypeFor[*ConsoleLogger]()))
func ClassProvider(provide Token, class reflect.Type) *Provider {
	return registry.ClassProvider(provide, class)
}

// ClassOf returns a class provider that provides T by constructing T.
func ClassOf[T any]() *Provider {
	return registry.ClassProvider(Type[T](), reflect.TypeFor[T]())
}

// Bind returns a class provider that provides the interface I by
// constructing the injectable type T.
//
//	container.Register(nasc.Bind[Logger, *ConsoleLogger]())
func Bind[I, T any]() *Provider {
	return registry.ClassProvider(Type[I](), reflect.TypeFor[T]())
}

// InjectOption configures a constructor while it is marked injectable.
type InjectOption = metadata.Option

// Inject redirects constructor parameter index to tok instead of the
// parameter's declared type.
//
//	nasc.MustInjectable(NewTestService, nasc.Inject(0, TestToken))
func Inject(index int, tok Token) InjectOption {
	return metadata.Inject(index, tok)
}

// Injectable marks ctor injectable in metadata.Default, recording its ordered
// parameter types and overrides. It returns the constructed type.
//
// Supported constructor signatures:
//   - func(Dep1, Dep2, ...) T
//   - func(Dep1, Dep2, ...) (T, error)
func Injectable(ctor any, opts ...InjectOption) (reflect.Type, error) {
	return metadata.Default.Mark(ctor, opts...)
}

// MustInjectable is like Injectable but panics on error. It suits package
// level declarations:
//
//	var _ = nasc.MustInjectable(NewUserService)
func MustInjectable(ctor any, opts ...InjectOption) reflect.Type {
	typ, err := Injectable(ctor, opts...)
	if err != nil {
		panic(err)
	}
	return typ
}
