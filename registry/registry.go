// Package registry provides thread-safe storage and retrieval of provider descriptors.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/toutaio/toutago-nasc-injector/token"
)

// Factory produces an instance. It is invoked on every resolution that reaches it.
type Factory func() (any, error)

// Provider describes how to produce an instance for a token.
// Exactly one of value, factory or class is meaningful, as reported by Kind.
// Providers are immutable once built.
type Provider struct {
	provide token.Token
	kind    Kind
	value   any
	factory Factory
	class   reflect.Type
}

// ValueProvider returns a provider that always yields v itself.
func ValueProvider(provide token.Token, v any) *Provider {
	return &Provider{provide: provide, kind: KindValue, value: v}
}

// FactoryProvider returns a provider that calls fn on every resolution.
func FactoryProvider(provide token.Token, fn Factory) *Provider {
	return &Provider{provide: provide, kind: KindFactory, factory: fn}
}

// ClassProvider returns a provider that constructs class.
// class must be marked injectable before the provider is registered.
func ClassProvider(provide token.Token, class reflect.Type) *Provider {
	return &Provider{provide: provide, kind: KindClass, class: class}
}

// Provide returns the token this provider is registered under.
func (p *Provider) Provide() token.Token { return p.provide }

// Kind reports how the provider produces instances.
func (p *Provider) Kind() Kind { return p.kind }

// Value returns the stored value of a value provider.
func (p *Provider) Value() any { return p.value }

// Factory returns the producer of a factory provider.
func (p *Provider) Factory() Factory { return p.factory }

// Class returns the target type of a class provider.
func (p *Provider) Class() reflect.Type { return p.class }

// IsValue reports whether p is a value provider.
func (p *Provider) IsValue() bool { return p != nil && p.kind == KindValue }

// IsFactory reports whether p is a factory provider.
func (p *Provider) IsFactory() bool { return p != nil && p.kind == KindFactory }

// IsClass reports whether p is a class provider.
func (p *Provider) IsClass() bool { return p != nil && p.kind == KindClass }

// Target returns a short description of what the provider yields, for
// debugging output.
func (p *Provider) Target() string {
	switch p.kind {
	case KindValue:
		if p.value == nil {
			return "<nil>"
		}
		return reflect.TypeOf(p.value).String()
	case KindFactory:
		return "func() (any, error)"
	case KindClass:
		return token.Of(p.class).Name()
	default:
		return ""
	}
}

// Marker reports whether a type may be used as the target of a class provider.
type Marker interface {
	IsInjectable(typ reflect.Type) bool
}

// Registry provides thread-safe storage for providers.
// It uses a map keyed by token identity for O(1) lookup.
type Registry struct {
	mu        sync.RWMutex
	marker    Marker
	providers map[token.Token]*Provider
}

// New creates a new Registry that validates class providers against marker.
func New(marker Marker) *Registry {
	return &Registry{
		marker:    marker,
		providers: make(map[token.Token]*Provider),
	}
}

// Validate checks p without storing it.
//
// It returns:
//   - InvalidProviderError for a nil provider, nil token, nil factory or nil class
//   - NotInjectableError for a class provider whose class is not marked
func (r *Registry) Validate(p *Provider) error {
	if p == nil {
		return &InvalidProviderError{Reason: "provider cannot be nil"}
	}
	if p.provide == nil {
		return &InvalidProviderError{Reason: "provide token cannot be nil"}
	}
	if it, ok := p.provide.(*token.InjectionToken); ok && it == nil {
		return &InvalidProviderError{Reason: "provide token cannot be nil"}
	}
	if tt, ok := p.provide.(token.TypeToken); ok && tt.Type() == nil {
		return &InvalidProviderError{Reason: "provide token has no type"}
	}
	if !comparableToken(p.provide) {
		return &InvalidProviderError{
			Reason: fmt.Sprintf("token %s of type %T is not comparable", p.provide.Name(), p.provide),
		}
	}

	switch p.kind {
	case KindValue:
		return nil
	case KindFactory:
		if p.factory == nil {
			return &InvalidProviderError{
				Reason: fmt.Sprintf("factory for %s cannot be nil", p.provide.Name()),
			}
		}
		return nil
	case KindClass:
		if p.class == nil {
			return &InvalidProviderError{
				Reason: fmt.Sprintf("class for %s cannot be nil", p.provide.Name()),
			}
		}
		if r.marker == nil || !r.marker.IsInjectable(p.class) {
			return &NotInjectableError{
				Provide: p.provide.Name(),
				Class:   token.Of(p.class).Name(),
			}
		}
		return nil
	default:
		return &InvalidProviderError{
			Reason: fmt.Sprintf("unknown provider kind %q for %s", p.kind, p.provide.Name()),
		}
	}
}

// Register validates p and stores it under p.Provide(), replacing any provider
// previously registered for that token. It reports whether an existing entry
// was replaced. On error the registry is left unchanged.
//
// This method is goroutine-safe.
func (r *Registry) Register(p *Provider) (replaced bool, err error) {
	if err := r.Validate(p); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced = r.providers[p.provide]
	r.providers[p.provide] = p
	return replaced, nil
}

// Lookup retrieves the provider registered for tok.
//
// This method is goroutine-safe.
func (r *Registry) Lookup(tok token.Token) (*Provider, bool) {
	if tok == nil || !comparableToken(tok) {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[tok]
	return p, ok
}

// Has checks if a provider exists for tok.
//
// This method is goroutine-safe.
func (r *Registry) Has(tok token.Token) bool {
	_, ok := r.Lookup(tok)
	return ok
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// Providers returns all registered providers ordered by token name, then kind,
// then target.
func (r *Registry) Providers() []*Provider {
	r.mu.RLock()
	out := make([]*Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if an, bn := a.provide.Name(), b.provide.Name(); an != bn {
			return an < bn
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.Target() < b.Target()
	})
	return out
}

// comparableToken guards map access against token implementations that would
// panic as map keys.
func comparableToken(tok token.Token) bool {
	return reflect.TypeOf(tok).Comparable()
}

// NotInjectableError is returned when a class provider targets a type that has
// not been marked injectable.
type NotInjectableError struct {
	Provide string
	Class   string
}

func (e *NotInjectableError) Error() string {
	return fmt.Sprintf("cannot provide %s using class %s, %s is not injectable", e.Provide, e.Class, e.Class)
}

// InvalidProviderError is returned when a provider descriptor is malformed.
type InvalidProviderError struct {
	Reason string
}

func (e *InvalidProviderError) Error() string {
	return fmt.Sprintf("invalid provider: %s", e.Reason)
}
