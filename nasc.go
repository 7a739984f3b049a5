package nasc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/toutaio/toutago-nasc-injector/metadata"
	"github.com/toutaio/toutago-nasc-injector/registry"
	"github.com/toutaio/toutago-nasc-injector/token"
)

const tracerName = "github.com/toutaio/toutago-nasc-injector"

// Container is the dependency injection container.
// It holds provider registrations and resolves tokens into instances.
type Container struct {
	registry *registry.Registry
	metadata *metadata.Table
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *Metrics

	mu      sync.Mutex
	modules []*moduleEntry
	pending map[Module]struct{}
	bootMu  sync.Mutex
}

// New creates a new container.
// Options can be provided to configure the container behavior.
//
// Example:
//
//	container := nasc.New()
//	// or with options:
//	container := nasc.New(nasc.WithLogger(logger), nasc.WithMetadata(table))
func New(options ...Option) *Container {
	c := &Container{
		metadata: metadata.Default,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   noop.NewTracerProvider().Tracer(tracerName),
	}

	for _, opt := range options {
		if err := opt(c); err != nil {
			panic(fmt.Sprintf("failed to apply option: %v", err))
		}
	}

	// Built after the options so WithMetadata decides what counts as injectable.
	c.registry = registry.New(c.metadata)
	return c
}

// Register stores provider under its token, replacing any previous provider
// for the same token.
//
// Example:
//
//	container.Register(nasc.ValueProvider(DSN, "postgres://localhost/app"))
//	container.Register(nasc.ClassProvider(nasc.Type[Repository](), reflect.TypeFor[*PGRepository]()))
//
// Returns an error if:
//   - The provider is malformed (InvalidProviderError)
//   - It is a class provider whose class is not injectable (NotInjectableError)
//
// A failed registration leaves the container unchanged.
func (c *Container) Register(provider *Provider) error {
	replaced, err := c.registry.Register(provider)
	if err != nil {
		c.logger.Debug("provider rejected", slog.String("error", err.Error()))
		return err
	}

	c.metrics.observeRegistration(provider.Kind())
	c.logger.Debug("provider registered",
		slog.String("token", provider.Provide().Name()),
		slog.String("kind", provider.Kind().String()),
		slog.String("target", provider.Target()),
		slog.Bool("replaced", replaced),
	)
	return nil
}

// RegisterAll registers providers in order and stops at the first error.
func (c *Container) RegisterAll(providers ...*Provider) error {
	for _, p := range providers {
		if err := c.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like RegisterAll but panics on error.
// It is meant for composition roots where a bad registration is a programming error.
func (c *Container) MustRegister(providers ...*Provider) {
	if err := c.RegisterAll(providers...); err != nil {
		panic(err)
	}
}

// Injectable marks ctor as injectable in the container's metadata table.
// See the package-level Injectable for the default table.
func (c *Container) Injectable(ctor any, opts ...InjectOption) error {
	_, err := c.metadata.Mark(ctor, opts...)
	return err
}

// Lookup returns the provider explicitly registered for tok.
// Implicit class providers are not reported.
func (c *Container) Lookup(tok Token) (*Provider, bool) {
	return c.registry.Lookup(tok)
}

// Has reports whether a provider is explicitly registered for tok.
func (c *Container) Has(tok Token) bool {
	return c.registry.Has(tok)
}

// Providers returns all registered providers ordered by token name.
func (c *Container) Providers() []*Provider {
	return c.registry.Providers()
}

// Resolve produces an instance for tok.
//
// Resolution order:
//   - A provider registered for tok is used.
//   - Otherwise, if tok is a type token whose type is injectable, the type is
//     constructed as if ClassProvider(tok, type) had been registered.
//   - Otherwise resolution fails with NoProviderError.
//
// Value providers return their stored value, factory providers call their
// factory every time, and class providers construct a new instance after
// resolving every constructor parameter the same way.
//
// Example:
//
//	instance, err := container.Resolve(nasc.Type[*UserService]())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	service := instance.(*UserService)
func (c *Container) Resolve(tok Token) (any, error) {
	return c.ResolveContext(context.Background(), tok)
}

// ResolveContext is like Resolve. ctx is only used as the parent of the
// resolution spans; resolution itself cannot be cancelled.
func (c *Container) ResolveContext(ctx context.Context, tok Token) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	name := token.Name(tok)
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "nasc.Resolve",
		trace.WithAttributes(attribute.String("nasc.token", name)),
	)
	defer span.End()

	r := &resolution{ctx: ctx}
	instance, kind, err := c.resolve(r, tok)

	elapsed := time.Since(start)
	c.metrics.observeResolution(kind, err, elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("resolution failed",
			slog.String("token", name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	span.SetAttributes(attribute.String("nasc.kind", kind.String()))
	c.logger.Debug("resolved",
		slog.String("token", name),
		slog.String("kind", kind.String()),
		slog.Duration("duration", elapsed),
	)
	return instance, nil
}

// resolve looks up or synthesizes the provider for tok and dispatches on its kind.
func (c *Container) resolve(r *resolution, tok Token) (any, Kind, error) {
	if tok == nil {
		return nil, "", &ResolutionError{Token: "<nil>", Context: "token cannot be nil"}
	}

	provider, err := c.providerFor(tok)
	if err != nil {
		return nil, "", err
	}

	switch provider.Kind() {
	case KindValue:
		return provider.Value(), KindValue, nil

	case KindFactory:
		instance, err := c.invokeFactory(tok, provider.Factory())
		return instance, KindFactory, err

	case KindClass:
		instance, err := c.construct(r, tok, provider.Class())
		return instance, KindClass, err

	default:
		return nil, provider.Kind(), &ResolutionError{
			Token:   token.Name(tok),
			Context: fmt.Sprintf("unknown provider kind %q", provider.Kind()),
		}
	}
}

// providerFor returns the registered provider for tok, or an implicit class
// provider when tok is a type token for an injectable type.
func (c *Container) providerFor(tok Token) (*Provider, error) {
	if provider, ok := c.registry.Lookup(tok); ok {
		return provider, nil
	}

	typ, ok := token.TypeOf(tok)
	if !ok {
		// Injection tokens always need an explicit provider.
		return nil, &NoProviderError{Token: token.Name(tok)}
	}

	implicit := registry.ClassProvider(tok, typ)
	if err := c.registry.Validate(implicit); err != nil {
		return nil, &NoProviderError{Token: token.Name(tok), Cause: err}
	}
	return implicit, nil
}

// invokeFactory calls a factory, converting errors and panics into ResolutionError.
func (c *Container) invokeFactory(tok Token, factory Factory) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			instance = nil
			err = &ResolutionError{
				Token:   token.Name(tok),
				Context: "factory panicked",
				Cause:   fmt.Errorf("%w: %v", ErrPanic, rec),
			}
		}
	}()

	instance, err = factory()
	if err != nil {
		return nil, &ResolutionError{Token: token.Name(tok), Context: "factory failed", Cause: err}
	}
	return instance, nil
}
