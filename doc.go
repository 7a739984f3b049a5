// Package nasc provides a token-based dependency injection container for Go.
//
// Nasc (Old Irish: "Link" or "Bond") maps tokens to providers and resolves a
// token into an instance by recursively constructing the constructor
// parameters of injectable types.
//
// # Tokens
//
// A type token identifies a Go type; an injection token is an opaque named
// marker compared by identity:
//
//	nasc.Type[*UserService]()
//	var DSN = nasc.NewInjectionToken("dsn")
//
// # Injectable constructors
//
// A type becomes injectable by marking its constructor. The constructor's
// parameter types are the dependencies, resolved in order:
//
//	var _ = nasc.MustInjectable(NewUserService)
//	var _ = nasc.MustInjectable(NewRepository, nasc.Inject(0, DSN))
//
// Inject redirects a parameter to another token, typically an injection token
// for a plain value.
//
// # Providers
//
//	container := nasc.New()
//	container.MustRegister(
//	    nasc.ValueProvider(DSN, "postgres://localhost/app"),           // the value itself
//	    nasc.FactoryProvider(nasc.Type[*Clock](), newClock),           // called on every resolution
//	    nasc.Bind[Repository, *PGRepository](),                        // a new instance on every resolution
//	)
//
// Registering a token again replaces its provider. A type token without a
// provider resolves through an implicit class provider when its type is
// injectable, so injectable types never need registering.
//
// # Resolving
//
//	service, err := nasc.Get[*UserService](container)
//
// Nothing is cached: each resolution of a factory or class provider produces
// a new instance. A class that depends on itself, directly or through other
// classes, fails with RecursiveDependencyError instead of recursing forever.
// Cycles that pass through a factory calling back into the container are not
// detected.
//
// # Modules
//
// Related registrations can be grouped in a Module, with an optional boot
// phase run by BootModules:
//
//	container.RegisterModule(&DatabaseModule{})
//	container.BootModules()
//
// # Observability
//
// Containers log to a slog.Logger, open OpenTelemetry spans per resolution
// and report Prometheus metrics when configured with WithLogger,
// WithTracerProvider and WithMetrics. Describe prints the provider table.
package nasc
