package nasc

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/toutaio/toutago-nasc-injector/metadata"
)

// Option is a function that configures a Container.
type Option func(*Container) error

// WithLogger sets the structured logger used for registration and resolution
// records. By default the container logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetadata makes the container read class metadata from table instead of
// metadata.Default.
func WithMetadata(table *metadata.Table) Option {
	return func(c *Container) error {
		if table == nil {
			return errors.New("metadata table cannot be nil")
		}
		c.metadata = table
		return nil
	}
}

// WithTracerProvider enables a span per resolution and per class construction.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Container) error {
		if tp == nil {
			return errors.New("tracer provider cannot be nil")
		}
		c.tracer = tp.Tracer(tracerName)
		return nil
	}
}

// WithMetrics records registration and resolution metrics into m.
//
//	metrics := nasc.NewMetrics(prometheus.DefaultRegisterer)
//	container := nasc.New(nasc.WithMetrics(metrics))
func WithMetrics(m *Metrics) Option {
	return func(c *Container) error {
		if m == nil {
			return errors.New("metrics cannot be nil")
		}
		c.metrics = m
		return nil
	}
}
