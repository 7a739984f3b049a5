package nasc

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes reported in the outcome label.
const (
	OutcomeSuccess             = "success"
	OutcomeNoProvider          = "no_provider"
	OutcomeRecursiveDependency = "recursive_dependency"
	OutcomeError               = "error"
)

// Metrics holds the Prometheus collectors a container reports to.
// A nil *Metrics records nothing.
type Metrics struct {
	// ResolutionsTotal counts Resolve calls by provider kind and outcome.
	ResolutionsTotal *prometheus.CounterVec

	// ResolutionDuration measures the wall time of Resolve calls.
	ResolutionDuration *prometheus.HistogramVec

	// RegistrationsTotal counts successful registrations by provider kind.
	RegistrationsTotal *prometheus.CounterVec
}

// NewMetrics creates the container collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nasc",
				Name:      "resolutions_total",
				Help:      "Total number of token resolutions",
			},
			[]string{"kind", "outcome"},
		),
		ResolutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nasc",
				Name:      "resolution_duration_seconds",
				Help:      "Duration of token resolutions in seconds",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"kind"},
		),
		RegistrationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nasc",
				Name:      "registrations_total",
				Help:      "Total number of provider registrations",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) observeRegistration(kind Kind) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) observeResolution(kind Kind, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := kind.String()
	if label == "" {
		label = "none"
	}
	m.ResolutionsTotal.WithLabelValues(label, outcome(err)).Inc()
	m.ResolutionDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// outcome classifies a resolution error for the outcome label.
func outcome(err error) string {
	var noProvider *NoProviderError
	var recursive *RecursiveDependencyError

	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &noProvider):
		return OutcomeNoProvider
	case errors.As(err, &recursive):
		return OutcomeRecursiveDependency
	default:
		return OutcomeError
	}
}
