package prover

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "prover"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of proofs sealed, by whether the chain was still valid.
	Proofs metrics.Counter
	// Index of the last proved step of the chain being folded.
	ChainLength metrics.Gauge
	// Time spent building, running and sealing one step.
	ProveSeconds metrics.Histogram
	// Number of audited chains that failed the audit.
	AuditFailures metrics.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		Proofs: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "proofs",
			Help:      "Number of proofs sealed.",
		}, append(labels, "ok")).With(labelsAndValues...),
		ChainLength: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "chain_length",
			Help:      "Index of the last proved step.",
		}, append(labels, "chain")).With(labelsAndValues...),
		ProveSeconds: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "prove_seconds",
			Help:      "Time spent proving one step.",
			Buckets:   stdprometheus.ExponentialBuckets(0.001, 4, 8),
		}, labels).With(labelsAndValues...),
		AuditFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "audit_failures",
			Help:      "Number of audited chains that failed the audit.",
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Proofs:        discard.NewCounter(),
		ChainLength:   discard.NewGauge(),
		ProveSeconds:  discard.NewHistogram(),
		AuditFailures: discard.NewCounter(),
	}
}
