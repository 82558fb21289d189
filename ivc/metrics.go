package ivc

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "ivc"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of steps that committed public values, by transition and ok.
	Steps metrics.Counter
	// Number of steps aborted without committing, by reason.
	Aborts metrics.Counter
	// Number of continuation steps cut short by a continuity check.
	ConsistencyFailures metrics.Counter
	// Time spent in one step.
	StepDurationSeconds metrics.Histogram
	// Height of the last committed head, when the header has one.
	HeadHeight metrics.Gauge
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
		Steps: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "steps",
			Help:      "Number of steps that committed public values.",
		}, append(labels, "transition", "ok")).With(labelsAndValues...),
		Aborts: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "aborts",
			Help:      "Number of steps aborted without committing.",
		}, append(labels, "reason")).With(labelsAndValues...),
		ConsistencyFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "consistency_failures",
			Help:      "Number of continuation steps cut short by a continuity check.",
		}, append(labels, "check")).With(labelsAndValues...),
		StepDurationSeconds: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "step_duration_seconds",
			Help:      "Time spent in one step.",
			Buckets:   stdprometheus.ExponentialBuckets(0.0005, 4, 8),
		}, append(labels, "transition")).With(labelsAndValues...),
		HeadHeight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "head_height",
			Help:      "Height of the last committed head.",
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Steps:               discard.NewCounter(),
		Aborts:              discard.NewCounter(),
		ConsistencyFailures: discard.NewCounter(),
		StepDurationSeconds: discard.NewHistogram(),
		HeadHeight:          discard.NewGauge(),
	}
}
