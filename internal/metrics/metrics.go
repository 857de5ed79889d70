// Package metrics exports run counters in the Prometheus text format, for
// node_exporter's textfile collector or any scraper reading a file.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"conform/internal/domain"
)

// Recorder holds the metrics of one run in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	examples *prometheus.CounterVec
	duration *prometheus.HistogramVec
	elapsed  prometheus.Gauge
	stopped  *prometheus.GaugeVec
}

// New creates a recorder with its metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		examples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conform_examples_total",
				Help: "Examples executed, by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conform_example_duration_seconds",
				Help:    "Duration of example bodies",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"outcome"},
		),
		elapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "conform_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		stopped: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "conform_run_stopped",
				Help: "Whether the last run stopped early, by reason",
			},
			[]string{"reason"},
		),
	}
	r.registry.MustRegister(r.examples, r.duration, r.elapsed, r.stopped)

	// Outcomes with no examples still export a zero series.
	for _, o := range []domain.Outcome{domain.OutcomePassed, domain.OutcomeFailed, domain.OutcomeErrored} {
		r.examples.WithLabelValues(string(o))
	}
	return r
}

// Record adds a run report.
func (r *Recorder) Record(report *domain.Report) {
	for _, res := range report.Results {
		r.examples.WithLabelValues(string(res.Outcome)).Inc()
		r.duration.WithLabelValues(string(res.Outcome)).Observe(res.Duration.Seconds())
	}
	r.elapsed.Set(report.Elapsed.Seconds())
	r.stopped.WithLabelValues("bail").Set(flag(report.Bailed))
	r.stopped.WithLabelValues("abort").Set(flag(report.Aborted))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes the metrics to path atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
