package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts completed runs by outcome.
	// Labels: outcome (done, failed)
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reviewd",
			Subsystem: "orchestrator",
			Name:      "runs_total",
			Help:      "Total number of review runs by terminal outcome",
		},
		[]string{"outcome"},
	)

	// FindingsTotal counts aggregated findings by severity.
	FindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reviewd",
			Subsystem: "orchestrator",
			Name:      "findings_total",
			Help:      "Total number of findings emitted across all runs",
		},
		[]string{"severity"},
	)

	// ProducerDuration tracks per-producer evaluation latency.
	ProducerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviewd",
			Subsystem: "orchestrator",
			Name:      "producer_duration_seconds",
			Help:      "Duration of producer evaluations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"producer"},
	)

	// ProducerUnavailable counts producers that timed out, panicked,
	// or reported themselves unavailable.
	ProducerUnavailable = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reviewd",
			Subsystem: "orchestrator",
			Name:      "producer_unavailable_total",
			Help:      "Total number of unavailable producer results",
		},
		[]string{"producer"},
	)

	// RunDuration tracks end-to-end run latency.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "reviewd",
			Subsystem: "orchestrator",
			Name:      "run_duration_seconds",
			Help:      "Duration of complete review runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)

func recordRun(run *Run) {
	outcome := "done"
	if run.State == StateFailed {
		outcome = "failed"
	}
	RunsTotal.WithLabelValues(outcome).Inc()
	RunDuration.Observe(run.CompletedAt.Sub(run.StartedAt).Seconds())

	if run.Report == nil {
		return
	}
	for _, f := range run.Report.Critical {
		FindingsTotal.WithLabelValues(string(f.Severity)).Inc()
	}
	for _, f := range run.Report.Others {
		FindingsTotal.WithLabelValues(string(f.Severity)).Inc()
	}
}
