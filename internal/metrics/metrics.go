// Package metrics records run counters for the award-shares pipeline on a private
// Prometheus registry. There is no metrics server: the registry is written once at
// the end of a run in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "award_shares"

// Recorder holds the run's metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	pagesFetched     prometheus.Counter
	fetchFailures    *prometheus.CounterVec
	fetchRetries     prometheus.Counter
	fetchLatency     prometheus.Histogram
	playersProcessed prometheus.Counter
	playersSkipped   prometheus.Counter
	yearsSkipped     prometheus.Counter
	reportRows       prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		pagesFetched: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "pages_total",
			Help: "Pages fetched successfully.",
		}),
		fetchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "failures_total",
			Help: "Fetches that failed after retries, by reason.",
		}, []string{"reason"}),
		fetchRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "retries_total",
			Help: "Retried fetch attempts.",
		}),
		fetchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "fetch", Name: "duration_seconds",
			Help:    "Fetch duration including retries.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		}),
		playersProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregate", Name: "players_total",
			Help: "Players summarised.",
		}),
		playersSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregate", Name: "players_skipped_total",
			Help: "Players skipped after an error.",
		}),
		yearsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregate", Name: "voting_years_skipped_total",
			Help: "Voting years skipped after an error.",
		}),
		reportRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "report", Name: "rows",
			Help: "Rows written to the report.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveFetch records one fetch. A non-empty reason marks it failed.
func (r *Recorder) ObserveFetch(d time.Duration, reason string) {
	if r == nil {
		return
	}
	r.fetchLatency.Observe(d.Seconds())
	if reason != "" {
		r.fetchFailures.WithLabelValues(reason).Inc()
		return
	}
	r.pagesFetched.Inc()
}

// Retry records a retried attempt.
func (r *Recorder) Retry() {
	if r == nil {
		return
	}
	r.fetchRetries.Inc()
}

// Player records a summarised or skipped player.
func (r *Recorder) Player(skipped bool) {
	if r == nil {
		return
	}
	if skipped {
		r.playersSkipped.Inc()
		return
	}
	r.playersProcessed.Inc()
}

// YearSkipped records a voting year that could not be read.
func (r *Recorder) YearSkipped() {
	if r == nil {
		return
	}
	r.yearsSkipped.Inc()
}

// ReportRows records the size of the written report.
func (r *Recorder) ReportRows(n int) {
	if r == nil {
		return
	}
	r.reportRows.Set(float64(n))
}

// WriteTextfile writes every metric to path in the textfile exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
