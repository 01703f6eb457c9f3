package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes provider and job counters to Prometheus. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	fetchesTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
	jobRuns      *prometheus.CounterVec
}

// New creates a Recorder registered on reg. Pass prometheus.DefaultRegisterer in production
// and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfoliolens_fetches_total",
				Help: "Total number of provider requests",
			},
			[]string{"provider", "kind"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfoliolens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "portfoliolens_last_price",
				Help: "Last quoted price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfoliolens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		jobRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfoliolens_job_runs_total",
				Help: "Scheduled job executions by outcome",
			},
			[]string{"job", "outcome"},
		),
	}
}

// RecordFetch records one provider request.
func (r *Recorder) RecordFetch(provider, kind string) {
	if r == nil {
		return
	}
	r.fetchesTotal.WithLabelValues(provider, kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	if r == nil {
		return
	}
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	if r == nil {
		return
	}
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordJob records the outcome of a scheduled job run.
func (r *Recorder) RecordJob(job string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.jobRuns.WithLabelValues(job, outcome).Inc()
}
