// Package prometheus exports pipeline metrics with the Prometheus client.
package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/scholarmail"
	"github.com/fwojciec/scholarmail/parse"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scholarmail"

// Metrics holds the collectors for extraction calls and pipeline runs.
type Metrics struct {
	extractions      *prometheus.CounterVec
	extractDuration  prometheus.Histogram
	candidates       prometheus.Counter
	emails           *prometheus.CounterVec
	resultsStored    prometheus.Counter
	resultsFailed    prometheus.Counter
	markFailures     prometheus.Counter
	lastRunTimestamp prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Extraction calls by outcome.",
		}, []string{"outcome"}),
		extractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of extraction calls.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Candidate search results returned by the extractor.",
		}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Emails moved to a terminal state, by status.",
		}, []string{"status"}),
		resultsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_stored_total",
			Help:      "Search results inserted.",
		}),
		resultsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_failed_total",
			Help:      "Search results that could not be inserted.",
		}),
		markFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_mark_failures_total",
			Help:      "Emails whose terminal state could not be written.",
		}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last pipeline run finished.",
		}),
	}
	reg.MustRegister(
		m.extractions,
		m.extractDuration,
		m.candidates,
		m.emails,
		m.resultsStored,
		m.resultsFailed,
		m.markFailures,
		m.lastRunTimestamp,
	)
	return m
}

// ObserveRun records the outcome of a pipeline run finished at now.
func (m *Metrics) ObserveRun(res *parse.Result, now time.Time) {
	if res == nil {
		return
	}
	m.emails.WithLabelValues(parse.StatusParsed.String()).Add(float64(res.Parsed))
	m.emails.WithLabelValues(parse.StatusFormatError.String()).Add(float64(res.FormatErrors))
	m.emails.WithLabelValues(parse.StatusFailed.String()).Add(float64(res.Failed))
	m.resultsStored.Add(float64(res.Stored))
	m.resultsFailed.Add(float64(res.StoreFailed))
	m.markFailures.Add(float64(res.MarkFailed))
	m.lastRunTimestamp.Set(float64(now.Unix()))
}

// Extractor wraps next so every call is counted and timed.
func (m *Metrics) Extractor(next scholarmail.Extractor) *Extractor {
	return &Extractor{next: next, metrics: m}
}

var _ scholarmail.Extractor = (*Extractor)(nil)

// Extractor is an instrumented scholarmail.Extractor.
type Extractor struct {
	next    scholarmail.Extractor
	metrics *Metrics
}

// Extract delegates to the wrapped extractor and records the call.
func (e *Extractor) Extract(ctx context.Context, req scholarmail.ExtractRequest) (candidates []scholarmail.Candidate, err error) {
	defer func(begin time.Time) {
		e.metrics.extractDuration.Observe(time.Since(begin).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		e.metrics.extractions.WithLabelValues(outcome).Inc()
		e.metrics.candidates.Add(float64(len(candidates)))
	}(time.Now())
	return e.next.Extract(ctx, req)
}
