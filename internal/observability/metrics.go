// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Stream metrics
	EventsReceived     prometheus.Counter
	EventsMatched      prometheus.Counter
	ExtractionFailures prometheus.Counter
	QueueDepth         prometheus.Gauge

	// Narrative metrics
	NarrativeRefreshes *prometheus.CounterVec
	ActiveNarratives   prometheus.Gauge

	// Pipeline metrics
	CandidatesProcessed *prometheus.CounterVec
	PipelineDuration    prometheus.Histogram

	// Verification metrics
	TierVerdicts *prometheus.CounterVec
	TierLatency  *prometheus.HistogramVec

	// Alert metrics
	AlertsSent     prometheus.Counter
	QuotaRemaining prometheus.Gauge

	// Upstream metrics
	UpstreamCallLatency *prometheus.HistogramVec
	UpstreamCallErrors  *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "tokenradar"
	}

	return &Metrics{
		EventsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "events_received_total",
			Help:      "Total number of log notifications received from the stream",
		}),
		EventsMatched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "events_matched_total",
			Help:      "Total number of events admitted by narrative matching",
		}),
		ExtractionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "extraction_failures_total",
			Help:      "Total number of events with no extractable token metadata",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "queue_depth",
			Help:      "Current number of candidates waiting for verification",
		}),

		NarrativeRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "narrative",
			Name:      "refreshes_total",
			Help:      "Total number of narrative refresh attempts by status",
		}, []string{"status"}),
		ActiveNarratives: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "narrative",
			Name:      "active_keywords",
			Help:      "Number of keywords in the active narrative set",
		}),

		CandidatesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "candidates_processed_total",
			Help:      "Total number of candidates processed by outcome",
		}, []string{"outcome"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Full pipeline pass duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		TierVerdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "tier_verdicts_total",
			Help:      "Total number of tier verdicts by tier and level",
		}, []string{"tier", "level"}),
		TierLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "tier_latency_seconds",
			Help:      "Verification tier latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tier"}),

		AlertsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "sent_total",
			Help:      "Total number of alerts sent",
		}),
		QuotaRemaining: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "quota_remaining",
			Help:      "Alert slots remaining in the current UTC day",
		}),

		UpstreamCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_latency_seconds",
			Help:      "Upstream service call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		UpstreamCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_errors_total",
			Help:      "Total number of upstream service call errors",
		}, []string{"service"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEventReceived increments the stream events received counter.
func RecordEventReceived() {
	DefaultMetrics.EventsReceived.Inc()
}

// RecordEventMatched increments the stream events matched counter.
func RecordEventMatched() {
	DefaultMetrics.EventsMatched.Inc()
}

// RecordExtractionFailure increments the extraction failures counter.
func RecordExtractionFailure() {
	DefaultMetrics.ExtractionFailures.Inc()
}

// SetQueueDepth updates the candidate queue depth gauge.
func SetQueueDepth(n int) {
	DefaultMetrics.QueueDepth.Set(float64(n))
}

// RecordNarrativeRefresh records a narrative refresh attempt.
func RecordNarrativeRefresh(status string, keywords int) {
	DefaultMetrics.NarrativeRefreshes.WithLabelValues(status).Inc()
	if status == "ok" {
		DefaultMetrics.ActiveNarratives.Set(float64(keywords))
	}
}

// RecordOutcome records a pipeline pass outcome for one candidate.
func RecordOutcome(outcome string, durationSeconds float64) {
	DefaultMetrics.CandidatesProcessed.WithLabelValues(outcome).Inc()
	DefaultMetrics.PipelineDuration.Observe(durationSeconds)
}

// RecordTierVerdict records one tier's verdict and latency.
func RecordTierVerdict(tier, level string, seconds float64) {
	DefaultMetrics.TierVerdicts.WithLabelValues(tier, level).Inc()
	DefaultMetrics.TierLatency.WithLabelValues(tier).Observe(seconds)
}

// RecordAlertSent increments the alerts sent counter.
func RecordAlertSent(quotaRemaining int) {
	DefaultMetrics.AlertsSent.Inc()
	DefaultMetrics.QuotaRemaining.Set(float64(quotaRemaining))
}

// RecordUpstreamCall records an upstream service call.
func RecordUpstreamCall(service string, seconds float64, err error) {
	DefaultMetrics.UpstreamCallLatency.WithLabelValues(service).Observe(seconds)
	if err != nil {
		DefaultMetrics.UpstreamCallErrors.WithLabelValues(service).Inc()
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
