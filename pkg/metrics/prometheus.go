package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal  *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	cacheEvents   *prometheus.CounterVec
	rateLimited   prometheus.Counter
	dealsReturned *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealpull_source_fetches_total",
				Help: "Total number of source fetches by outcome",
			},
			[]string{"source", "status"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dealpull_source_fetch_duration_seconds",
				Help:    "Duration of source fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		cacheEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealpull_snapshot_cache_events_total",
				Help: "Snapshot cache hits, misses and refreshes",
			},
			[]string{"event"},
		),
		rateLimited: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dealpull_rate_limited_total",
				Help: "Total number of rate-limited requests",
			},
		),
		dealsReturned: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dealpull_source_deals_last",
				Help: "Number of deals returned by the last fetch per source",
			},
			[]string{"source"},
		),
	}
}

// RecordFetch records one source fetch outcome ("success" or "error").
func (r *Recorder) RecordFetch(source, status string) {
	r.fetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordFetchLatency records fetch latency in seconds.
func (r *Recorder) RecordFetchLatency(source string, seconds float64) {
	r.fetchLatency.WithLabelValues(source).Observe(seconds)
}

// RecordCache records a snapshot cache event ("hit", "miss", "refresh").
func (r *Recorder) RecordCache(event string) {
	r.cacheEvents.WithLabelValues(event).Inc()
}

// RecordRateLimited records a rejected request.
func (r *Recorder) RecordRateLimited() {
	r.rateLimited.Inc()
}

// RecordDealCount records how many deals a source last returned.
func (r *Recorder) RecordDealCount(source string, n int) {
	r.dealsReturned.WithLabelValues(source).Set(float64(n))
}
