// Package telemetry exposes Prometheus metrics for the job feed and snapshot service.
package telemetry

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiranshivaraju/qwatch/pkg/models"
)

var (
	once sync.Once

	FeedSteps       = prometheus.NewCounter(prometheus.CounterOpts{Name: "qwatch_feed_steps_total", Help: "Feed steps applied"})
	RemoteFetches   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "qwatch_remote_fetches_total", Help: "Remote job listing calls by result"}, []string{"result"})
	SnapshotCache   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "qwatch_snapshot_cache_total", Help: "Snapshot cache lookups by outcome"}, []string{"outcome"})
	SyntheticServed = prometheus.NewCounter(prometheus.CounterOpts{Name: "qwatch_synthetic_snapshots_total", Help: "Snapshots served from synthetic generation"})
	JobsByStatus    = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "qwatch_jobs", Help: "Jobs in the current feed snapshot by status"}, []string{"status"})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qwatch_http_request_duration_seconds",
		Help:    "HTTP request latency by route, method and status code",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
	RateLimited     = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "qwatch_rate_limited_total", Help: "Requests rejected by the rate limiter by route"}, []string{"route"})
	PanicsRecovered = prometheus.NewCounter(prometheus.CounterOpts{Name: "qwatch_http_panics_total", Help: "Handler panics turned into 500 responses"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			FeedSteps,
			RemoteFetches,
			SnapshotCache,
			SyntheticServed,
			JobsByStatus,
			RequestDuration,
			RateLimited,
			PanicsRecovered,
		)
	})
	return promhttp.Handler()
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(route, method string, code int, elapsed time.Duration) {
	RequestDuration.WithLabelValues(route, method, strconv.Itoa(code)).Observe(elapsed.Seconds())
}

// ObserveStats publishes per-status gauges for a snapshot.
func ObserveStats(s models.Stats) {
	JobsByStatus.WithLabelValues(string(models.JobStatusQueued)).Set(float64(s.Queued))
	JobsByStatus.WithLabelValues(string(models.JobStatusRunning)).Set(float64(s.Running))
	JobsByStatus.WithLabelValues(string(models.JobStatusCompleted)).Set(float64(s.Completed))
	JobsByStatus.WithLabelValues(string(models.JobStatusFailed)).Set(float64(s.Failed))
}
