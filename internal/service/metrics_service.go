package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Mutation outcomes recorded by the draft service.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// MetricsService owns the Prometheus registry and keeps counters for the JSON snapshot.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	cacheLookups       *prometheus.CounterVec
	mutations          *prometheus.CounterVec
	violations         *prometheus.CounterVec
	validationDuration prometheus.Histogram
	replacementResults *prometheus.CounterVec

	sessions func() int

	requestCount         uint64
	requestDurationTotal uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	acceptedCount        uint64
	rejectedCount        uint64
	failedCount          uint64
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_lookups_total",
		Help: "Catalog cache lookups by result",
	}, []string{"result"})

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_mutations_total",
		Help: "Draft mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	violations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_violations_total",
		Help: "Constraint violations reported, by kind",
	}, []string{"kind"})

	validationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_validation_duration_seconds",
		Help:    "Duration of full draft validations",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	replacementResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_replacement_solutions_total",
		Help: "Replacement solutions returned, by kind",
	}, []string{"kind"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLookups, mutations, violations, validationDuration, replacementResults, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLookups:       cacheLookups,
		mutations:          mutations,
		violations:         violations,
		validationDuration: validationDuration,
		replacementResults: replacementResults,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// TrackSessions registers a gauge source for cached draft sessions.
func (m *MetricsService) TrackSessions(fn func() int) {
	if m == nil || fn == nil {
		return
	}
	m.sessions = fn
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "timetable_cached_sessions",
		Help: "Draft sessions held in memory",
	}, func() float64 { return float64(fn()) }))
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheLookup counts a catalog cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// RecordMutation counts one draft mutation and the violations it produced.
func (m *MetricsService) RecordMutation(operation, outcome string, violations []models.ConstraintViolation) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
	switch outcome {
	case OutcomeAccepted:
		atomic.AddUint64(&m.acceptedCount, 1)
	case OutcomeRejected:
		atomic.AddUint64(&m.rejectedCount, 1)
	default:
		atomic.AddUint64(&m.failedCount, 1)
	}
	m.recordViolations(violations)
}

// ObserveValidation records a full validation run.
func (m *MetricsService) ObserveValidation(duration time.Duration, violations []models.ConstraintViolation) {
	if m == nil {
		return
	}
	m.validationDuration.Observe(duration.Seconds())
	m.recordViolations(violations)
}

// RecordReplacement counts the solution kinds returned for one absence query.
func (m *MetricsService) RecordReplacement(solutions []models.ReplacementSolution) {
	if m == nil {
		return
	}
	for _, s := range solutions {
		m.replacementResults.WithLabelValues(string(s.Kind)).Inc()
	}
}

func (m *MetricsService) recordViolations(violations []models.ConstraintViolation) {
	for _, v := range violations {
		m.violations.WithLabelValues(string(v.Kind)).Inc()
	}
}

// Snapshot returns aggregated counters for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	var sessions int
	if m.sessions != nil {
		sessions = m.sessions()
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		MutationsAccepted:        atomic.LoadUint64(&m.acceptedCount),
		MutationsRejected:        atomic.LoadUint64(&m.rejectedCount),
		MutationsFailed:          atomic.LoadUint64(&m.failedCount),
		ActiveSessions:           sessions,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
