package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schoolcore/timetable-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the scheduling
// pipeline and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	validationTotal *prometheus.CounterVec
	commitTotal     prometheus.Counter
	generationTotal prometheus.Counter
	unresolvedTotal prometheus.Counter
	exportTotal     *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	validationCount      uint64
	validationRejected   uint64
	commitCount          uint64
	generationCount      uint64
	unresolvedCount      uint64
}

// NewMetricsService registers core Prometheus collectors.
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	validationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_validations_total",
		Help: "Total slot and week validation runs by outcome",
	}, []string{"outcome"})

	commitTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_commits_total",
		Help: "Total committed timetable weeks",
	})

	generationTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_generations_total",
		Help: "Total batch generation runs",
	})

	unresolvedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_unresolved_slots_total",
		Help: "Total slots left unassigned by the generator",
	})

	exportTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_exports_total",
		Help: "Total export jobs by terminal status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, validationTotal, commitTotal, generationTotal, unresolvedTotal, exportTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		validationTotal: validationTotal,
		commitTotal:     commitTotal,
		generationTotal: generationTotal,
		unresolvedTotal: unresolvedTotal,
		exportTotal:     exportTotal,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
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

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordValidation counts a validation run and its outcome.
func (m *MetricsService) RecordValidation(valid bool) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.validationCount, 1)
	if valid {
		m.validationTotal.WithLabelValues("valid").Inc()
		return
	}
	m.validationTotal.WithLabelValues("rejected").Inc()
	atomic.AddUint64(&m.validationRejected, 1)
}

// RecordCommit counts a committed timetable week.
func (m *MetricsService) RecordCommit() {
	if m == nil {
		return
	}
	m.commitTotal.Inc()
	atomic.AddUint64(&m.commitCount, 1)
}

// RecordGeneration counts one batch generation run and its unresolved slots.
func (m *MetricsService) RecordGeneration(unresolved int) {
	if m == nil {
		return
	}
	m.generationTotal.Inc()
	atomic.AddUint64(&m.generationCount, 1)
	if unresolved > 0 {
		m.unresolvedTotal.Add(float64(unresolved))
		atomic.AddUint64(&m.unresolvedCount, uint64(unresolved))
	}
}

// RecordExport counts an export job reaching a terminal status.
func (m *MetricsService) RecordExport(status string) {
	if m == nil {
		return
	}
	m.exportTotal.WithLabelValues(status).Inc()
}

// Snapshot returns aggregated metrics suitable for dashboard endpoints.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		ValidationsTotal:         atomic.LoadUint64(&m.validationCount),
		ValidationsRejected:      atomic.LoadUint64(&m.validationRejected),
		CommitsTotal:             atomic.LoadUint64(&m.commitCount),
		GenerationsTotal:         atomic.LoadUint64(&m.generationCount),
		UnresolvedSlotsTotal:     atomic.LoadUint64(&m.unresolvedCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
