package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Booking operations and outcomes used as metric labels.
const (
	OperationEnroll        = "enroll"
	OperationCancel        = "cancel"
	OperationAdminCancel   = "admin_cancel"
	OutcomeSuccess         = "success"
	OutcomeAlreadyEnrolled = "already_enrolled"
	OutcomeFull            = "full"
	OutcomeClosed          = "closed"
	OutcomeNotFound        = "not_found"
	OutcomeNotEnrolled     = "not_enrolled"
	OutcomeError           = "error"
)

const (
	notificationPublished = "published"
	notificationDropped   = "dropped"
	notificationFailed    = "failed"
)

// MetricsService owns the Prometheus registry of the API.
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
	bookings        *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	sweptSessions   prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "past_listing_cache_latency_seconds",
		Help:    "Latency of past listing cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "past_listing_cache_write_seconds",
		Help:    "Latency of past listing cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "past_listing_cache_hit_ratio",
		Help: "Ratio of past listing cache hits to lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "past_listing_cache_hits_total",
		Help: "Total past listing cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "past_listing_cache_misses_total",
		Help: "Total past listing cache misses",
	})

	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_operations_total",
		Help: "Enroll and cancel calls by outcome",
	}, []string{"operation", "result"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_notifications_total",
		Help: "Session notifications by event type and delivery result",
	}, []string{"event", "result"})

	sweptSessions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessions_completed_by_sweep_total",
		Help: "Finished sessions persisted as completed by the sweep",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		bookings, notifications, sweptSessions, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		bookings:        bookings,
		notifications:   notifications,
		sweptSessions:   sweptSessions,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordBooking counts one enroll or cancel outcome.
func (m *MetricsService) RecordBooking(operation, result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(operation, result).Inc()
}

// RecordNotification counts one notification delivery result.
func (m *MetricsService) RecordNotification(event, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, result).Inc()
}

// AddSweptSessions counts sessions completed by the sweep.
func (m *MetricsService) AddSweptSessions(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sweptSessions.Add(float64(n))
}
