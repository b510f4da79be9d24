package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/circleed-client/internal/dto"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for the status API.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	apiDuration        *prometheus.HistogramVec
	apiTotal           *prometheus.CounterVec
	statusDuration     *prometheus.HistogramVec
	sessionActions     *prometheus.CounterVec
	signals            *prometheus.CounterVec
	staleResponses     *prometheus.CounterVec
	refreshJobs        *prometheus.CounterVec
	refreshJobDuration *prometheus.HistogramVec

	apiRequestCount     uint64
	apiErrorCount       uint64
	apiDurationTotal    uint64
	signalCount         uint64
	staleCount          uint64
	refreshSuccessCount uint64
	refreshFailureCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "circleed_api_request_duration_seconds",
		Help:    "Duration of backend API calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	apiTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circleed_api_requests_total",
		Help: "Total number of backend API calls",
	}, []string{"method", "route", "status"})

	statusDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of status API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	sessionActions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circleed_session_actions_total",
		Help: "Session lifecycle actions by outcome",
	}, []string{"action", "result"})

	signals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circleed_signals_total",
		Help: "Cross-view signals emitted",
	}, []string{"signal"})

	staleResponses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circleed_stale_responses_total",
		Help: "Responses dropped because newer state was already applied",
	}, []string{"view"})

	refreshJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circleed_refresh_jobs_total",
		Help: "Background view refreshes by outcome",
	}, []string{"view", "result"})

	refreshJobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "circleed_refresh_job_duration_seconds",
		Help:    "Duration of background view refreshes",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(apiDuration, apiTotal, statusDuration, sessionActions, signals, staleResponses, refreshJobs, refreshJobDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		apiDuration:        apiDuration,
		apiTotal:           apiTotal,
		statusDuration:     statusDuration,
		sessionActions:     sessionActions,
		signals:            signals,
		staleResponses:     staleResponses,
		refreshJobs:        refreshJobs,
		refreshJobDuration: refreshJobDuration,
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

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveAPIRequest records a backend call. Status 0 marks a transport failure.
func (m *MetricsService) ObserveAPIRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.apiDuration.WithLabelValues(method, route, labelStatus).Observe(duration.Seconds())
	m.apiTotal.WithLabelValues(method, route, labelStatus).Inc()
	atomic.AddUint64(&m.apiRequestCount, 1)
	atomic.AddUint64(&m.apiDurationTotal, uint64(duration.Nanoseconds()))
	if status == 0 || status >= 400 {
		atomic.AddUint64(&m.apiErrorCount, 1)
	}
}

// ObserveHTTPRequest records a status API request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.statusDuration.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Observe(duration.Seconds())
}

// ObserveSessionAction counts a lifecycle action outcome.
func (m *MetricsService) ObserveSessionAction(action string, err error) {
	if m == nil {
		return
	}
	m.sessionActions.WithLabelValues(action, resultLabel(err)).Inc()
}

// ObserveSignal implements events.SignalObserver.
func (m *MetricsService) ObserveSignal(name string) {
	if m == nil {
		return
	}
	m.signals.WithLabelValues(name).Inc()
	atomic.AddUint64(&m.signalCount, 1)
}

// ObserveStale implements state.StaleObserver.
func (m *MetricsService) ObserveStale(view string) {
	if m == nil {
		return
	}
	m.staleResponses.WithLabelValues(view).Inc()
	atomic.AddUint64(&m.staleCount, 1)
}

// ObserveRefresh records a background refresh.
func (m *MetricsService) ObserveRefresh(view string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.refreshJobs.WithLabelValues(view, resultLabel(err)).Inc()
	m.refreshJobDuration.WithLabelValues(view).Observe(duration.Seconds())
	if err != nil {
		atomic.AddUint64(&m.refreshFailureCount, 1)
	} else {
		atomic.AddUint64(&m.refreshSuccessCount, 1)
	}
}

// Snapshot returns aggregated metrics suitable for the status API.
func (m *MetricsService) Snapshot() dto.RuntimeMetrics {
	if m == nil {
		return dto.RuntimeMetrics{}
	}
	requests := atomic.LoadUint64(&m.apiRequestCount)
	duration := atomic.LoadUint64(&m.apiDurationTotal)

	var avgMs float64
	if requests > 0 {
		avgMs = float64(duration) / float64(requests) / float64(time.Millisecond)
	}

	return dto.RuntimeMetrics{
		APIRequests:          requests,
		APIErrors:            atomic.LoadUint64(&m.apiErrorCount),
		AverageAPILatencyMs:  avgMs,
		SignalsEmitted:       atomic.LoadUint64(&m.signalCount),
		StaleResponses:       atomic.LoadUint64(&m.staleCount),
		RefreshJobsSucceeded: atomic.LoadUint64(&m.refreshSuccessCount),
		RefreshJobsFailed:    atomic.LoadUint64(&m.refreshFailureCount),
		Goroutines:           runtime.NumGoroutine(),
		GeneratedAt:          time.Now().UTC(),
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
