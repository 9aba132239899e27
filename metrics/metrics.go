// Package metrics holds the Prometheus collectors of the wager services.
//
// A nil *Registry is valid and records nothing, so components can be used
// without metrics in tests and one-shot commands.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all the collectors.
type Registry struct {
	reg *prometheus.Registry

	FetchDuration   *prometheus.HistogramVec
	FetchRequests   *prometheus.CounterVec
	BreakerState    *prometheus.GaugeVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	ComputeDuration prometheus.Histogram
}

// New creates a registry with every collector registered, along with the Go and process collectors.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wager_fetch_duration_seconds",
				Help:    "Duration of upstream market data requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider"},
		),
		FetchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wager_fetch_requests_total",
				Help: "Total number of upstream market data requests by provider and result",
			},
			[]string{"provider", "result"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wager_breaker_state",
				Help: "Circuit breaker state by provider (0 closed, 1 half-open, 2 open)",
			},
			[]string{"provider"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wager_cache_hits_total",
				Help: "Total number of dashboard cache hits by backend",
			},
			[]string{"backend"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wager_cache_misses_total",
				Help: "Total number of dashboard cache misses by backend",
			},
			[]string{"backend"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wager_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wager_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ComputeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wager_compute_duration_seconds",
				Help:    "Duration of a full dashboard computation, retrieval included",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
	}
	r.reg.MustRegister(
		r.FetchDuration, r.FetchRequests, r.BreakerState,
		r.CacheHits, r.CacheMisses,
		r.HTTPRequests, r.HTTPDuration, r.ComputeDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler returns the HTTP handler exposing the registry.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying gatherer, mostly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// ObserveFetch records one upstream request.
func (r *Registry) ObserveFetch(provider string, d time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.FetchDuration.WithLabelValues(provider).Observe(d.Seconds())
	r.FetchRequests.WithLabelValues(provider, result).Inc()
}

// SetBreakerState records the state of a provider circuit breaker.
func (r *Registry) SetBreakerState(provider string, state int) {
	if r == nil {
		return
	}
	r.BreakerState.WithLabelValues(provider).Set(float64(state))
}

// ObserveCache records a cache lookup.
func (r *Registry) ObserveCache(backend string, hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.CacheHits.WithLabelValues(backend).Inc()
		return
	}
	r.CacheMisses.WithLabelValues(backend).Inc()
}

// ObserveHTTP records one served HTTP request.
func (r *Registry) ObserveHTTP(route string, code int, d time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	r.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveCompute records the duration of a dashboard computation.
func (r *Registry) ObserveCompute(d time.Duration) {
	if r == nil {
		return
	}
	r.ComputeDuration.Observe(d.Seconds())
}
