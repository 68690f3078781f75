// Package metrics registers the prometheus collectors exposed on /metrics:
//
//	uct_cache_hits_total{key}
//	uct_cache_misses_total{key}
//	uct_upstream_errors_total{source}
//	uct_mover_filter_drops_total{stage}
//	uct_http_request_duration_seconds{method,status}
//
// plus the go_* and process_* collectors. All methods are safe on a nil
// *Metrics so tests can skip instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	upstreamErrors  *prometheus.CounterVec
	moverDrops      *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uct_cache_hits_total",
			Help: "Cache lookups that returned a live entry",
		}, []string{"key"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uct_cache_misses_total",
			Help: "Cache lookups that found no entry or an expired one",
		}, []string{"key"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uct_upstream_errors_total",
			Help: "Failed calls to upstream data providers",
		}, []string{"source"}),
		moverDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uct_mover_filter_drops_total",
			Help: "Mover candidates removed by each liquidity filter",
		}, []string{"stage"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uct_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	m.registry.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.upstreamErrors,
		m.moverDrops,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CacheHit(key string) {
	if m != nil {
		m.cacheHits.WithLabelValues(keyFamily(key)).Inc()
	}
}

func (m *Metrics) CacheMiss(key string) {
	if m != nil {
		m.cacheMisses.WithLabelValues(keyFamily(key)).Inc()
	}
}

func (m *Metrics) UpstreamError(source string) {
	if m != nil {
		m.upstreamErrors.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) MoverDropped(stage string) {
	if m != nil {
		m.moverDrops.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m != nil {
		m.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
	}
}

// keyFamily keeps label cardinality bounded: per-ticker keys such as
// "snapshot:NVDA" collapse to "snapshot".
func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
