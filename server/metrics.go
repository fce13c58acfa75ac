package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teranos/mechrelay/version"
)

const metricsNamespace = "mechrelay"

// relayMetrics owns a private registry so several servers can coexist in tests.
// All methods are safe on a nil receiver, which means metrics are disabled.
type relayMetrics struct {
	registry *prometheus.Registry

	requests            *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	interactions        *prometheus.CounterVec
	interactionDuration *prometheus.HistogramVec
	inFlight            prometheus.Gauge
	rateLimitedTotal    prometheus.Counter
}

func newRelayMetrics() *relayMetrics {
	m := &relayMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "interactions_total",
			Help:      "Mech interactions by tool and outcome.",
		}, []string{"tool", "outcome"}),
		interactionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "interaction_duration_seconds",
			Help:      "Mech interaction latency by tool. On-chain delivery takes tens of seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		}, []string{"tool"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "interactions_in_flight",
			Help:      "Mech interactions currently waiting for a result.",
		}),
		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rate_limited_total",
			Help:      "Prompt requests rejected by the rate limiter.",
		}),
	}

	info := version.Get()
	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "build_info",
		Help:        "Build metadata; the value is always 1.",
		ConstLabels: prometheus.Labels{"version": info.Version, "commit": info.Short(), "go_version": info.GoVersion},
	})
	buildInfo.Set(1)

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.interactions,
		m.interactionDuration,
		m.inFlight,
		m.rateLimitedTotal,
		buildInfo,
	)
	return m
}

func (m *relayMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *relayMetrics) observeRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// interactionStarted marks an interaction in flight and returns the func that completes it
func (m *relayMetrics) interactionStarted() func(tool string, err error, elapsed time.Duration) {
	if m == nil {
		return func(string, error, time.Duration) {}
	}
	m.inFlight.Inc()
	return func(tool string, err error, elapsed time.Duration) {
		m.inFlight.Dec()
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		m.interactions.WithLabelValues(tool, outcome).Inc()
		m.interactionDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
	}
}

func (m *relayMetrics) rateLimited() {
	if m == nil {
		return
	}
	m.rateLimitedTotal.Inc()
}
