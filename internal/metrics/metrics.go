package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
	UpstreamCalls   *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
	StatusUpdates   *prometheus.CounterVec
}

var latencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// New builds the collectors on a private registry so tests can create as
// many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payrelay",
			Name:      "http_requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "payrelay",
			Name:      "http_request_duration_ms",
			Help:      "Inbound HTTP request latency in milliseconds.",
			Buckets:   latencyBuckets,
		}, []string{"route"}),
		UpstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payrelay",
			Name:      "upstream_requests_total",
			Help:      "Outbound calls to PayU and Ecwid by outcome.",
		}, []string{"upstream", "op", "outcome"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "payrelay",
			Name:      "upstream_request_duration_ms",
			Help:      "Outbound call latency in milliseconds.",
			Buckets:   latencyBuckets,
		}, []string{"upstream", "op"}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payrelay",
			Name:      "status_updates_total",
			Help:      "Storefront payment status pushes by mapped status and result.",
		}, []string{"status", "result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests, m.LatencyMS, m.UpstreamCalls, m.UpstreamLatency, m.StatusUpdates,
	)
	return m
}

func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(route).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveUpstream(upstream, op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamCalls.WithLabelValues(upstream, op, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(upstream, op).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveStatusUpdate(status, result string) {
	if m == nil {
		return
	}
	m.StatusUpdates.WithLabelValues(status, result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
