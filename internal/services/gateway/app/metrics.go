package app

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	DashboardRequests prometheus.Counter
	DashboardLatency  prometheus.Histogram
	UpstreamFailures  *prometheus.CounterVec
	BreakerOpen       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		DashboardRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "icepump_gateway_dashboard_requests_total",
			Help: "Total dashboard requests served.",
		}),
		DashboardLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "icepump_gateway_dashboard_latency_seconds",
			Help:    "End-to-end dashboard aggregation latency.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "icepump_gateway_upstream_failures_total",
			Help: "Upstream fetch failures by upstream name.",
		}, []string{"upstream"}),
		BreakerOpen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "icepump_gateway_breaker_rejections_total",
			Help: "Requests rejected because the upstream breaker was open.",
		}, []string{"upstream"}),
	}
	prometheus.MustRegister(m.DashboardRequests, m.DashboardLatency, m.UpstreamFailures, m.BreakerOpen)
	return m
}
