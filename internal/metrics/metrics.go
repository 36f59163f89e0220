// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the service and API layers record through.
type Recorder interface {
	RecordLogin(result string)
	RecordTokenRefresh(result string)
	RecordIntervalFetch(tier string)
	RecordHTTPStatus(statusCode int)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	logins          *prometheus.CounterVec
	tokenRefreshes  *prometheus.CounterVec
	intervalFetches *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	registry        *prometheus.Registry
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eightapp_logins_total",
			Help: "Login attempts by result (success, rejected, provider_error, error).",
		}, []string{"result"}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eightapp_token_refreshes_total",
			Help: "Provider token refreshes by result (success, auth_error, error).",
		}, []string{"result"}),
		intervalFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eightapp_interval_fetches_total",
			Help: "Interval retrievals by the tier that satisfied them (typed, raw, empty).",
		}, []string{"tier"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eightapp_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(c.logins, c.tokenRefreshes, c.intervalFetches, c.httpStatus)
	return c
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordTokenRefresh(result string) {
	c.tokenRefreshes.WithLabelValues(result).Inc()
}

func (c *Collector) RecordIntervalFetch(tier string) {
	c.intervalFetches.WithLabelValues(tier).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the /metrics endpoint handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

var _ Recorder = (*Collector)(nil)

// NopRecorder discards all metrics. Used in tests.
type NopRecorder struct{}

func (NopRecorder) RecordLogin(string)         {}
func (NopRecorder) RecordTokenRefresh(string)  {}
func (NopRecorder) RecordIntervalFetch(string) {}
func (NopRecorder) RecordHTTPStatus(int)       {}

var _ Recorder = NopRecorder{}
