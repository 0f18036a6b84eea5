package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Broker outcome labels
const (
	OutcomeSuccess        = "success"
	OutcomeInferenceError = "inference_error"
	OutcomeRejected       = "rejected"
)

// Metrics holds every collector the service exports
type Metrics struct {
	registry prometheus.Gatherer

	RequestCounter         *prometheus.CounterVec
	RequestDuration        *prometheus.HistogramVec
	BrokerRequests         *prometheus.CounterVec
	InferenceDuration      *prometheus.HistogramVec
	InteractionLogFailures prometheus.Counter
	EndpointUp             *prometheus.GaugeVec
	RateLimited            prometheus.Counter
	ConfigCacheLookups     *prometheus.CounterVec
	ArchivedRecords        prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestCounter: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		BrokerRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mcp_broker_requests_total",
			Help: "Broker invocations by outcome",
		}, []string{"outcome"}),
		InferenceDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcp_inference_duration_seconds",
			Help:    "Latency of inference calls",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"model", "result"}),
		InteractionLogFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "mcp_interaction_log_failures_total",
			Help: "Interaction records that could not be persisted",
		}),
		EndpointUp: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mcp_inference_endpoint_up",
			Help: "1 when the inference candidate answered its last probe",
		}, []string{"endpoint"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "mcp_rate_limited_total",
			Help: "Chat requests rejected by the rate limiter",
		}),
		ConfigCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mcp_ai_config_cache_lookups_total",
			Help: "Tenant config cache lookups by result",
		}, []string{"result"}),
		ArchivedRecords: f.NewCounter(prometheus.CounterOpts{
			Name: "mcp_archived_interactions_total",
			Help: "Interaction records written to object storage",
		}),
	}
}

// NewNop returns collectors bound to a throwaway registry
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Middleware records per-route request counts and latency
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			labels := []string{c.Request().Method, c.Path(), strconv.Itoa(status)}
			m.RequestCounter.WithLabelValues(labels...).Inc()
			m.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
