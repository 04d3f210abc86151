package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "relytailors"

// Metrics owns a private Prometheus registry so tests and parallel servers
// never collide on the global default registerer.
type Metrics struct {
	Registry *prometheus.Registry

	NotificationsSent    prometheus.Counter
	NotificationsFailed  prometheus.Counter
	NotificationDuration prometheus.Histogram

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Emails handed to the mail dispatcher successfully.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "failed_total",
			Help:      "Emails dropped because decoding or delivery failed.",
		}),
		NotificationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "send_duration_seconds",
			Help:      "Time spent in a single dispatcher send.",
			Buckets:   prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.NotificationsSent,
		m.NotificationsFailed,
		m.NotificationDuration,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// CounterValue reads the current value of c, for status endpoints that
// report a counter without scraping.
func CounterValue(c prometheus.Counter) uint64 {
	var out dto.Metric
	if err := c.Write(&out); err != nil {
		return 0
	}
	return uint64(out.GetCounter().GetValue())
}
