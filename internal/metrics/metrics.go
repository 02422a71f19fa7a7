package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns every collector the service exports, all registered on one
// private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	SalesCommitted  prometheus.Counter
	SaleRevenue     prometheus.Counter
	SalesRejected   *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
	StockMutations  *prometheus.CounterVec
	NotifyQueueSize prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		SalesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pharmacy_sales_committed_total",
			Help: "Sales committed by the checkout engine",
		}),
		SaleRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pharmacy_sales_revenue_total",
			Help: "Sum of committed sale totals",
		}),
		SalesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmacy_sales_rejected_total",
			Help: "Checkouts aborted before commit, by reason",
		}, []string{"reason"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmacy_notifications_total",
			Help: "Notification jobs by kind and outcome",
		}, []string{"kind", "outcome"}),
		StockMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmacy_stock_mutations_total",
			Help: "Stock quantity changes by source",
		}, []string{"source"}),
		NotifyQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pharmacy_notify_queue_length",
			Help: "Jobs waiting in the notification queue",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration,
		m.SalesCommitted, m.SaleRevenue, m.SalesRejected,
		m.Notifications, m.StockMutations, m.NotifyQueueSize,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count and latency labelled by the chi route
// pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := strconv.Itoa(ww.Status())
		m.requests.WithLabelValues(r.Method, path, status).Inc()
		m.duration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}
