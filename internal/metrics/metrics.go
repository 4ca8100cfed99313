// Package metrics registers the prometheus collectors shared by the cafe and
// farma services. A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	ordersPlaced       prometheus.Counter
	orderStatusChanges *prometheus.CounterVec
	sales              *prometheus.CounterVec
	stockReceipts      *prometheus.CounterVec
	gatherer           prometheus.Gatherer
}

// New creates the collectors under namespace and registers them on reg.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "orders_placed_total", Help: "Orders placed.",
		}),
		orderStatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "order_status_changes_total", Help: "Order status changes by target status.",
		}, []string{"status"}),
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_total", Help: "Sale attempts by outcome.",
		}, []string{"outcome"}),
		stockReceipts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_receipts_total", Help: "Stock receipt attempts by outcome.",
		}, []string{"outcome"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.ordersPlaced,
		m.orderStatusChanges,
		m.sales,
		m.stockReceipts,
	)
	return m
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) OrderPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *Metrics) OrderStatusChanged(status string) {
	if m == nil {
		return
	}
	m.orderStatusChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) Sale(outcome string) {
	if m == nil {
		return
	}
	m.sales.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StockReceipt(outcome string) {
	if m == nil {
		return
	}
	m.stockReceipts.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	h := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
