// Package metrics holds the Prometheus collectors for the service.
// All recording methods are safe on a nil *Metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "store_payments"

// Metrics groups the service's Prometheus collectors.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	OrdersCreated    *prometheus.CounterVec
	Reconciliations  *prometheus.CounterVec
	GatewayDuration  *prometheus.HistogramVec
	WalletOperations *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "orders", Name: "created_total",
			Help: "Order creation attempts by outcome.",
		}, []string{"outcome"}),
		Reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "orders", Name: "reconciliations_total",
			Help: "Payment signals by source, mapped status and result.",
		}, []string{"source", "status", "result"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "gateway", Name: "request_duration_seconds",
			Help:    "Payment gateway call latency by operation and outcome.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"operation", "outcome"}),
		WalletOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "wallet", Name: "operations_total",
			Help: "Wallet mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.OrdersCreated,
		m.Reconciliations,
		m.GatewayDuration,
		m.WalletOperations,
	)
	return m
}

// ObserveHTTP records a completed request. route should be a route pattern, not a raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.HTTPRequests.WithLabelValues(method, route, code).Inc()
	m.HTTPDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// OrderCreated records the outcome of an order creation attempt.
func (m *Metrics) OrderCreated(outcome string) {
	if m == nil {
		return
	}
	m.OrdersCreated.WithLabelValues(outcome).Inc()
}

// Reconciled records the result of applying a payment signal.
func (m *Metrics) Reconciled(source, status, result string) {
	if m == nil {
		return
	}
	m.Reconciliations.WithLabelValues(source, status, result).Inc()
}

// ObserveGatewayCall records the latency of one gateway call.
func (m *Metrics) ObserveGatewayCall(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.GatewayDuration.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

// WalletOperation records the outcome of a wallet mutation.
func (m *Metrics) WalletOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.WalletOperations.WithLabelValues(operation, outcome).Inc()
}
