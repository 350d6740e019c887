// Package metrics expone las métricas Prometheus del servicio.
//
// Cada Metrics tiene su propio registro para que los tests no compartan estado
// con el registro global del proceso.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stock_ledger"

// Metrics agrupa los colectores del ledger y de la capa HTTP.
type Metrics struct {
	registry *prometheus.Registry

	MovementsTotal    *prometheus.CounterVec   // labels: type
	RejectedTotal     *prometheus.CounterVec   // labels: operation, reason
	OperationDuration *prometheus.HistogramVec // labels: operation
	DriftItems        prometheus.Gauge

	HTTPRequestsTotal   *prometheus.CounterVec   // labels: method, route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route
}

// New crea y registra todos los colectores, más los de Go runtime y proceso.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		MovementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_total",
			Help:      "Movimientos de stock registrados por tipo.",
		}, []string{"type"}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_operations_total",
			Help:      "Operaciones del ledger rechazadas por motivo.",
		}, []string{"operation", "reason"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duración de las operaciones del ledger (incluye espera del lock).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DriftItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drift_items",
			Help:      "Productos cuya cantidad no coincide con el replay del log en la última auditoría.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.MovementsTotal,
		m.RejectedTotal,
		m.OperationDuration,
		m.DriftItems,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry devuelve el registro (tests y colectores adicionales).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler handler HTTP para /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Helpers nil-safe: los componentes aceptan un *Metrics opcional.

// ObserveMovement cuenta un movimiento registrado.
func (m *Metrics) ObserveMovement(movementType string) {
	if m == nil {
		return
	}
	m.MovementsTotal.WithLabelValues(movementType).Inc()
}

// ObserveRejected cuenta una operación rechazada.
func (m *Metrics) ObserveRejected(operation, reason string) {
	if m == nil {
		return
	}
	m.RejectedTotal.WithLabelValues(operation, reason).Inc()
}

// ObserveDuration registra la duración en segundos de una operación.
func (m *Metrics) ObserveDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

// SetDrift fija el número de productos con deriva.
func (m *Metrics) SetDrift(n int) {
	if m == nil {
		return
	}
	m.DriftItems.Set(float64(n))
}

// ObserveHTTP registra una petición HTTP.
func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
