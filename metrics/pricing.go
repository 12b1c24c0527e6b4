// Package metrics exposes Prometheus counters for the calculator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Pricing operations.
const (
	OpForward = "forward"
	OpBatch   = "batch"
	OpReverse = "reverse"
	OpUpload  = "upload"
)

// PricingMetrics counts pricing outcomes, exports and catalog loads.
type PricingMetrics struct {
	requests     *prometheus.CounterVec
	exports      *prometheus.CounterVec
	catalogLoads *prometheus.CounterVec
	lineItems    prometheus.Counter
}

// NewPricingMetrics registers the metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipe_pricing_requests_total",
		Help: "Pricing requests by operation and outcome.",
	}, []string{"operation", "outcome"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipe_quotation_exports_total",
		Help: "Quotation exports by format.",
	}, []string{"format"})
	catalogLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipe_catalog_loads_total",
		Help: "Catalog loads by source kind and result.",
	}, []string{"source", "result"})
	lineItems := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipe_quotation_line_items_total",
		Help: "Line items appended to quotations.",
	})
	reg.MustRegister(requests, exports, catalogLoads, lineItems)
	return &PricingMetrics{
		requests:     requests,
		exports:      exports,
		catalogLoads: catalogLoads,
		lineItems:    lineItems,
	}
}

// ObserveRequest counts one pricing request.
func (m *PricingMetrics) ObserveRequest(operation, outcome string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// IncExport counts one quotation download.
func (m *PricingMetrics) IncExport(format string) {
	if m == nil || m.exports == nil {
		return
	}
	m.exports.WithLabelValues(normalizeLabel(format)).Inc()
}

// ObserveCatalogLoad counts one catalog load attempt.
func (m *PricingMetrics) ObserveCatalogLoad(source string, err error) {
	if m == nil || m.catalogLoads == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.catalogLoads.WithLabelValues(normalizeLabel(source), result).Inc()
}

// AddLineItems counts items appended to a quotation.
func (m *PricingMetrics) AddLineItems(n int) {
	if m == nil || m.lineItems == nil || n <= 0 {
		return
	}
	m.lineItems.Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
