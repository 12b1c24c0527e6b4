package handlers

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandleMetrics exposes the registry in the Prometheus text format.
// Route: GET /metrics
func HandleMetrics(gatherer prometheus.Gatherer) func(*core.RequestEvent) error {
	h := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return func(e *core.RequestEvent) error {
		h.ServeHTTP(e.Response, e.Request)
		return nil
	}
}
