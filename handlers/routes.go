package handlers

import (
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterRoutes binds the calculator pages on r. Session cookies are only
// issued by the calculator group, so /api, /_/ and /metrics stay cookie free.
// A nil registry leaves /metrics unregistered.
func RegisterRoutes(r *router.Router[*core.RequestEvent], app *pocketbase.PocketBase, calc *Calculator, registry *prometheus.Registry) {
	g := r.Group("")
	g.BindFunc(SessionMiddleware(calc.Sessions))

	// ── Calculator ───────────────────────────────────────────
	g.GET("/", HandleCalculatorPage(app, calc))
	g.POST("/price", HandlePrice(app, calc))
	g.POST("/reverse", HandleReverse(app, calc))

	// ── Quotation ────────────────────────────────────────────
	g.POST("/quotation/items", HandleQuotationAdd(app, calc))
	g.POST("/quotation/clear", HandleQuotationClear(app, calc))
	g.GET("/quotation/export/pdf", HandleQuotationExportPDF(app, calc))
	g.GET("/quotation/export/excel", HandleQuotationExportExcel(app, calc))

	// ── Catalog fallback ─────────────────────────────────────
	g.POST("/catalog/upload", HandleCatalogUpload(app, calc))
	g.GET("/catalog/template", HandleCatalogTemplate(app, calc))

	if registry != nil {
		r.GET("/metrics", HandleMetrics(registry))
	}
}
