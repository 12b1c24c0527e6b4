package handlers

import (
	"errors"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pipepricing/services"
	"pipepricing/templates"
)

// HandleCalculatorPage renders the calculator. The optional ?material= query
// switches the material family for this session.
// Route: GET /
func HandleCalculatorPage(app *pocketbase.PocketBase, calc *Calculator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sessionID := ensureSession(e, calc.Sessions)

		var sessionMaterial string
		calc.Sessions.Update(sessionID, func(s *services.Session) {
			sessionMaterial = s.Material
		})

		data := templates.CalculatorData{
			Title:       "Pipe Price Calculator",
			CompanyName: calc.Config.CompanyName,
			Currency:    calc.Config.Currency,
			Units: []templates.Option{
				{Value: string(services.UnitMM), Label: "mm", Selected: true},
				{Value: string(services.UnitInch), Label: "inch"},
			},
		}

		cat, err := calc.loadCatalog(strings.TrimSpace(e.Request.URL.Query().Get("material")), sessionMaterial)
		if err != nil {
			if !errors.Is(err, services.ErrSourceMissing) {
				app.Logger().Warn("calculator page: catalog load failed", "error", err)
			}
			data.CatalogError = userMessage(err)
		} else {
			calc.Sessions.Update(sessionID, func(s *services.Session) {
				s.Material = cat.Material
			})
			data.Material = cat.Material
			data.Filters = filterOptions(cat, nil)
			for _, d := range cat.Diameters() {
				label := services.FormatNumber(d)
				data.Diameters = append(data.Diameters, templates.Option{Value: label, Label: label})
			}
		}

		if src, err := calc.Catalogs.Source(); err == nil {
			data.Source = src.Name
			if src.Kind == services.SourceUpload {
				data.Source += " (uploaded)"
			}
			sections, _ := calc.Catalogs.Sections()
			for _, s := range sections {
				data.Materials = append(data.Materials, templates.Option{
					Value:    s,
					Label:    s,
					Selected: strings.EqualFold(s, data.Material),
				})
			}
		}

		data.Quotation = calc.snapshotQuotation(sessionID)
		return templates.CalculatorPage(data).Render(e.Request.Context(), e.Response)
	}
}
