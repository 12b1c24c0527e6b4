package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pipepricing/services"
	"pipepricing/templates"
)

// buildExportData snapshots the session quotation for export.
func buildExportData(calc *Calculator, sessionID string) services.QuotationExport {
	var data services.QuotationExport
	calc.Sessions.Update(sessionID, func(s *services.Session) {
		data = services.BuildQuotationExport(s.Quotation, calc.exportOptions())
	})
	return data
}

// sanitizeFilename replaces characters that are unsafe in download names.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

func exportFilename(data services.QuotationExport, ext string) string {
	return fmt.Sprintf("%s_%s.%s", sanitizeFilename(data.Title), data.GeneratedAt.Format("20060102"), ext)
}

// HandleQuotationClear empties the session quotation.
// Route: POST /quotation/clear
func HandleQuotationClear(app *pocketbase.PocketBase, calc *Calculator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sessionID := ensureSession(e, calc.Sessions)
		calc.Sessions.Update(sessionID, func(s *services.Session) {
			s.Quotation.Clear()
		})
		SetToast(e, ToastSuccess, "Quotation cleared")
		return templates.QuotationTable(calc.snapshotQuotation(sessionID)).Render(e.Request.Context(), e.Response)
	}
}

// HandleQuotationExportExcel downloads the session quotation as .xlsx.
// Route: GET /quotation/export/excel
func HandleQuotationExportExcel(app *pocketbase.PocketBase, calc *Calculator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := buildExportData(calc, ensureSession(e, calc.Sessions))

		xlsxBytes, err := services.GenerateQuotationExcel(data)
		if err != nil {
			app.Logger().Error("export_excel: failed to generate", "error", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}
		calc.Metrics.IncExport("excel")

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(data, "xlsx")))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleQuotationExportPDF downloads the session quotation as PDF.
// Route: GET /quotation/export/pdf
func HandleQuotationExportPDF(app *pocketbase.PocketBase, calc *Calculator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := buildExportData(calc, ensureSession(e, calc.Sessions))

		pdfBytes, err := services.GenerateQuotationPDF(data)
		if err != nil {
			app.Logger().Error("export_pdf: failed to generate", "error", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}
		calc.Metrics.IncExport("pdf")

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(data, "pdf")))
		e.Response.Write(pdfBytes)
		return nil
	}
}
