package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pipepricing/metrics"
	"pipepricing/services"
	"pipepricing/templates"
)

// maxUploadSize bounds catalog uploads.
const maxUploadSize = 10 << 20

var defaultTemplateMaterials = []string{"HDPE", "UPVC"}
var defaultTemplateAttributes = []string{"PN", "SDR"}

// HandleCatalogUpload receives a replacement catalog, normalizes it the same
// way as the catalog file and stores it as the fallback source.
// Route: POST /catalog/upload
func HandleCatalogUpload(app *pocketbase.PocketBase, calc *Calculator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseMultipartForm(maxUploadSize); err != nil {
			calc.Metrics.ObserveRequest(metrics.OpUpload, "invalid_input")
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			calc.Metrics.ObserveRequest(metrics.OpUpload, "invalid_input")
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".xlsx" && ext != ".csv" {
			calc.Metrics.ObserveRequest(metrics.OpUpload, "invalid_input")
			return ErrorToast(e, http.StatusBadRequest, "Upload an .xlsx or .csv catalog")
		}

		result, err := calc.Catalogs.Import(file, header.Filename)
		if err != nil {
			var columnErr *services.RequiredColumnMissingError
			if errors.As(err, &columnErr) {
				calc.Metrics.ObserveRequest(metrics.OpUpload, "invalid_input")
				return ErrorToast(e, http.StatusBadRequest, columnErr.Error())
			}
			calc.Metrics.ObserveRequest(metrics.OpUpload, "error")
			app.Logger().Error("catalog_upload: import failed", "file", header.Filename, "error", err)
			return ErrorToast(e, http.StatusBadRequest, "Could not read the catalog file")
		}
		calc.Metrics.ObserveRequest(metrics.OpUpload, "ok")
		app.Logger().Info("catalog_upload: stored replacement catalog",
			"file", result.FileName, "sections", result.Sections, "rows", result.Rows, "skipped", result.Skipped)

		if src, err := calc.Catalogs.Source(); err == nil && src.Kind == services.SourceFile {
			SetToast(e, ToastInfo, fmt.Sprintf("Catalog %s stored as fallback; %s stays active", result.FileName, src.Name))
		} else {
			SetToast(e, ToastSuccess, fmt.Sprintf("Catalog %s loaded (%d rows)", result.FileName, result.Rows))
		}
		return templates.UploadResult(templates.UploadResultData{
			FileName: result.FileName,
			Sections: result.Sections,
			Rows:     result.Rows,
			Skipped:  result.Skipped,
		}).Render(e.Request.Context(), e.Response)
	}
}

// HandleCatalogTemplate serves an Excel template for preparing a catalog.
// The sheets and attribute columns follow the active catalog when there is one.
// Route: GET /catalog/template
func HandleCatalogTemplate(app *pocketbase.PocketBase, calc *Calculator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		materials := defaultTemplateMaterials
		attributes := defaultTemplateAttributes
		if sections, err := calc.Catalogs.Sections(); err == nil && len(sections) > 0 {
			materials = sections
			if cat, err := calc.Catalogs.Load(sections[0]); err == nil {
				attributes = cat.Attributes
			}
		}

		columns := services.CatalogTemplateColumns(attributes, calc.Config.RequiredAttributes)
		xlsxBytes, err := services.GenerateCatalogTemplate(materials, columns)
		if err != nil {
			app.Logger().Error("catalog_template: failed to generate", "error", err)
			return e.String(http.StatusInternalServerError, "Failed to generate template")
		}

		filename := fmt.Sprintf("Pipe_Catalog_Template_%d.xlsx", time.Now().Year())
		e.Response.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
