package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"pipepricing/services"
	"pipepricing/testhelpers"
)

// multipartUpload builds a catalog upload request for fileName.
func multipartUpload(t *testing.T, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/catalog/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	return req
}

func TestHandleCatalogUpload_BecomesSource(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	calc, _ := newTestCalculator(t, app, "")

	rec := httptest.NewRecorder()
	req := multipartUpload(t, "replacement.xlsx", testhelpers.CatalogWorkbook(t, testhelpers.DefaultCatalog))
	if err := HandleCatalogUpload(app, calc)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "replacement.xlsx", "9 row(s)", "HDPE, UPVC")

	toast := toastOf(t, rec)
	if toast["type"] != "success" {
		t.Errorf("expected success toast, got %q: %s", toast["type"], toast["message"])
	}

	src, err := calc.Catalogs.Source()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if src.Kind != services.SourceUpload || src.Name != "replacement.xlsx" {
		t.Errorf("unexpected source %+v", src)
	}

	// Pricing now runs against the uploaded rows.
	priced := httptest.NewRecorder()
	e := newTestRequestEvent(app, formRequest("/price", priceForm("50000", "110", "attr:PN", "10"), ""), priced)
	if err := HandlePrice(app, calc)(e); err != nil {
		t.Fatalf("price handler returned error: %v", err)
	}
	if priced.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", priced.Code, priced.Body.String())
	}
	testhelpers.AssertHTMLContains(t, priced.Body.String(), "142.50")
}

func TestHandleCatalogUpload_FilledTemplate(t *testing.T) {
	app, calc, _ := newDefaultCalculator(t)

	download := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/catalog/template", nil)
	if err := HandleCatalogTemplate(app, calc)(newTestRequestEvent(app, req, download)); err != nil {
		t.Fatalf("template handler returned error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(download.Body.Bytes()))
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	defer f.Close()

	values := map[string]any{"Diameter": 110, "PN": 10, "SDR": 17, "Class": 4, "Weight": 2.85}
	for _, sheet := range []string{"HDPE", "UPVC"} {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			t.Fatalf("read sheet %s: %v", sheet, err)
		}
		row := make([]any, len(rows[0]))
		for i, label := range rows[0] {
			row[i] = values[label]
		}
		if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
			t.Fatalf("fill sheet %s: %v", sheet, err)
		}
	}
	var filled bytes.Buffer
	if err := f.Write(&filled); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rec := httptest.NewRecorder()
	upload := multipartUpload(t, "filled.xlsx", filled.Bytes())
	if err := HandleCatalogUpload(app, calc)(newTestRequestEvent(app, upload, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "filled.xlsx", "2 row(s)", "HDPE, UPVC")
	testhelpers.AssertHTMLNotContains(t, rec.Body.String(), "Instructions")
	if toast := toastOf(t, rec); toast["type"] != "info" {
		t.Errorf("expected info toast, got %q: %s", toast["type"], toast["message"])
	}
}

func TestHandleCatalogUpload_FileStaysActive(t *testing.T) {
	app, calc, _ := newDefaultCalculator(t)

	rec := httptest.NewRecorder()
	req := multipartUpload(t, "fallback.csv", []byte("Diameter,PN,Weight\n110,10,2.85\n"))
	if err := HandleCatalogUpload(app, calc)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	toast := toastOf(t, rec)
	if toast["type"] != "info" || !strings.Contains(toast["message"], "catalog.xlsx stays active") {
		t.Errorf("unexpected toast %+v", toast)
	}
	if src, _ := calc.Catalogs.Source(); src.Kind != services.SourceFile {
		t.Errorf("expected the file to stay the source, got %q", src.Kind)
	}
}

func TestHandleCatalogUpload_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  []byte
		message  string
	}{
		{"wrong extension", "catalog.pdf", []byte("%PDF"), "Upload an .xlsx or .csv catalog"},
		{"missing weight", "catalog.csv", []byte("Diameter,PN\n110,10\n"), "missing required column(s): Weight"},
		{"broken workbook", "catalog.xlsx", []byte("not a zip"), "Could not read the catalog file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			calc, _ := newTestCalculator(t, app, "")

			rec := httptest.NewRecorder()
			req := multipartUpload(t, tt.fileName, tt.content)
			if err := HandleCatalogUpload(app, calc)(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if msg := toastOf(t, rec)["message"]; !strings.Contains(msg, tt.message) {
				t.Errorf("toast %q does not contain %q", msg, tt.message)
			}
			if _, err := calc.Catalogs.Source(); err == nil {
				t.Error("expected no catalog source after a rejected upload")
			}
		})
	}
}

func TestHandleCatalogUpload_NoFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	calc, _ := newTestCalculator(t, app, "")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("note", "nothing attached")
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/catalog/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()

	if err := HandleCatalogUpload(app, calc)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCatalogTemplate(t *testing.T) {
	tests := []struct {
		name       string
		withSource bool
		sheets     []string
	}{
		{"from active catalog", true, []string{"HDPE", "UPVC"}},
		{"defaults without catalog", false, []string{"HDPE", "UPVC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			path := ""
			if tt.withSource {
				path = testhelpers.WriteCatalogFile(t, testhelpers.DefaultCatalog)
			}
			calc, _ := newTestCalculator(t, app, path)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/catalog/template", nil)
			if err := HandleCatalogTemplate(app, calc)(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Pipe_Catalog_Template_") {
				t.Errorf("unexpected content disposition %q", cd)
			}

			f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
			if err != nil {
				t.Fatalf("open template: %v", err)
			}
			defer f.Close()
			for _, s := range tt.sheets {
				header, err := f.GetRows(s)
				if err != nil {
					t.Fatalf("read sheet %s: %v", s, err)
				}
				if len(header) == 0 || header[0][0] != "Diameter" || header[0][len(header[0])-1] != "Weight" {
					t.Errorf("sheet %s header = %v", s, header)
				}
			}
		})
	}
}
