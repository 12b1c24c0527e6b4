package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"pipepricing/testhelpers"
)

func priceForm(ton, diameters string, extra ...string) url.Values {
	form := url.Values{
		"ton_price": {ton},
		"diameters": {diameters},
		"unit":      {"mm"},
	}
	for i := 0; i+1 < len(extra); i += 2 {
		form.Set(extra[i], extra[i+1])
	}
	return form
}

func TestHandlePrice_Forward(t *testing.T) {
	app, calc, _ := newDefaultCalculator(t)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, formRequest("/price", priceForm("50000", "110", "attr:PN", "10"), ""), rec)

	if err := HandlePrice(app, calc)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "142.50", "PN 10 / SDR 17", "2.85")
	if rec.Header().Get("HX-Trigger") != "" {
		t.Errorf("expected no toast, got %q", rec.Header().Get("HX-Trigger"))
	}
}

func TestHandlePrice_InchConversion(t *testing.T) {
	app, calc, _ := newDefaultCalculator(t)

	form := priceForm("50000", "4", "attr:PN", "10")
	form.Set("unit", "inch")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, formRequest("/price", form, ""), rec)

	if err := HandlePrice(app, calc)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	// 4 inch = 101.6 mm snaps to 110 mm.
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "4 inch = 101.6 mm", "142.50")
}

func TestHandlePrice_InvalidTonPrice(t *testing.T) {
	tests := []struct {
		name string
		ton  string
	}{
		{"empty", ""},
		{"zero", "0"},
		{"not a number", "abc"},
		{"negative", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, calc, _ := newDefaultCalculator(t)

			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, formRequest("/price", priceForm(tt.ton, "110"), ""), rec)

			if err := HandlePrice(app, calc)(e); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if toastOf(t, rec)["type"] != "error" {
				t.Error("expected an error toast")
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("expected HX-Reswap none")
			}
		})
	}
}

func TestHandlePrice_NotManufactured(t *testing.T) {
	app, calc, reg := newDefaultCalculator(t)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, formRequest("/price", priceForm("50000", "20"), ""), rec)

	if err := HandlePrice(app, calc)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if msg := toastOf(t, rec)["message"]; !strings.HasPrefix(msg, "Not manufactured") {
		t.Errorf("unexpected toast message %q", msg)
	}
	if n, err := testutil.GatherAndCount(reg, "pipe_pricing_requests_total"); err != nil || n != 1 {
		t.Errorf("expected 1 request series, got %d (%v)", n, err)
	}
}

func TestHandlePrice_StandardNotFound(t *testing.T) {
	app, calc, _ := newDefaultCalculator(t)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, formRequest("/price", priceForm("50000", "160", "attr:PN", "16"), ""), rec)

	if err := HandlePrice(app, calc)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if msg := toastOf(t, rec)["message"]; !strings.HasPrefix(msg, "Standard not found") {
		t.Errorf("unexpected toast message %q", msg)
	}
}

func TestHandlePrice_BatchWithSkips(t *testing.T) {
	app, calc, _ := newDefaultCalculator(t)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, formRequest("/price", priceForm("50000", "20, 110, 160", "attr:PN", "10"), ""), rec)

	if err := HandlePrice(app, calc)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "142.50", "300.00", "20 mm: Not manufactured")

	toast := toastOf(t, rec)
	if toast["type"] != "info" {
		t.Errorf("expected info toast, got %q", toast["type"])
	}
	if toast["message"] != "1 of 3 size(s) could not be priced" {
		t.Errorf("unexpected toast message %q", toast["message"])
	}
}

func TestHandlePrice_UnknownMaterial(t *testing.T) {
	app, calc, _ := newDefaultCalculator(t)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, formRequest("/price", priceForm("50000", "110", "material", "PPR"), ""), rec)

	if err := HandlePrice(app, calc)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if msg := toastOf(t, rec)["message"]; !strings.Contains(msg, "available: HDPE, UPVC") {
		t.Errorf("unexpected toast message %q", msg)
	}
}

func TestHandleQuotationAdd_AppendsToSession(t *testing.T) {
	app, calc, reg := newDefaultCalculator(t)
	handler := HandleQuotationAdd(app, calc)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, formRequest("/quotation/items", priceForm("50000", "160, 110", "attr:PN", "10"), ""), rec)
	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	session := sessionFrom(rec)
	if session == "" {
		t.Fatal("expected a session cookie")
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "2 item(s)", "Price / m (EGP)")
	if msg := toastOf(t, rec)["message"]; msg != "Added 2 item(s) to the quotation" {
		t.Errorf("unexpected toast message %q", msg)
	}

	// A second add on the same session accumulates.
	rec = httptest.NewRecorder()
	e = newTestRequestEvent(app, formRequest("/quotation/items", priceForm("50000", "63", "attr:PN", "16"), session), rec)
	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	items, material, _ := calc.Sessions.Snapshot(session)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if material != "HDPE" {
		t.Errorf("session material = %q, want HDPE", material)
	}
	// Sorted by diameter regardless of insertion order.
	for i, want := range []float64{63, 110, 160} {
		if items[i].Diameter != want {
			t.Errorf("item %d diameter = %v, want %v", i, items[i].Diameter, want)
		}
	}
	if got := counterValue(t, reg, "pipe_quotation_line_items_total"); got != 3 {
		t.Errorf("line items counter = %v, want 3", got)
	}
}

func TestHandleQuotationAdd_FailureLeavesQuotation(t *testing.T) {
	app, calc, _ := newDefaultCalculator(t)
	handler := HandleQuotationAdd(app, calc)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, formRequest("/quotation/items", priceForm("50000", "110", "attr:PN", "10"), ""), rec)
	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	session := sessionFrom(rec)

	rec = httptest.NewRecorder()
	e = newTestRequestEvent(app, formRequest("/quotation/items", priceForm("50000", "20"), session), rec)
	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}

	items, _, _ := calc.Sessions.Snapshot(session)
	if len(items) != 1 {
		t.Errorf("expected the quotation to keep 1 item, got %d", len(items))
	}
}

func TestHandleQuotationAdd_SkipsReported(t *testing.T) {
	app, calc, _ := newDefaultCalculator(t)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, formRequest("/quotation/items", priceForm("50000", "20, 110"), ""), rec)
	if err := HandleQuotationAdd(app, calc)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if msg := toastOf(t, rec)["message"]; msg != "Added 1 item(s) to the quotation, 1 skipped" {
		t.Errorf("unexpected toast message %q", msg)
	}
}
