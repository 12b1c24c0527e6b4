package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

func decodeToast(t *testing.T, header string) (map[string]json.RawMessage, map[string]string) {
	t.Helper()
	if header == "" {
		t.Fatal("expected HX-Trigger header to be set")
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(header), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	var toast map[string]string
	if err := json.Unmarshal(parsed["showToast"], &toast); err != nil {
		t.Fatalf("showToast is not valid JSON: %v", err)
	}
	return parsed, toast
}

func TestSetToast_Kinds(t *testing.T) {
	tests := []struct {
		name    string
		kind    ToastKind
		message string
	}{
		{"success", ToastSuccess, "Added 2 item(s) to the quotation"},
		{"info", ToastInfo, "1 of 3 size(s) could not be priced"},
		{"error", ToastError, "Standard not found: 90 mm PN 16"},
		{"quotes and markup", ToastError, `Material "<PE>" is not in the catalog`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := &core.RequestEvent{}
			e.Response = rec

			SetToast(e, tt.kind, tt.message)

			_, toast := decodeToast(t, rec.Header().Get("HX-Trigger"))
			if toast["type"] != string(tt.kind) {
				t.Errorf("expected type %q, got %q", tt.kind, toast["type"])
			}
			if toast["message"] != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, toast["message"])
			}
		})
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", `{"quotationChanged":{"count":"3"}}`)

	SetToast(e, ToastSuccess, "Quotation cleared")

	parsed, toast := decodeToast(t, rec.Header().Get("HX-Trigger"))
	if _, ok := parsed["quotationChanged"]; !ok {
		t.Error("expected quotationChanged to be preserved after merge")
	}
	if toast["message"] != "Quotation cleared" {
		t.Errorf("unexpected message %q", toast["message"])
	}
}

func TestSetToast_OverwritesInvalidExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", "notValidJSON")

	SetToast(e, ToastError, "Overwritten")

	_, toast := decodeToast(t, rec.Header().Get("HX-Trigger"))
	if toast["message"] != "Overwritten" {
		t.Errorf("unexpected message %q", toast["message"])
	}
}

func TestErrorToast(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	if err := ErrorToast(e, http.StatusBadRequest, "ton_price: must be a number"); err != nil {
		t.Fatalf("ErrorToast returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Errorf("expected HX-Reswap none, got %q", rec.Header().Get("HX-Reswap"))
	}
	_, toast := decodeToast(t, rec.Header().Get("HX-Trigger"))
	if toast["type"] != "error" {
		t.Errorf("expected error toast, got %q", toast["type"])
	}
}
