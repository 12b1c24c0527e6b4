package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"

	"pipepricing/config"
	"pipepricing/metrics"
	"pipepricing/services"
	"pipepricing/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newTestCalculator wires a Calculator against catalogPath. An empty path
// leaves only uploads as a source.
func newTestCalculator(t *testing.T, app *pocketbase.PocketBase, catalogPath string) (*Calculator, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	if catalogPath == "" {
		catalogPath = t.TempDir() + "/missing.xlsx"
	}
	return &Calculator{
		Catalogs: services.NewCatalogProvider(app, catalogPath, nil),
		Sessions: services.NewSessionStore(0),
		Metrics:  metrics.NewPricingMetrics(reg),
		Config: &config.Config{
			DefaultMaterial: "HDPE",
			Currency:        "EGP",
			Disclaimer:      "Prices are indicative.",
		},
	}, reg
}

// newDefaultCalculator uses testhelpers.DefaultCatalog as the catalog file.
func newDefaultCalculator(t *testing.T) (*pocketbase.PocketBase, *Calculator, *prometheus.Registry) {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	calc, reg := newTestCalculator(t, app, testhelpers.WriteCatalogFile(t, testhelpers.DefaultCatalog))
	return app, calc, reg
}

// formRequest builds a form POST, optionally carrying a session cookie.
func formRequest(path string, form url.Values, session string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session})
	}
	return req
}

// sessionFrom returns the session cookie set on rec, or "".
func sessionFrom(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c.Value
		}
	}
	return ""
}

// toastOf decodes the showToast payload of rec.
func toastOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	_, toast := decodeToast(t, rec.Header().Get("HX-Trigger"))
	return toast
}

// counterValue sums every series of the named counter in reg.
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
