package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pipepricing/metrics"
	"pipepricing/services"
	"pipepricing/templates"
)

// pricedBatch is a parsed and priced forward / batch request.
type pricedBatch struct {
	catalog *services.Catalog
	input   services.ForwardInput
	result  services.BatchResult
}

func (b pricedBatch) operation() string {
	if len(b.input.Diameters) > 1 {
		return metrics.OpBatch
	}
	return metrics.OpForward
}

// priceRequest parses the pricing form and prices every requested size. A
// request where nothing could be priced returns the first failure.
func (c *Calculator) priceRequest(e *core.RequestEvent, sessionID string) (pricedBatch, error) {
	var b pricedBatch
	if err := e.Request.ParseForm(); err != nil {
		return b, &services.InvalidInputError{Message: "invalid form data"}
	}

	var sessionMaterial string
	c.Sessions.Update(sessionID, func(s *services.Session) {
		sessionMaterial = s.Material
	})

	cat, err := c.loadCatalog(e.Request.PostForm.Get("material"), sessionMaterial)
	if err != nil {
		return b, err
	}
	b.catalog = cat

	b.input, err = services.ParseForwardForm(e.Request.PostForm, cat.Attributes)
	if err != nil {
		return b, err
	}

	b.result = services.PriceBatch(cat, b.input.Diameters, b.input.Unit, b.input.Filters, b.input.TonPrice)
	if len(b.result.Items) == 0 && len(b.result.Skipped) > 0 {
		return b, b.result.Skipped[0].Err
	}
	return b, nil
}

// priceResultData converts a priced batch into the result fragment.
func priceResultData(b pricedBatch, currency string) templates.PriceResultData {
	data := templates.PriceResultData{
		Material: b.catalog.Material,
		TonPrice: services.FormatMoney(b.input.TonPrice),
		Currency: currency,
	}
	for _, it := range b.result.Items {
		row := templates.PriceRow{
			Input:         services.FormatNumber(it.Resolution.Input) + " " + string(it.Resolution.Unit),
			Diameter:      services.FormatNumber(it.Row.Diameter),
			Attributes:    specLabel(it.Row.Attributes),
			Weight:        services.FormatNumber(it.Row.Weight),
			PricePerMeter: services.FormatMoney(it.PricePerMeter),
		}
		if it.Resolution.Converted() {
			row.Converted = fmt.Sprintf("%s inch = %s mm",
				services.FormatNumber(it.Resolution.Input), services.FormatNumber(it.Resolution.TargetMM))
		}
		data.Rows = append(data.Rows, row)
	}
	for _, s := range b.result.Skipped {
		data.Skipped = append(data.Skipped, templates.SkipRow{
			Input:  services.FormatNumber(s.Input) + " " + string(b.input.Unit),
			Reason: userMessage(s.Err),
		})
	}
	return data
}

func specLabel(attrs services.AttributeSet) string {
	active := attrs.Active()
	if len(active) == 0 {
		return services.Sentinel
	}
	return active.String()
}

// HandlePrice prices one or more sizes and returns the result fragment.
// Route: POST /price
func HandlePrice(app *pocketbase.PocketBase, calc *Calculator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sessionID := ensureSession(e, calc.Sessions)

		b, err := calc.priceRequest(e, sessionID)
		calc.Metrics.ObserveRequest(b.operation(), outcomeOf(err))
		if err != nil {
			if errorStatus(err) == http.StatusInternalServerError {
				app.Logger().Error("price: request failed", "error", err)
			}
			return ErrorToast(e, errorStatus(err), userMessage(err))
		}

		if n := len(b.result.Skipped); n > 0 {
			SetToast(e, ToastInfo, fmt.Sprintf("%d of %d size(s) could not be priced", n, len(b.input.Diameters)))
		}
		return templates.PriceResult(priceResultData(b, calc.Config.Currency)).Render(e.Request.Context(), e.Response)
	}
}

// HandleQuotationAdd prices the requested sizes and appends every success to
// the session quotation. Failed sizes never touch the quotation.
// Route: POST /quotation/items
func HandleQuotationAdd(app *pocketbase.PocketBase, calc *Calculator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sessionID := ensureSession(e, calc.Sessions)

		b, err := calc.priceRequest(e, sessionID)
		calc.Metrics.ObserveRequest(b.operation(), outcomeOf(err))
		if err != nil {
			if errorStatus(err) == http.StatusInternalServerError {
				app.Logger().Error("quotation add: request failed", "error", err)
			}
			return ErrorToast(e, errorStatus(err), userMessage(err))
		}

		items := b.result.LineItems()
		calc.Sessions.Update(sessionID, func(s *services.Session) {
			s.Quotation.AddBatch(items...)
			s.Material = b.catalog.Material
		})
		calc.Metrics.AddLineItems(len(items))

		msg := fmt.Sprintf("Added %d item(s) to the quotation", len(items))
		if n := len(b.result.Skipped); n > 0 {
			msg += fmt.Sprintf(", %d skipped", n)
		}
		SetToast(e, ToastSuccess, msg)
		return templates.QuotationTable(calc.snapshotQuotation(sessionID)).Render(e.Request.Context(), e.Response)
	}
}
