package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pipepricing/metrics"
	"pipepricing/services"
	"pipepricing/templates"
)

// HandleReverse infers the ton price behind an offered price per meter.
// Route: POST /reverse
func HandleReverse(app *pocketbase.PocketBase, calc *Calculator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sessionID := ensureSession(e, calc.Sessions)

		result, err := calc.reverseRequest(e, sessionID)
		calc.Metrics.ObserveRequest(metrics.OpReverse, outcomeOf(err))
		if err != nil {
			if errorStatus(err) == http.StatusInternalServerError {
				app.Logger().Error("reverse: request failed", "error", err)
			}
			return ErrorToast(e, errorStatus(err), userMessage(err))
		}

		data := templates.ReverseResultData{
			Material:  result.Material,
			Diameter:  services.FormatNumber(result.Diameter),
			Observed:  services.FormatMoney(result.Observed),
			Currency:  calc.Config.Currency,
			Ambiguous: result.Ambiguous,
		}
		for _, c := range result.Candidates {
			data.Rows = append(data.Rows, templates.ReverseRow{
				Attributes: specLabel(c.Row.Attributes),
				Weight:     services.FormatNumber(c.Row.Weight),
				TonPrice:   services.FormatMoney(c.TonPrice),
			})
		}
		return templates.ReverseResult(data).Render(e.Request.Context(), e.Response)
	}
}

func (c *Calculator) reverseRequest(e *core.RequestEvent, sessionID string) (services.ReverseResult, error) {
	if err := e.Request.ParseForm(); err != nil {
		return services.ReverseResult{}, &services.InvalidInputError{Message: "invalid form data"}
	}

	var sessionMaterial string
	c.Sessions.Update(sessionID, func(s *services.Session) {
		sessionMaterial = s.Material
	})

	cat, err := c.loadCatalog(e.Request.PostForm.Get("material"), sessionMaterial)
	if err != nil {
		return services.ReverseResult{}, err
	}

	in, err := services.ParseReverseForm(e.Request.PostForm, cat.Attributes)
	if err != nil {
		return services.ReverseResult{}, err
	}
	return services.PriceReverse(cat, in.Diameter, in.Filters, in.Observed)
}
