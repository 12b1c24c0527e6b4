package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pipepricing/config"
	"pipepricing/metrics"
	"pipepricing/services"
	"pipepricing/templates"
)

// Calculator bundles what the pricing handlers share.
type Calculator struct {
	Catalogs *services.CatalogProvider
	Sessions *services.SessionStore
	Metrics  *metrics.PricingMetrics
	Config   *config.Config
}

// exportOptions returns the branding applied to exported quotations.
func (c *Calculator) exportOptions() services.ExportOptions {
	return services.ExportOptions{
		CompanyName: c.Config.CompanyName,
		Currency:    c.Config.Currency,
		Disclaimer:  c.Config.Disclaimer,
	}
}

// pickMaterial returns the first candidate naming an available section,
// falling back to the first section.
func pickMaterial(sections []string, candidates ...string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		for _, s := range sections {
			if strings.EqualFold(s, c) {
				return s
			}
		}
	}
	if len(sections) > 0 {
		return sections[0]
	}
	return ""
}

// loadCatalog resolves the material for the request and loads it.
func (c *Calculator) loadCatalog(requested, sessionMaterial string) (*services.Catalog, error) {
	src, err := c.Catalogs.Source()
	if err != nil {
		c.Metrics.ObserveCatalogLoad("none", err)
		return nil, err
	}
	sections, err := c.Catalogs.Sections()
	if err != nil {
		c.Metrics.ObserveCatalogLoad(src.Kind, err)
		return nil, err
	}

	material := pickMaterial(sections, sessionMaterial, c.Config.DefaultMaterial)
	if requested != "" {
		material = requested
	}
	cat, err := c.Catalogs.Load(material)
	c.Metrics.ObserveCatalogLoad(src.Kind, err)
	return cat, err
}

// outcomeOf maps a pricing error onto a metrics label.
func outcomeOf(err error) string {
	var sectionErr *services.SectionMissingError
	switch {
	case err == nil:
		return "ok"
	case services.IsInvalidInput(err):
		return "invalid_input"
	case errors.Is(err, services.ErrNotFound):
		return "not_found"
	case errors.Is(err, services.ErrNotManufactured):
		return "not_manufactured"
	case errors.Is(err, services.ErrAllZeroWeight):
		return "all_zero_weight"
	case errors.Is(err, services.ErrSourceMissing):
		return "source_missing"
	case errors.As(err, &sectionErr):
		return "section_missing"
	default:
		return "error"
	}
}

// errorStatus maps a pricing error onto an HTTP status.
func errorStatus(err error) int {
	var sectionErr *services.SectionMissingError
	var columnErr *services.RequiredColumnMissingError
	switch {
	case services.IsInvalidInput(err), errors.As(err, &columnErr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrSourceMissing),
		errors.As(err, &sectionErr):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotManufactured), errors.Is(err, services.ErrAllZeroWeight):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// userMessage turns a pricing error into the text shown in the toast.
func userMessage(err error) string {
	var sectionErr *services.SectionMissingError
	var inputErr *services.InvalidInputError
	switch {
	case errors.As(err, &inputErr):
		return inputErr.Error()
	case errors.Is(err, services.ErrSourceMissing):
		return "No catalog available. Upload a catalog file to continue."
	case errors.As(err, &sectionErr):
		return fmt.Sprintf("Material %q is not in the catalog (available: %s)",
			sectionErr.Requested, strings.Join(sectionErr.Available, ", "))
	case errors.Is(err, services.ErrNotManufactured):
		return "Not manufactured: " + strings.TrimPrefix(err.Error(), services.ErrNotManufactured.Error()+": ")
	case errors.Is(err, services.ErrNotFound):
		return "Standard not found: " + strings.TrimPrefix(err.Error(), services.ErrNotFound.Error()+": ")
	case errors.Is(err, services.ErrAllZeroWeight):
		return "Every matching standard has zero weight, so no ton price can be implied"
	default:
		return "Something went wrong, please try again"
	}
}

// filterOptions builds one select per catalog attribute. The sentinel comes
// first and means "any".
func filterOptions(cat *services.Catalog, selected services.AttributeSet) []templates.AttributeFilter {
	filters := make([]templates.AttributeFilter, 0, len(cat.Attributes))
	for _, name := range cat.Attributes {
		current, _ := selected.Get(name)
		opts := []templates.Option{{Value: services.Sentinel, Label: "Any", Selected: current == "" || current == services.Sentinel}}
		for _, v := range cat.AttributeValues(name) {
			if v == services.Sentinel {
				continue
			}
			opts = append(opts, templates.Option{Value: v, Label: v, Selected: v == current})
		}
		filters = append(filters, templates.AttributeFilter{
			Name:    name,
			Field:   services.AttributeFieldPrefix + name,
			Options: opts,
		})
	}
	return filters
}

// quotationData renders the session quotation for the view.
func quotationData(q *services.Quotation, currency string) templates.QuotationData {
	table := q.Table()
	cols := table.Columns
	if len(cols) > 3 && currency != "" {
		cols[3] = "Price / m (" + currency + ")"
	}
	return templates.QuotationData{
		Columns: cols,
		Rows:    table.Rows,
		Count:   q.Len(),
		Total:   services.FormatCurrency(q.Total(), currency),
	}
}

// snapshotQuotation copies the session quotation for rendering.
func (c *Calculator) snapshotQuotation(sessionID string) templates.QuotationData {
	var data templates.QuotationData
	c.Sessions.Update(sessionID, func(s *services.Session) {
		data = quotationData(s.Quotation, c.Config.Currency)
	})
	return data
}
