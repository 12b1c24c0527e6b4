package services

import (
	"strings"
	"time"
)

// QuotationExport holds all data needed to render a quotation document.
type QuotationExport struct {
	Title       string
	CompanyName string
	Currency    string
	GeneratedAt time.Time
	Disclaimer  string
	Table       ReportTable
	ItemCount   int
}

// ExportOptions carries the branding shown on exported documents.
type ExportOptions struct {
	CompanyName string
	Currency    string
	Disclaimer  string
	Now         func() time.Time
}

// BuildQuotationExport snapshots the quotation for export.
func BuildQuotationExport(q *Quotation, opts ExportOptions) QuotationExport {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	return QuotationExport{
		Title:       QuotationTitle(q.Materials()),
		CompanyName: opts.CompanyName,
		Currency:    opts.Currency,
		GeneratedAt: now(),
		Disclaimer:  opts.Disclaimer,
		Table:       q.Table(),
		ItemCount:   q.Len(),
	}
}

// QuotationTitle names the material families in the quotation.
func QuotationTitle(materials []string) string {
	if len(materials) == 0 {
		return "Pipe Quotation"
	}
	return strings.Join(materials, " / ") + " Pipe Quotation"
}

// Timestamp formats the generation time for document headers.
func (d QuotationExport) Timestamp() string {
	return d.GeneratedAt.Format("02 Jan 2006 15:04")
}

// PriceColumn returns the header of the price column with the currency.
func (d QuotationExport) PriceColumn() string {
	if d.Currency == "" {
		return "Price / m"
	}
	return "Price / m (" + d.Currency + ")"
}

// columns returns the table header with the currency applied to the price column.
func (d QuotationExport) columns() []string {
	cols := make([]string, len(d.Table.Columns))
	copy(cols, d.Table.Columns)
	if len(cols) > 3 {
		cols[3] = d.PriceColumn()
	}
	return cols
}
