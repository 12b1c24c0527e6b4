// Package templates renders the calculator page and its HTMX fragments.
package templates

import (
	"context"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

//go:embed views/*.html
var viewFS embed.FS

var views = template.Must(template.New("views").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(viewFS, "views/*.html"))

// render adapts a named view to templ.Component so handlers can treat every
// page and fragment alike.
func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return views.ExecuteTemplate(w, name, data)
	})
}

// Option is one entry of a select element.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// AttributeFilter is the select for one catalog attribute. Field is the form
// field name carrying the selection.
type AttributeFilter struct {
	Name    string
	Field   string
	Options []Option
}

// CalculatorData is everything the calculator page shows.
type CalculatorData struct {
	Title        string
	CompanyName  string
	Currency     string
	Material     string
	Materials    []Option
	Source       string
	CatalogError string
	Filters      []AttributeFilter
	Diameters    []Option
	Units        []Option
	Quotation    QuotationData
}

// CalculatorPage renders the full page.
func CalculatorPage(data CalculatorData) templ.Component {
	return render("page", data)
}

// PriceRow is one priced size.
type PriceRow struct {
	Input         string
	Diameter      string
	Converted     string
	Attributes    string
	Weight        string
	PricePerMeter string
}

// SkipRow is a batch entry that could not be priced.
type SkipRow struct {
	Input  string
	Reason string
}

// PriceResultData is the forward / batch pricing result.
type PriceResultData struct {
	Material string
	TonPrice string
	Currency string
	Rows     []PriceRow
	Skipped  []SkipRow
}

// PriceResult renders the forward / batch result fragment.
func PriceResult(data PriceResultData) templ.Component {
	return render("price_result", data)
}

// QuotationData is the accumulated quotation table.
type QuotationData struct {
	Columns []string
	Rows    [][]string
	Count   int
	Total   string
}

// QuotationTable renders the quotation fragment.
func QuotationTable(data QuotationData) templ.Component {
	return render("quotation", data)
}

// ReverseRow is one candidate standard of a reverse analysis.
type ReverseRow struct {
	Attributes string
	Weight     string
	TonPrice   string
}

// ReverseResultData is the reverse analysis result.
type ReverseResultData struct {
	Material  string
	Diameter  string
	Observed  string
	Currency  string
	Ambiguous bool
	Rows      []ReverseRow
}

// ReverseResult renders the reverse analysis fragment.
func ReverseResult(data ReverseResultData) templ.Component {
	return render("reverse_result", data)
}

// UploadResultData summarizes an uploaded replacement catalog.
type UploadResultData struct {
	FileName string
	Sections []string
	Rows     int
	Skipped  int
}

// UploadResult renders the upload confirmation fragment.
func UploadResult(data UploadResultData) templ.Component {
	return render("upload_result", data)
}
