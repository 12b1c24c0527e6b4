package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// pdfColumnSpan is the grid width of every table column.
const pdfColumnSpan = 2

// GenerateQuotationPDF renders the quotation as a paginated PDF using
// maroto/v2. The title block and column header repeat on every page; the
// disclaimer is the page footer.
func GenerateQuotationPDF(data QuotationExport) ([]byte, error) {
	columns := data.columns()
	gridSize := len(columns) * pdfColumnSpan
	if gridSize == 0 {
		gridSize = 12
	}

	cfg := config.NewBuilder().
		WithOrientation(orientationFor(len(columns))).
		WithPageSize(pagesize.A4).
		WithMaxGridSize(gridSize).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterHeader(pageHeader(data, columns, gridSize)...); err != nil {
		return nil, fmt.Errorf("register header: %w", err)
	}
	if err := m.RegisterFooter(pageFooter(data, gridSize)...); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	for i, r := range data.Table.Rows {
		m.AddRows(tableRow(r, i))
	}
	if len(data.Table.Rows) == 0 {
		m.AddRows(
			row.New(8).Add(
				col.New(gridSize).Add(
					text.New("No items in this quotation.", props.Text{
						Size:  8,
						Align: align.Center,
						Color: &props.Color{Red: 120, Green: 120, Blue: 120},
					}),
				),
			),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// orientationFor switches to landscape once the table gets wide.
func orientationFor(columnCount int) orientation.Type {
	if columnCount > 6 {
		return orientation.Horizontal
	}
	return orientation.Vertical
}

// pageHeader builds the rows repeated at the top of every page: title,
// company and timestamp, then the styled column header.
func pageHeader(data QuotationExport, columns []string, gridSize int) []core.Row {
	half := gridSize / 2

	rows := []core.Row{
		row.New(12).Add(
			col.New(gridSize).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
		row.New(8).Add(
			col.New(half).Add(
				text.New(data.CompanyName, props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(gridSize-half).Add(
				text.New(fmt.Sprintf("Generated: %s", data.Timestamp()), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
		row.New(2),
	}

	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}

	header := row.New(8)
	for _, c := range columns {
		header.Add(col.New(pdfColumnSpan).Add(text.New(c, headerText)).WithStyle(headerCell))
	}
	return append(rows, header)
}

// tableRow renders one quotation line with zebra striping.
func tableRow(cells []string, index int) core.Row {
	base := props.Text{Size: 8, Align: align.Center}
	right := base
	right.Align = align.Right

	var style *props.Cell
	if index%2 == 1 {
		style = &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	}

	r := row.New(7)
	for i, v := range cells {
		t := base
		if i == 3 {
			t = right
		}
		c := col.New(pdfColumnSpan).Add(text.New(v, t))
		if style != nil {
			c = c.WithStyle(style)
		}
		r.Add(c)
	}
	return r
}

// pageFooter renders the disclaimer line at the bottom of every page.
func pageFooter(data QuotationExport, gridSize int) []core.Row {
	if data.Disclaimer == "" {
		return []core.Row{row.New(6)}
	}
	return []core.Row{
		row.New(8).Add(
			col.New(gridSize).Add(
				text.New(data.Disclaimer, props.Text{
					Size:  7,
					Style: fontstyle.Italic,
					Align: align.Center,
					Color: &props.Color{Red: 140, Green: 140, Blue: 140},
				}),
			),
		),
	}
}
