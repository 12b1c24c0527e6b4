package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TemplateColumn describes one column of the catalog template.
type TemplateColumn struct {
	Label       string
	Required    bool
	Description string
	Example     string
}

// CatalogTemplateColumns returns Diameter, the given attribute columns, then Weight.
func CatalogTemplateColumns(attributes []string, required []string) []TemplateColumn {
	cols := []TemplateColumn{{
		Label:       diameterColumn,
		Required:    true,
		Description: "Nominal outer diameter in millimeters",
		Example:     "110",
	}}
	for _, a := range attributes {
		isRequired := false
		for _, r := range required {
			if strings.EqualFold(r, a) {
				isRequired = true
				break
			}
		}
		cols = append(cols, TemplateColumn{
			Label:       a,
			Required:    isRequired,
			Description: "Spec attribute; leave blank or '-' when not applicable",
			Example:     "10",
		})
	}
	return append(cols, TemplateColumn{
		Label:       weightColumn,
		Required:    true,
		Description: "Weight in kg per meter; 0 or blank means not manufactured",
		Example:     "2.5",
	})
}

// GenerateCatalogTemplate creates a downloadable .xlsx with one sheet per
// material family and a hidden Instructions sheet.
func GenerateCatalogTemplate(materials []string, columns []TemplateColumn) ([]byte, error) {
	if len(materials) == 0 {
		materials = []string{"HDPE"}
	}

	f := excelize.NewFile()
	defer f.Close()

	requiredHeaderStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1D4ED8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	optionalHeaderStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#6B7280"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})

	letters := columnLetters(len(columns))
	for i, material := range materials {
		sheetName := strings.ToUpper(strings.TrimSpace(material))
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
				return nil, fmt.Errorf("set sheet name: %w", err)
			}
		} else if _, err := f.NewSheet(sheetName); err != nil {
			return nil, fmt.Errorf("add sheet %q: %w", sheetName, err)
		}

		for j, c := range columns {
			cell := letters[j] + "1"
			f.SetCellValue(sheetName, cell, c.Label)
			if c.Required {
				f.SetCellStyle(sheetName, cell, cell, requiredHeaderStyle)
			} else {
				f.SetCellStyle(sheetName, cell, cell, optionalHeaderStyle)
			}
			f.SetColWidth(sheetName, letters[j], letters[j], 15)
		}

		f.SetPanes(sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	addTemplateInstructions(f, columns)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel template: %w", err)
	}
	return buf.Bytes(), nil
}

// addTemplateInstructions creates a hidden sheet describing every column.
func addTemplateInstructions(f *excelize.File, columns []TemplateColumn) {
	instSheet := "Instructions"
	f.NewSheet(instSheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})

	f.SetCellValue(instSheet, "A1", "Pipe Catalog - Instructions")
	f.SetCellStyle(instSheet, "A1", "A1", titleStyle)
	f.SetCellValue(instSheet, "A2", "One sheet per material family; the sheet name is the material (e.g. HDPE, UPVC).")

	headers := []string{"Column", "Required?", "Description", "Example"}
	cols := columnLetters(len(headers))
	for i, h := range headers {
		cell := cols[i] + "4"
		f.SetCellValue(instSheet, cell, h)
		f.SetCellStyle(instSheet, cell, cell, headerStyle)
	}

	for i, c := range columns {
		row := fmt.Sprintf("%d", i+5)
		reqLabel := "Optional"
		if c.Required {
			reqLabel = "Required"
		}
		f.SetCellValue(instSheet, cols[0]+row, c.Label)
		f.SetCellValue(instSheet, cols[1]+row, reqLabel)
		f.SetCellValue(instSheet, cols[2]+row, c.Description)
		f.SetCellValue(instSheet, cols[3]+row, c.Example)
	}

	widths := []float64{18, 12, 55, 12}
	for i, w := range widths {
		f.SetColWidth(instSheet, cols[i], cols[i], w)
	}

	f.SetSheetVisible(instSheet, false)
}

// columnLetters returns Excel column letters for n columns: A, B, ... Z, AA, AB ...
func columnLetters(n int) []string {
	cols := make([]string, n)
	for i := 0; i < n; i++ {
		name, _ := excelize.ColumnNumberToName(i + 1)
		cols[i] = name
	}
	return cols
}
