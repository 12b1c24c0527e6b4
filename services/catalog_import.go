package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheet is one raw section of a source file before normalization.
type sheet struct {
	name   string
	header []string
	rows   [][]string
}

// ParseCatalog reads a .xlsx or .csv source and returns the normalized catalog
// of the selected section.
func ParseCatalog(r io.Reader, fileName string, opts LoadOptions) (*Catalog, error) {
	sheets, err := readSheets(r, fileName, opts.Section)
	if err != nil {
		return nil, err
	}
	s := sheets[0]
	cat, err := buildCatalog(s.name, s.header, s.rows, opts)
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", s.name, err)
	}
	return cat, nil
}

// ParseAllSections normalizes every section of the source. Used when a
// replacement dataset is uploaded.
func ParseAllSections(r io.Reader, fileName string, opts LoadOptions) ([]*Catalog, error) {
	var sheets []sheet
	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		s, err := parseCSV(r, csvSectionName(fileName))
		if err != nil {
			return nil, err
		}
		sheets = []sheet{s}
	case strings.HasSuffix(lowerName, ".xlsx"):
		var err error
		sheets, err = readAllWorkbookSheets(r)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}

	catalogs := make([]*Catalog, 0, len(sheets))
	for _, s := range sheets {
		cat, err := buildCatalog(s.name, s.header, s.rows, LoadOptions{RequiredAttributes: opts.RequiredAttributes})
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", s.name, err)
		}
		catalogs = append(catalogs, cat)
	}
	return catalogs, nil
}

// OpenCatalogFile loads a catalog from disk. A missing file yields ErrSourceMissing.
func OpenCatalogFile(path string, opts LoadOptions) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f, filepath.Base(path), opts)
}

// ListSections returns the section names of a source in file order.
func ListSections(r io.Reader, fileName string) ([]string, error) {
	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		return []string{csvSectionName(fileName)}, nil
	case strings.HasSuffix(lowerName, ".xlsx"):
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()
		return catalogSheets(f), nil
	}
	return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
}

// readSheets dispatches on the file extension and returns the selected
// section as the single element of the result.
func readSheets(r io.Reader, fileName, section string) ([]sheet, error) {
	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		s, err := parseCSV(r, csvSectionName(fileName))
		if err != nil {
			return nil, err
		}
		if section != "" && !strings.EqualFold(strings.TrimSpace(section), s.name) {
			return nil, &SectionMissingError{Requested: section, Available: []string{s.name}}
		}
		return []sheet{s}, nil
	case strings.HasSuffix(lowerName, ".xlsx"):
		s, err := parseExcel(r, section)
		if err != nil {
			return nil, err
		}
		return []sheet{s}, nil
	}
	return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader, name string) (sheet, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return sheet{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) == 0 {
		return sheet{name: name}, nil
	}
	return sheet{name: name, header: stripBOM(allRows[0]), rows: allRows[1:]}, nil
}

// parseExcel reads the selected sheet of an xlsx workbook. Sheet names match
// case-insensitively; an empty selector picks the first sheet.
func parseExcel(file io.Reader, section string) (sheet, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return sheet{}, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName, err := selectSheet(catalogSheets(f), section)
	if err != nil {
		return sheet{}, err
	}
	return readWorkbookSheet(f, sheetName)
}

func readAllWorkbookSheets(file io.Reader) ([]sheet, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	var out []sheet
	for _, name := range catalogSheets(f) {
		s, err := readWorkbookSheet(f, name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// catalogSheets lists the visible sheets in workbook order. Hidden sheets,
// such as the template's Instructions, are never material sections.
func catalogSheets(f *excelize.File) []string {
	var names []string
	for _, name := range f.GetSheetList() {
		if visible, err := f.GetSheetVisible(name); err == nil && !visible {
			continue
		}
		names = append(names, name)
	}
	return names
}

// readWorkbookSheet reads raw cell values; number formats such as "#,##0.00"
// would otherwise round weights and break diameter parsing.
func readWorkbookSheet(f *excelize.File, name string) (sheet, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet{}, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	s := sheet{name: name}
	if len(rows) > 0 {
		s.header = rows[0]
		s.rows = rows[1:]
	}
	return s, nil
}

func selectSheet(available []string, section string) (string, error) {
	if len(available) == 0 {
		return "", &SectionMissingError{Requested: section}
	}
	want := strings.TrimSpace(section)
	if want == "" {
		return available[0], nil
	}
	for _, name := range available {
		if strings.EqualFold(strings.TrimSpace(name), want) {
			return name, nil
		}
	}
	return "", &SectionMissingError{Requested: section, Available: available}
}

func csvSectionName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}

// stripBOM removes a UTF-8 byte order mark some spreadsheet tools prepend.
func stripBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}
