package services

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Sentinel marks an absent value in the normalized catalog. As a filter value
// it means "don't filter on this attribute".
const Sentinel = "-"

const (
	diameterColumn = "Diameter"
	weightColumn   = "Weight"
)

// Attribute is one spec attribute of a catalog row (e.g. PN=10).
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AttributeSet is an ordered list of spec attributes. The order follows the
// column order of the source the catalog was loaded from.
type AttributeSet []Attribute

// Get returns the value of the named attribute. Names compare case-insensitively.
func (s AttributeSet) Get(name string) (string, bool) {
	for _, a := range s {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// Clone returns a copy that shares no memory with s.
func (s AttributeSet) Clone() AttributeSet {
	if s == nil {
		return nil
	}
	out := make(AttributeSet, len(s))
	copy(out, s)
	return out
}

// Active drops wildcard entries.
func (s AttributeSet) Active() AttributeSet {
	var out AttributeSet
	for _, a := range s {
		if a.Value != Sentinel && a.Value != "" {
			out = append(out, a)
		}
	}
	return out
}

// String renders the set as "PN 10 / SDR 11".
func (s AttributeSet) String() string {
	parts := make([]string, 0, len(s))
	for _, a := range s {
		parts = append(parts, a.Name+" "+a.Value)
	}
	return strings.Join(parts, " / ")
}

// CatalogRow is one manufactured pipe standard.
type CatalogRow struct {
	Diameter   float64
	Attributes AttributeSet
	Weight     float64 // kg per meter; <= 0 means not manufactured
}

// Manufactured reports whether the row can be priced.
func (r CatalogRow) Manufactured() bool {
	return r.Weight > 0
}

// Catalog is the normalized table of one material family. It is read-only
// once loaded; callers must not mutate Rows.
type Catalog struct {
	Material   string
	Attributes []string
	Rows       []CatalogRow
	Skipped    int // data rows dropped because the diameter was unparseable
}

// Diameters returns the distinct diameters in ascending order.
func (c *Catalog) Diameters() []float64 {
	seen := make(map[float64]bool, len(c.Rows))
	out := make([]float64, 0, len(c.Rows))
	for _, r := range c.Rows {
		if !seen[r.Diameter] {
			seen[r.Diameter] = true
			out = append(out, r.Diameter)
		}
	}
	slices.Sort(out)
	return out
}

// AttributeValues returns the distinct values of an attribute, sorted with
// compareAttributeValues, for populating selectors.
func (c *Catalog) AttributeValues(name string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range c.Rows {
		v, ok := r.Attributes.Get(name)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	slices.SortFunc(out, compareAttributeValues)
	return out
}

// LoadOptions controls catalog loading.
type LoadOptions struct {
	// Section selects a sheet (material family). Empty selects the first one.
	Section string
	// RequiredAttributes lists attribute columns that must be present in
	// addition to Diameter and Weight.
	RequiredAttributes []string
}

// NormalizeText applies the catalog text rules: trim, uppercase, and replace
// empty or "NAN" values with the sentinel. Numeric-looking values are
// canonicalized so "16.0" and "16" compare equal.
func NormalizeText(s string) string {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" || t == "NAN" {
		return Sentinel
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return t
}

// parseWeight coerces a weight cell; anything unparseable becomes 0.
func parseWeight(s string) float64 {
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseDiameter(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, false
	}
	v, err := cast.ToFloat64E(t)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// buildCatalog turns a raw header + data rows into a normalized Catalog.
func buildCatalog(material string, header []string, rows [][]string, opts LoadOptions) (*Catalog, error) {
	diameterIdx, weightIdx := -1, -1
	type attrCol struct {
		name string
		idx  int
	}
	var attrCols []attrCol

	for i, h := range header {
		name := strings.TrimSpace(h)
		switch {
		case name == "":
			continue
		case strings.EqualFold(name, diameterColumn):
			if diameterIdx < 0 {
				diameterIdx = i
			}
		case strings.EqualFold(name, weightColumn):
			if weightIdx < 0 {
				weightIdx = i
			}
		default:
			dup := false
			for _, c := range attrCols {
				if strings.EqualFold(c.name, name) {
					dup = true
					break
				}
			}
			if !dup {
				attrCols = append(attrCols, attrCol{name: name, idx: i})
			}
		}
	}

	var missing []string
	if diameterIdx < 0 {
		missing = append(missing, diameterColumn)
	}
	if weightIdx < 0 {
		missing = append(missing, weightColumn)
	}
	for _, req := range opts.RequiredAttributes {
		req = strings.TrimSpace(req)
		if req == "" {
			continue
		}
		found := false
		for _, c := range attrCols {
			if strings.EqualFold(c.name, req) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, &RequiredColumnMissingError{Missing: missing}
	}

	cat := &Catalog{
		Material:   strings.ToUpper(strings.TrimSpace(material)),
		Attributes: make([]string, len(attrCols)),
		Rows:       make([]CatalogRow, 0, len(rows)),
	}
	for i, c := range attrCols {
		cat.Attributes[i] = c.name
	}

	cell := func(row []string, idx int) string {
		if idx < len(row) {
			return row[idx]
		}
		return ""
	}

	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		diameter, ok := parseDiameter(cell(row, diameterIdx))
		if !ok {
			cat.Skipped++
			continue
		}
		attrs := make(AttributeSet, len(attrCols))
		for i, c := range attrCols {
			attrs[i] = Attribute{Name: c.name, Value: NormalizeText(cell(row, c.idx))}
		}
		cat.Rows = append(cat.Rows, CatalogRow{
			Diameter:   diameter,
			Attributes: attrs,
			Weight:     parseWeight(cell(row, weightIdx)),
		})
	}
	return cat, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// compareAttributeValues orders numerically when both values are numbers,
// otherwise lexically. The sentinel sorts before everything else.
func compareAttributeValues(a, b string) int {
	if a == b {
		return 0
	}
	if a == Sentinel {
		return -1
	}
	if b == Sentinel {
		return 1
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return strings.Compare(a, b)
	}
	return strings.Compare(a, b)
}
