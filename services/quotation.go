package services

import (
	"cmp"
	"slices"
	"strings"
)

// LineItem is one priced entry of a quotation. Duplicates are allowed.
type LineItem struct {
	Material      string
	Diameter      float64
	Weight        float64
	PricePerMeter float64
	Attributes    AttributeSet
}

// Quotation accumulates line items for one session. It is not safe for
// concurrent use; SessionStore serializes access.
type Quotation struct {
	items      []LineItem
	attributes []string // every attribute name seen, first-seen order
}

// NewQuotation returns an empty quotation.
func NewQuotation() *Quotation {
	return &Quotation{}
}

// AddBatch appends items and re-sorts the whole quotation.
func (q *Quotation) AddBatch(items ...LineItem) {
	for _, it := range items {
		it.Attributes = it.Attributes.Clone()
		for _, a := range it.Attributes {
			q.trackAttribute(a.Name)
		}
		q.items = append(q.items, it)
	}
	q.sort()
}

// Clear empties the quotation.
func (q *Quotation) Clear() {
	q.items = nil
	q.attributes = nil
}

// Len returns the number of line items.
func (q *Quotation) Len() int {
	return len(q.items)
}

// Items returns a copy of the line items in quotation order.
func (q *Quotation) Items() []LineItem {
	out := make([]LineItem, len(q.items))
	for i, it := range q.items {
		it.Attributes = it.Attributes.Clone()
		out[i] = it
	}
	return out
}

// Attributes returns the attribute column names in first-seen order.
func (q *Quotation) Attributes() []string {
	return slices.Clone(q.attributes)
}

// Materials returns the distinct material families, in quotation order.
func (q *Quotation) Materials() []string {
	var out []string
	for _, it := range q.items {
		if !slices.Contains(out, it.Material) {
			out = append(out, it.Material)
		}
	}
	return out
}

// Total sums the price per meter of every line.
func (q *Quotation) Total() float64 {
	var sum float64
	for _, it := range q.items {
		sum += it.PricePerMeter
	}
	return sum
}

func (q *Quotation) trackAttribute(name string) {
	for _, existing := range q.attributes {
		if strings.EqualFold(existing, name) {
			return
		}
	}
	q.attributes = append(q.attributes, name)
}

// sort orders by material, diameter, then each attribute. The sort is stable
// so sorting an already sorted quotation leaves it unchanged.
func (q *Quotation) sort() {
	attrs := q.attributes
	slices.SortStableFunc(q.items, func(a, b LineItem) int {
		if c := strings.Compare(a.Material, b.Material); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Diameter, b.Diameter); c != 0 {
			return c
		}
		for _, name := range attrs {
			av, _ := a.Attributes.Get(name)
			bv, _ := b.Attributes.Get(name)
			if av == "" {
				av = Sentinel
			}
			if bv == "" {
				bv = Sentinel
			}
			if c := compareAttributeValues(av, bv); c != 0 {
				return c
			}
		}
		return 0
	})
}

// ReportTable is the quotation flattened for export: Material, Diameter,
// Weight, Price, then one column per attribute.
type ReportTable struct {
	Columns []string
	Rows    [][]string
}

// Table flattens the quotation. Missing attributes render as the sentinel.
func (q *Quotation) Table() ReportTable {
	t := ReportTable{
		Columns: append([]string{"Material", "Diameter (mm)", "Weight (kg/m)", "Price / m"}, q.attributes...),
		Rows:    make([][]string, 0, len(q.items)),
	}
	for _, it := range q.items {
		row := []string{
			it.Material,
			FormatNumber(it.Diameter),
			FormatNumber(it.Weight),
			FormatMoney(it.PricePerMeter),
		}
		for _, name := range q.attributes {
			v, ok := it.Attributes.Get(name)
			if !ok || v == "" {
				v = Sentinel
			}
			row = append(row, v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
