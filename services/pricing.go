// Package services provides catalog loading and pipe pricing calculations.
package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PricePerMeter scales a raw-material ton price by the weight of one meter.
func PricePerMeter(tonPrice, weightPerMeter float64) float64 {
	return (tonPrice / 1000) * weightPerMeter
}

// ImpliedTonPrice inverts PricePerMeter.
func ImpliedTonPrice(pricePerMeter, weightPerMeter float64) float64 {
	return (pricePerMeter / weightPerMeter) * 1000
}

// NewFilters builds a filter set from attribute selections. Values are
// normalized like catalog cells, so an empty selection becomes a wildcard.
func NewFilters(selections map[string]string, order []string) AttributeSet {
	filters := make(AttributeSet, 0, len(order))
	for _, name := range order {
		v, ok := selections[name]
		if !ok {
			continue
		}
		filters = append(filters, Attribute{Name: name, Value: NormalizeText(v)})
	}
	return filters
}

// matchRow reports whether row has the given diameter and every non-wildcard
// filter value.
func matchRow(row CatalogRow, diameter float64, filters AttributeSet) bool {
	if row.Diameter != diameter {
		return false
	}
	for _, f := range filters {
		if f.Value == Sentinel || f.Value == "" {
			continue
		}
		v, ok := row.Attributes.Get(f.Name)
		if !ok || v != f.Value {
			return false
		}
	}
	return true
}

// Match returns the rows matching diameter and filters, in catalog order.
func (c *Catalog) Match(diameter float64, filters AttributeSet) []CatalogRow {
	var out []CatalogRow
	for _, r := range c.Rows {
		if matchRow(r, diameter, filters) {
			out = append(out, r)
		}
	}
	return out
}

// PricedItem is the result of one forward calculation.
type PricedItem struct {
	Material      string
	Resolution    Resolution
	Row           CatalogRow
	TonPrice      float64
	PricePerMeter float64
}

// LineItem converts the priced item into a quotation line.
func (p PricedItem) LineItem() LineItem {
	return LineItem{
		Material:      p.Material,
		Diameter:      p.Row.Diameter,
		Weight:        p.Row.Weight,
		PricePerMeter: p.PricePerMeter,
		Attributes:    p.Row.Attributes.Clone(),
	}
}

// PriceForward prices the first catalog row matching diameter and filters.
func PriceForward(cat *Catalog, diameter float64, filters AttributeSet, tonPrice float64) (PricedItem, error) {
	for _, r := range cat.Rows {
		if !matchRow(r, diameter, filters) {
			continue
		}
		if !r.Manufactured() {
			return PricedItem{}, fmt.Errorf("%w: %s mm %s", ErrNotManufactured, FormatNumber(diameter), filters.Active())
		}
		return PricedItem{
			Material:      cat.Material,
			Resolution:    Resolution{Input: diameter, Unit: UnitMM, TargetMM: diameter, Diameter: diameter},
			Row:           r,
			TonPrice:      tonPrice,
			PricePerMeter: PricePerMeter(tonPrice, r.Weight),
		}, nil
	}
	return PricedItem{}, fmt.Errorf("%w: %s mm %s", ErrNotFound, FormatNumber(diameter), filters.Active())
}

// PriceSize snaps a typed diameter to the catalog and prices it.
func PriceSize(cat *Catalog, value float64, unit Unit, filters AttributeSet, tonPrice float64) (PricedItem, error) {
	res, err := ResolveDiameter(value, unit, cat.Diameters())
	if err != nil {
		return PricedItem{}, err
	}
	item, err := PriceForward(cat, res.Diameter, filters, tonPrice)
	if err != nil {
		return PricedItem{}, err
	}
	item.Resolution = res
	return item, nil
}

// BatchSkip records a batch entry that produced no price.
type BatchSkip struct {
	Input float64
	Err   error
}

// BatchResult holds the successful prices of a batch request. Skipped entries
// are informational; they never fail the batch.
type BatchResult struct {
	Items   []PricedItem
	Skipped []BatchSkip
}

// PriceBatch prices every value independently.
func PriceBatch(cat *Catalog, values []float64, unit Unit, filters AttributeSet, tonPrice float64) BatchResult {
	var result BatchResult
	for _, v := range values {
		item, err := PriceSize(cat, v, unit, filters, tonPrice)
		if err != nil {
			result.Skipped = append(result.Skipped, BatchSkip{Input: v, Err: err})
			continue
		}
		result.Items = append(result.Items, item)
	}
	return result
}

// LineItems converts the successful batch entries into quotation lines.
func (b BatchResult) LineItems() []LineItem {
	out := make([]LineItem, len(b.Items))
	for i, it := range b.Items {
		out[i] = it.LineItem()
	}
	return out
}

// ParseDiameterList parses a comma separated list such as "110, 200, 4".
// Blank entries are ignored.
func ParseDiameterList(s string) ([]float64, error) {
	var out []float64
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, &InvalidInputError{Field: "diameters", Message: fmt.Sprintf("%q is not a valid diameter", tok)}
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, &InvalidInputError{Field: "diameters", Message: "enter at least one diameter"}
	}
	return out, nil
}

// ReverseCandidate is one implied ton price with the row it was derived from.
type ReverseCandidate struct {
	Row      CatalogRow
	TonPrice float64
}

// ReverseResult is the outcome of inferring a ton price from a meter price.
type ReverseResult struct {
	Material   string
	Diameter   float64
	Observed   float64
	Candidates []ReverseCandidate
	Ambiguous  bool
}

// PriceReverse infers the raw-material ton price behind an observed price per
// meter. When the filters leave several distinct weights, one candidate is
// returned per matching manufactured row.
func PriceReverse(cat *Catalog, diameter float64, filters AttributeSet, observed float64) (ReverseResult, error) {
	result := ReverseResult{Material: cat.Material, Diameter: diameter, Observed: observed}

	matches := cat.Match(diameter, filters)
	if len(matches) == 0 {
		return result, fmt.Errorf("%w: %s mm %s", ErrNotFound, FormatNumber(diameter), filters.Active())
	}

	var weights []float64
	var manufactured []CatalogRow
	for _, r := range matches {
		if !r.Manufactured() {
			continue
		}
		manufactured = append(manufactured, r)
		distinct := true
		for _, w := range weights {
			if w == r.Weight {
				distinct = false
				break
			}
		}
		if distinct {
			weights = append(weights, r.Weight)
		}
	}

	switch len(weights) {
	case 0:
		return result, fmt.Errorf("%w: %s mm %s", ErrAllZeroWeight, FormatNumber(diameter), filters.Active())
	case 1:
		result.Candidates = []ReverseCandidate{{
			Row:      manufactured[0],
			TonPrice: ImpliedTonPrice(observed, weights[0]),
		}}
	default:
		result.Ambiguous = true
		for _, r := range manufactured {
			result.Candidates = append(result.Candidates, ReverseCandidate{
				Row:      r,
				TonPrice: ImpliedTonPrice(observed, r.Weight),
			})
		}
	}
	return result, nil
}
