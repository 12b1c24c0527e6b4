package services

import (
	"fmt"
	"math"
	"strings"
)

const mmPerInch = 25.4

// Unit is the unit a user typed a diameter in.
type Unit string

const (
	UnitMM   Unit = "mm"
	UnitInch Unit = "inch"
)

// ParseUnit accepts the unit spellings used by the forms and CLI.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mm", "millimeter", "millimeters":
		return UnitMM, nil
	case "in", "inch", "inches", `"`:
		return UnitInch, nil
	}
	return "", &InvalidInputError{Field: "unit", Message: fmt.Sprintf("unknown unit %q (use mm or inch)", s)}
}

// ToMM converts v from u to millimeters.
func (u Unit) ToMM(v float64) float64 {
	if u == UnitInch {
		return v * mmPerInch
	}
	return v
}

// Resolution records how a typed diameter was snapped to the catalog.
type Resolution struct {
	Input    float64
	Unit     Unit
	TargetMM float64
	Diameter float64
}

// Converted reports whether the input needed a unit conversion.
func (r Resolution) Converted() bool {
	return r.Unit == UnitInch
}

// ResolveDiameter converts value to millimeters and returns the nearest
// catalog diameter. diameters must be sorted ascending; on equal distance the
// smaller diameter wins.
func ResolveDiameter(value float64, unit Unit, diameters []float64) (Resolution, error) {
	res := Resolution{Input: value, Unit: unit, TargetMM: unit.ToMM(value)}
	if len(diameters) == 0 {
		return res, ErrEmptyCatalog
	}

	best := diameters[0]
	bestDiff := math.Abs(best - res.TargetMM)
	for _, d := range diameters[1:] {
		if diff := math.Abs(d - res.TargetMM); diff < bestDiff {
			best, bestDiff = d, diff
		}
	}
	res.Diameter = best
	return res, nil
}
