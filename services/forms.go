package services

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// thousandsPattern accepts "48,500" and "1,234,567.5" but not a decimal comma like "1,5".
var thousandsPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)

// finite rejects the infinities and NaN that strconv.ParseFloat accepts.
var finite = validation.By(func(value any) error {
	if v, ok := value.(float64); ok && (math.IsInf(v, 0) || math.IsNaN(v)) {
		return errors.New("must be a number")
	}
	return nil
})

// AttributeFieldPrefix prefixes form fields carrying attribute selections.
const AttributeFieldPrefix = "attr:"

// ForwardInput is a validated forward (or batch) pricing request.
type ForwardInput struct {
	Material  string       `json:"material"`
	TonPrice  float64      `json:"ton_price"`
	Diameters []float64    `json:"diameters"`
	Unit      Unit         `json:"unit"`
	Filters   AttributeSet `json:"-"`
}

// Validate checks the request with the same rules the forms advertise.
func (in ForwardInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.TonPrice, validation.Required.Error("enter a ton price greater than zero"), finite, validation.Min(0.0)),
		validation.Field(&in.Diameters, validation.Required.Error("enter at least one diameter"),
			validation.Each(finite, validation.Min(0.0).Exclusive())),
		validation.Field(&in.Unit, validation.Required, validation.In(UnitMM, UnitInch)),
	)
}

// ReverseInput is a validated reverse analysis request.
type ReverseInput struct {
	Material string       `json:"material"`
	Diameter float64      `json:"diameter"`
	Observed float64      `json:"offer_price"`
	Filters  AttributeSet `json:"-"`
}

// Validate checks the reverse request.
func (in ReverseInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Diameter, validation.Required.Error("select a diameter"), finite, validation.Min(0.0).Exclusive()),
		validation.Field(&in.Observed, validation.Required.Error("enter an offer price greater than zero"), finite, validation.Min(0.0)),
	)
}

// ParseForwardForm reads a forward/batch pricing form. attributes lists the
// catalog attribute names in column order.
func ParseForwardForm(form url.Values, attributes []string) (ForwardInput, error) {
	in := ForwardInput{
		Material: strings.TrimSpace(form.Get("material")),
		Filters:  parseAttributeFields(form, attributes),
	}

	var err error
	if in.TonPrice, err = parseDecimalField(form, "ton_price"); err != nil {
		return in, err
	}
	if in.Unit, err = ParseUnit(form.Get("unit")); err != nil {
		return in, err
	}
	if in.Diameters, err = ParseDiameterList(form.Get("diameters")); err != nil {
		return in, err
	}
	if err := in.Validate(); err != nil {
		return in, toInvalidInput(err)
	}
	return in, nil
}

// ParseReverseForm reads a reverse analysis form.
func ParseReverseForm(form url.Values, attributes []string) (ReverseInput, error) {
	in := ReverseInput{
		Material: strings.TrimSpace(form.Get("material")),
		Filters:  parseAttributeFields(form, attributes),
	}

	var err error
	if in.Diameter, err = parseDecimalField(form, "diameter"); err != nil {
		return in, err
	}
	if in.Observed, err = parseDecimalField(form, "offer_price"); err != nil {
		return in, err
	}
	if err := in.Validate(); err != nil {
		return in, toInvalidInput(err)
	}
	return in, nil
}

// ParseFilterArgs reads NAME=VALUE selections such as "PN=10". Names must be
// catalog attributes; they compare case-insensitively.
func ParseFilterArgs(args []string, attributes []string) (AttributeSet, error) {
	selections := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, &InvalidInputError{Field: "filter", Message: fmt.Sprintf("%q is not NAME=VALUE", arg)}
		}
		name = strings.TrimSpace(name)
		idx := slices.IndexFunc(attributes, func(a string) bool { return strings.EqualFold(a, name) })
		if idx < 0 {
			return nil, &InvalidInputError{
				Field:   "filter",
				Message: fmt.Sprintf("unknown attribute %q (available: %s)", name, strings.Join(attributes, ", ")),
			}
		}
		selections[attributes[idx]] = value
	}
	return NewFilters(selections, attributes), nil
}

func parseAttributeFields(form url.Values, attributes []string) AttributeSet {
	selections := make(map[string]string, len(attributes))
	for _, name := range attributes {
		if v, ok := form[AttributeFieldPrefix+name]; ok && len(v) > 0 {
			selections[name] = v[0]
		}
	}
	return NewFilters(selections, attributes)
}

func parseDecimalField(form url.Values, field string) (float64, error) {
	raw := strings.TrimSpace(form.Get(field))
	if raw == "" {
		return 0, nil
	}
	if strings.Contains(raw, ",") {
		if !thousandsPattern.MatchString(raw) {
			return 0, &InvalidInputError{Field: field, Message: "use '.' for decimals; ',' only separates thousands"}
		}
		raw = strings.ReplaceAll(raw, ",", "")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &InvalidInputError{Field: field, Message: "must be a number"}
	}
	if v < 0 {
		return 0, &InvalidInputError{Field: field, Message: "must not be negative"}
	}
	return v, nil
}

// toInvalidInput flattens ozzo validation errors into an InvalidInputError
// naming the first offending field.
func toInvalidInput(err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return &InvalidInputError{Message: err.Error()}
	}
	fields := make([]string, 0, len(errs))
	for k := range errs {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	if len(fields) == 0 {
		return &InvalidInputError{Message: err.Error()}
	}
	return &InvalidInputError{Field: fields[0], Message: errs[fields[0]].Error()}
}
