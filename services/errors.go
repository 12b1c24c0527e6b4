package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceMissing means neither the configured catalog file nor an
	// uploaded replacement is available.
	ErrSourceMissing = errors.New("catalog source not found")

	// ErrEmptyCatalog is returned when resolving against no diameters.
	ErrEmptyCatalog = errors.New("catalog has no diameters")

	// ErrNotFound means no row matched the diameter and filters.
	ErrNotFound = errors.New("standard not found")

	// ErrNotManufactured means the matched row has zero weight.
	ErrNotManufactured = errors.New("not manufactured")

	// ErrAllZeroWeight means reverse analysis matched only unmanufactured rows.
	ErrAllZeroWeight = errors.New("all matching rows have zero weight")
)

// SectionMissingError reports a material section absent from an otherwise
// valid source, together with the sections that do exist.
type SectionMissingError struct {
	Requested string
	Available []string
}

func (e *SectionMissingError) Error() string {
	return fmt.Sprintf("section %q not found (available: %s)", e.Requested, strings.Join(e.Available, ", "))
}

// RequiredColumnMissingError names every required column absent from the header.
type RequiredColumnMissingError struct {
	Missing []string
}

func (e *RequiredColumnMissingError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// InvalidInputError rejects a single user action.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
