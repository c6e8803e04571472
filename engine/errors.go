/*
errors.go - Centralized error types

PURPOSE:
  All error values in one place. The computation itself never fails on
  degenerate input — zero units, zero quota sums, missing rules, and
  empty periods all resolve to zero contributions per the allocation
  contract — so everything here belongs to the surrounding store and
  API layers.

USAGE:
  if errors.Is(err, engine.ErrAssociationNotFound) { ... }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAssociationNotFound is returned by stores when no data exists
	// for the requested association.
	ErrAssociationNotFound = errors.New("association not found")

	// ErrUnitNotFound is returned when a referenced unit doesn't exist.
	ErrUnitNotFound = errors.New("unit not found")

	// ErrPaymentNotFound is returned when a referenced payment doesn't exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrDuplicateID is returned when saving a record whose ID already exists.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidPeriod is returned for a month outside [1,12] or a
	// non-positive year coming in from the outside.
	ErrInvalidPeriod = errors.New("invalid billing period")

	// ErrStatementNotCached is returned by caches on a miss.
	ErrStatementNotCached = errors.New("statement not cached")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which record a lookup missed.
type NotFoundError struct {
	Kind string // "association", "unit", "payment"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case "unit":
		return ErrUnitNotFound
	case "payment":
		return ErrPaymentNotFound
	default:
		return ErrAssociationNotFound
	}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssociationNotFound) ||
		errors.Is(err, ErrUnitNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrDuplicateID)
}
