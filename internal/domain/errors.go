package domain

import (
	"errors"
	"fmt"
)

// ErrNotFoundOrForbidden is returned when a product does not exist or the caller
// does not own it. The two cases are deliberately indistinguishable so that
// artisans cannot probe for each other's catalog entries.
var ErrNotFoundOrForbidden = errors.New("product not found")

// ErrConflictRetryExhausted is returned when concurrent writers kept invalidating
// the inventory snapshot and the conditional-update loop gave up. Retryable.
var ErrConflictRetryExhausted = errors.New("inventory update conflict, please retry")

// InvalidQuantityError rejects non-integer or negative quantities at the boundary.
type InvalidQuantityError struct {
	Field string
	Value float64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity for %s: %v (must be a non-negative integer)", e.Field, e.Value)
}

// InsufficientInventoryError carries how much was actually available so the
// caller can surface it; the product is left untouched.
type InsufficientInventoryError struct {
	Requested int64
	Available int64
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %d, available %d", e.Requested, e.Available)
}

// CapacityError rejects writes that would leave remainingCapacity above totalCapacity.
type CapacityError struct {
	Total     int64
	Remaining int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("remaining capacity %d exceeds total capacity %d", e.Remaining, e.Total)
}
