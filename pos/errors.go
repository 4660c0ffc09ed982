/*
errors.go - Centralized error types for the POS core

PURPOSE:
  The full error taxonomy in one place. Callers branch with errors.Is;
  structured errors carry the detail a cashier-facing layer needs to
  explain what went wrong (which product, how much was available).

ERROR CATEGORIES:
  1. Validation errors - bad input, cart left untouched
  2. Stock errors - insufficient stock, Ledger left untouched
  3. Persistence errors - collaborator failures, in-memory state rolled back

USAGE:
  err := processor.Commit(ctx, cart, taxRate)
  var short *pos.InsufficientStockError
  if errors.As(err, &short) {
      // show short.Shortfalls, let the cashier adjust the cart
  }

SEE ALSO:
  - ledger.go: produces InsufficientStockError
  - processor.go: produces ErrEmptyCart, ErrCartFinalized
*/
package pos

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidProduct is returned when a product definition is rejected
	// (empty identifier, negative price, negative initial stock).
	ErrInvalidProduct = errors.New("invalid product")

	// ErrUnknownProduct is returned when a product identifier is not in the catalog.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrInvalidQuantity is returned when a quantity fails validation
	// (zero or negative where a positive amount is required).
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrEmptyCart is returned when committing a cart with no line items.
	// This is a precondition check, not a runtime fault.
	ErrEmptyCart = errors.New("empty cart")

	// ErrInsufficientStock is returned when a deduction would drive stock
	// below zero. Recoverable: the caller can adjust quantities or restock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrPersistenceUnavailable is returned when a persistence collaborator
	// fails. Fatal to the current operation; in-memory state is rolled back
	// before this error surfaces.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrCartFinalized is returned when mutating or re-committing a cart
	// that has left the Building state.
	ErrCartFinalized = errors.New("cart finalized")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StockShortfall describes one product that could not cover a request.
type StockShortfall struct {
	ProductID ProductID
	Requested int
	Available int
}

// InsufficientStockError reports every product in a deduction that fell
// short. The deduction was rejected as a whole: no stock was consumed.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortfalls) == 0 {
		return "insufficient stock"
	}
	first := e.Shortfalls[0]
	if len(e.Shortfalls) == 1 {
		return fmt.Sprintf("insufficient stock: %s requested %d, available %d",
			first.ProductID, first.Requested, first.Available)
	}
	return fmt.Sprintf("insufficient stock: %s requested %d, available %d (and %d more)",
		first.ProductID, first.Requested, first.Available, len(e.Shortfalls)-1)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input or
// a recoverable business condition, as opposed to an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidProduct) ||
		errors.Is(err, ErrUnknownProduct) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrCartFinalized)
}

// IsRecoverable returns true if the caller can fix the condition and retry
// the same operation (reduce quantities, remove an item, restock).
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}
