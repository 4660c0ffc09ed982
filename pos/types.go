/*
Package pos implements the sales-transaction and inventory core of a
cafeteria point of sale.

PURPOSE:
  This package contains the bookkeeping that a POS must get right:
  - Catalog: product definitions (name, price, stock)
  - Ledger: sole authority over stock, all-or-nothing deductions
  - Cart: one cashier's in-progress sale with price snapshots
  - Processor: commits carts into immutable Sale records
  - History: append-only log of committed sales

KEY CONCEPTS IN THIS FILE (types.go):
  - Product: catalog entry, mutated only through the Ledger
  - LineItem: cart row with price/name snapshotted at add time
  - Sale: immutable receipt of a committed transaction
  - Totals: subtotal/tax/total triple, always decimal

DESIGN PRINCIPLES:
  1. Precision: all currency values are decimal.Decimal, never float64
  2. Immutability: a Sale is never modified after commit
  3. Type safety: ProductID/CashierID/SaleID cannot be mixed up
  4. Single writer: every stock change goes through the Ledger

SEE ALSO:
  - ledger.go: stock authority and concurrency discipline
  - processor.go: commit state machine
  - history.go: append-only sale log
*/
package pos

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProductID string
type CashierID string
type SaleID string

// =============================================================================
// PRODUCT - Catalog entry
// =============================================================================

// Product is a catalog entry. Stock is owned by the Ledger: nothing outside
// this package mutates it, and inside the package only the Ledger does.
type Product struct {
	ID    ProductID
	Name  string
	Price decimal.Decimal
	Stock int
}

// =============================================================================
// LINE ITEM - One cart row
// =============================================================================

// LineItem records what was sold at what price. UnitPrice and Name are
// snapshotted when the item is added to a cart, so a mid-sale price change
// or a later rename never alters an open cart or a printed receipt.
type LineItem struct {
	ProductID ProductID
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineTotal returns Quantity x UnitPrice.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// =============================================================================
// TOTALS
// =============================================================================

// Totals is the subtotal/tax/total triple for a cart or sale.
// Invariant: Total = Subtotal + Tax.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// =============================================================================
// SALE - Immutable committed transaction
// =============================================================================

// Sale is the immutable snapshot produced by a successful commit.
// Invariants:
//   - Total = Subtotal + Tax
//   - Subtotal = sum of LineTotal over Items
//
// Sales are created only by the Processor and never mutated afterward.
// Accessors and stores hand out copies of Items.
type Sale struct {
	ID          SaleID
	CashierID   CashierID
	Items       []LineItem
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	CommittedAt time.Time
}

// Totals returns the sale's totals triple.
func (s Sale) Totals() Totals {
	return Totals{Subtotal: s.Subtotal, Tax: s.Tax, Total: s.Total}
}

// copyItems returns an independent copy of a line item slice.
func copyItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// MustPrice parses a decimal price string, returning zero on parse failure.
// Intended for constants and tests, not for untrusted input.
func MustPrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
