/*
cart.go - One cashier's in-progress sale

PURPOSE:
  A Cart collects line items for a single sale. It is privately owned by
  one cashier (one goroutine) and therefore carries no locking; the shared
  resources it touches (catalog reads) go through the Ledger.

INVARIANTS:
  1. No two line items share a product identifier: adding an existing
     product merges by summing quantities
  2. Every quantity > 0: SetQuantity(0) removes the line
  3. Insertion order is preserved (receipts print in ring-up order)
  4. Unit price and name are snapshotted at AddItem time; later catalog
     changes never alter an open cart
  5. Only a Building cart may be mutated

ERROR DISCIPLINE:
  Every mutation either fully applies or leaves the cart in its last valid
  state. There are no partial edits.

SEE ALSO:
  - processor.go: consumes a finalized cart
*/
package pos

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceLookup resolves a product at add-to-cart time. Satisfied by *Ledger;
// tests substitute fakes.
type PriceLookup interface {
	Lookup(id ProductID) (Product, error)
}

// CartState is the per-sale state machine:
// Building -> Committed, or Building -> Failed.
type CartState string

const (
	CartBuilding  CartState = "building"
	CartCommitted CartState = "committed"
	CartFailed    CartState = "failed"
)

// Cart is a single-owner, in-progress sale. Not safe for concurrent use;
// each cashier owns exactly one at a time.
type Cart struct {
	cashier   CashierID
	createdAt time.Time
	catalog   PriceLookup
	items     []LineItem
	state     CartState
}

// NewCart starts an empty Building cart for the given cashier.
func NewCart(cashier CashierID, catalog PriceLookup) *Cart {
	return &Cart{
		cashier:   cashier,
		createdAt: time.Now().UTC(),
		catalog:   catalog,
		state:     CartBuilding,
	}
}

func (c *Cart) Cashier() CashierID   { return c.cashier }
func (c *Cart) CreatedAt() time.Time { return c.createdAt }
func (c *Cart) State() CartState     { return c.state }
func (c *Cart) IsEmpty() bool        { return len(c.items) == 0 }

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	return copyItems(c.items)
}

// AddItem looks the product up in the catalog, snapshots its price and
// name, and appends a line item - or merges into an existing line for the
// same product by summing quantities (the snapshot from the first add wins).
func (c *Cart) AddItem(id ProductID, quantity int) error {
	if err := c.mutable(); err != nil {
		return err
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: add %s x%d", ErrInvalidQuantity, id, quantity)
	}

	for i := range c.items {
		if c.items[i].ProductID == id {
			c.items[i].Quantity += quantity
			return nil
		}
	}

	p, err := c.catalog.Lookup(id)
	if err != nil {
		return err
	}
	c.items = append(c.items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  quantity,
		UnitPrice: p.Price,
	})
	return nil
}

// RemoveItem deletes the line for id. ErrUnknownProduct if absent.
func (c *Cart) RemoveItem(id ProductID) error {
	if err := c.mutable(); err != nil {
		return err
	}
	for i := range c.items {
		if c.items[i].ProductID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s not in cart", ErrUnknownProduct, id)
}

// SetQuantity replaces the quantity on an existing line. Zero removes the
// line; negative is rejected.
func (c *Cart) SetQuantity(id ProductID, quantity int) error {
	if err := c.mutable(); err != nil {
		return err
	}
	if quantity < 0 {
		return fmt.Errorf("%w: set %s to %d", ErrInvalidQuantity, id, quantity)
	}
	if quantity == 0 {
		return c.RemoveItem(id)
	}
	for i := range c.items {
		if c.items[i].ProductID == id {
			c.items[i].Quantity = quantity
			return nil
		}
	}
	return fmt.Errorf("%w: %s not in cart", ErrUnknownProduct, id)
}

// ComputeTotals derives subtotal, tax and total from the current line
// items. Pure: no side effects, identical results on repeated calls.
// Tax is rounded to 2 decimal places; total = subtotal + rounded tax.
func (c *Cart) ComputeTotals(taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, li := range c.items {
		subtotal = subtotal.Add(li.LineTotal())
	}
	tax := subtotal.Mul(taxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Cancel abandons a Building cart. Nothing was deducted or recorded, so
// there is nothing to undo; the cart simply stops accepting mutations.
func (c *Cart) Cancel() error {
	if err := c.mutable(); err != nil {
		return err
	}
	c.state = CartFailed
	return nil
}

func (c *Cart) mutable() error {
	if c.state != CartBuilding {
		return fmt.Errorf("%w: cart is %s", ErrCartFinalized, c.state)
	}
	return nil
}

// State transitions, Processor use only.
func (c *Cart) markCommitted() { c.state = CartCommitted }
func (c *Cart) markFailed()    { c.state = CartFailed }
