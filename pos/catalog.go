/*
catalog.go - Product definitions

PURPOSE:
  The Catalog maps product identifiers to name, price and current stock.
  It is a plain data structure: NOT goroutine-safe on its own. The Ledger
  owns the Catalog and serializes every access; nothing else in the system
  holds a reference to it.

OWNERSHIP:
  - Upsert changes name/price only; it never alters stock
  - Stock is changed exclusively by the Ledger's deduction/restock paths

SEE ALSO:
  - ledger.go: the owning, goroutine-safe wrapper
*/
package pos

import (
	"fmt"
	"sort"
)

// Catalog holds product definitions keyed by identifier.
// Not safe for concurrent use; the Ledger guards it.
type Catalog struct {
	products map[ProductID]Product
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{products: make(map[ProductID]Product)}
}

// Lookup returns the product for id, or ErrUnknownProduct.
func (c *Catalog) Lookup(id ProductID) (Product, error) {
	p, ok := c.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}
	return p, nil
}

// ListAll returns every product, ordered by identifier for determinism.
func (c *Catalog) ListAll() []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Upsert creates or replaces a product definition (name, price).
// It does NOT alter stock: when the product already exists its current
// stock is preserved; for a new product, p.Stock is the opening stock.
func (c *Catalog) Upsert(p Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if existing, ok := c.products[p.ID]; ok {
		p.Stock = existing.Stock
	}
	c.products[p.ID] = p
	return nil
}

// setStock overwrites a product's stock. Ledger use only.
func (c *Catalog) setStock(id ProductID, stock int) {
	p, ok := c.products[id]
	if !ok {
		return
	}
	p.Stock = stock
	c.products[id] = p
}

func validateProduct(p Product) error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: %s has negative price %s", ErrInvalidProduct, p.ID, p.Price)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: %s has negative stock %d", ErrInvalidProduct, p.ID, p.Stock)
	}
	return nil
}
