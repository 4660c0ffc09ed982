/*
ledger.go - Sole authority over stock quantities

PURPOSE:
  Every stock change in the system passes through the Ledger. It owns the
  Catalog, serializes all mutations, and enforces the one invariant the
  whole POS hangs on: stock never goes negative, under any interleaving.

CRITICAL INVARIANTS:
  1. NON-NEGATIVE: for every product, stock >= 0 at all times
  2. ALL-OR-NOTHING: a multi-product deduction either applies every line
     or applies none; a sale never partially consumes stock
  3. NO PARTIAL VISIBILITY: readers never observe a state where some but
     not all lines of a deduction have been applied

WHY ONE MUTEX?
  The check-then-act across multiple products ("is every line coverable?
  then deduct every line") is not expressible as independent atomic
  decrements. A single mutex over the catalog makes the whole sequence one
  critical section. At cafeteria scale (one catalog, a handful of
  terminals) coarse-grained locking is the simple correct choice; per-
  product locks in a fixed acquisition order only pay off at a contention
  level this system never sees.

OPTIMISTIC CONCURRENCY TOKEN:
  Version() increments on every successful mutation. External collaborators
  (cache refresh, a products table in a GUI) can poll it to detect
  interference without holding the lock.

DURABILITY AND ROLLBACK:
  Mutations write through to the CatalogStore inside the critical section.
  If the durable write fails, the in-memory change is rolled back and
  ErrPersistenceUnavailable surfaced: memory and store never disagree after
  an operation returns.

SEE ALSO:
  - catalog.go: the owned data structure
  - processor.go: the main ReserveAndDeduct caller
*/
package pos

import (
	"context"
	"fmt"
	"sync"
)

// Ledger owns the Catalog and is the only writer of stock quantities.
// Safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	catalog *Catalog
	store   CatalogStore
	version uint64
}

// Open creates a Ledger over the given store, loading the catalog from it.
func Open(ctx context.Context, store CatalogStore) (*Ledger, error) {
	products, err := store.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load catalog: %v", ErrPersistenceUnavailable, err)
	}

	catalog := NewCatalog()
	for _, p := range products {
		if err := catalog.Upsert(p); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}
	return &Ledger{catalog: catalog, store: store}, nil
}

// =============================================================================
// READS
// =============================================================================

// Lookup returns the current product definition, or ErrUnknownProduct.
func (l *Ledger) Lookup(id ProductID) (Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog.Lookup(id)
}

// Products returns a snapshot of every product.
func (l *Ledger) Products() []Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog.ListAll()
}

// Version returns the mutation counter. It increments on every successful
// Upsert, ReserveAndDeduct, Restock and AdjustStock.
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// =============================================================================
// MUTATIONS - all serialized, all write-through
// =============================================================================

// Upsert creates or replaces a product definition. Stock is preserved for
// existing products; see Catalog.Upsert.
func (l *Ledger) Upsert(ctx context.Context, p Product) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Stage the definition the catalog would hold, then persist it first:
	// a store refusal must leave memory untouched.
	staged := p
	if existing, err := l.catalog.Lookup(p.ID); err == nil {
		staged.Stock = existing.Stock
	}
	if err := validateProduct(staged); err != nil {
		return err
	}
	if err := l.store.SaveProduct(ctx, staged); err != nil {
		return fmt.Errorf("%w: save product %s: %v", ErrPersistenceUnavailable, p.ID, err)
	}

	l.catalog.products[staged.ID] = staged
	l.version++
	return nil
}

// ReserveAndDeduct atomically checks that every line item is coverable and,
// only if all are, deducts every quantity. On any shortfall nothing is
// deducted and an InsufficientStockError listing every failing product is
// returned. This is the all-or-nothing step at the center of a sale.
func (l *Ledger) ReserveAndDeduct(ctx context.Context, items []LineItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no line items", ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Phase 1: validate every line before touching anything.
	var shortfalls []StockShortfall
	for _, li := range items {
		if li.Quantity <= 0 {
			return fmt.Errorf("%w: %s quantity %d", ErrInvalidQuantity, li.ProductID, li.Quantity)
		}
		p, err := l.catalog.Lookup(li.ProductID)
		if err != nil {
			return err
		}
		if p.Stock < li.Quantity {
			shortfalls = append(shortfalls, StockShortfall{
				ProductID: li.ProductID,
				Requested: li.Quantity,
				Available: p.Stock,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &InsufficientStockError{Shortfalls: shortfalls}
	}

	// Phase 2: deduct every line, writing through. On a store failure,
	// restore every already-applied line (rollback policy: the durable
	// write is part of the atomic step, not a best-effort follow-up).
	applied := make(map[ProductID]int, len(items))
	for _, li := range items {
		p, _ := l.catalog.Lookup(li.ProductID)
		applied[li.ProductID] = p.Stock
		newStock := p.Stock - li.Quantity
		l.catalog.setStock(li.ProductID, newStock)
		if err := l.store.SaveStock(ctx, li.ProductID, newStock); err != nil {
			l.restoreLocked(ctx, applied)
			return fmt.Errorf("%w: save stock %s: %v", ErrPersistenceUnavailable, li.ProductID, err)
		}
	}

	l.version++
	return nil
}

// Restock increases a product's stock by a positive quantity.
func (l *Ledger) Restock(ctx context.Context, id ProductID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: restock %s by %d", ErrInvalidQuantity, id, quantity)
	}
	return l.applyDelta(ctx, id, quantity)
}

// AdjustStock applies a signed correction (returns, breakage, recounts).
// Fails with InsufficientStock if the correction would drive stock below 0.
func (l *Ledger) AdjustStock(ctx context.Context, id ProductID, delta int) error {
	if delta == 0 {
		return fmt.Errorf("%w: zero adjustment for %s", ErrInvalidQuantity, id)
	}
	return l.applyDelta(ctx, id, delta)
}

// applyDelta is the shared single-product mutation path.
func (l *Ledger) applyDelta(ctx context.Context, id ProductID, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.catalog.Lookup(id)
	if err != nil {
		return err
	}
	newStock := p.Stock + delta
	if newStock < 0 {
		return &InsufficientStockError{Shortfalls: []StockShortfall{
			{ProductID: id, Requested: -delta, Available: p.Stock},
		}}
	}

	l.catalog.setStock(id, newStock)
	if err := l.store.SaveStock(ctx, id, newStock); err != nil {
		l.catalog.setStock(id, p.Stock)
		return fmt.Errorf("%w: save stock %s: %v", ErrPersistenceUnavailable, id, err)
	}

	l.version++
	return nil
}

// recredit compensates a committed deduction after a downstream failure
// (sale record could not be appended). Re-adds every line's quantity and
// writes the restored quantities through.
func (l *Ledger) recredit(ctx context.Context, items []LineItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, li := range items {
		p, err := l.catalog.Lookup(li.ProductID)
		if err != nil {
			return err
		}
		restored := p.Stock + li.Quantity
		l.catalog.setStock(li.ProductID, restored)
		if err := l.store.SaveStock(ctx, li.ProductID, restored); err != nil {
			return fmt.Errorf("%w: save stock %s: %v", ErrPersistenceUnavailable, li.ProductID, err)
		}
	}

	l.version++
	return nil
}

// restoreLocked puts saved stock quantities back, in memory and (best
// effort) in the store: lines persisted before the failing one must be
// un-persisted too. Caller holds the lock.
func (l *Ledger) restoreLocked(ctx context.Context, saved map[ProductID]int) {
	for id, stock := range saved {
		l.catalog.setStock(id, stock)
		// The store just failed; a repair write may fail as well. Memory is
		// authoritative, and the next successful mutation re-converges the
		// store via absolute quantities.
		_ = l.store.SaveStock(ctx, id, stock)
	}
}
