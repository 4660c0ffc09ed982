/*
history.go - Append-only log of committed sales

PURPOSE:
  Sale History is the record of every committed sale. Entries are never
  rewritten or deleted; corrections to a sale happen as compensating
  transactions in the Ledger, not as edits here.

QUERY CONTRACT:
  Query returns a finite, restartable iterator over sales in a time range,
  ordered by commit timestamp ascending. This is the only surface the
  reporting collaborators (spreadsheet export, dashboards) consume - it
  grants no mutation capability.

SEE ALSO:
  - store.go: SaleStore, the durable backing
  - processor.go: the only Append caller
*/
package pos

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// History is a thin, append-only facade over a SaleStore.
type History struct {
	store SaleStore
}

// NewHistory creates a History over the given store.
func NewHistory(store SaleStore) *History {
	return &History{store: store}
}

// Append records a committed sale. Line items are copied so later caller
// mutations cannot reach the log.
func (h *History) Append(ctx context.Context, sale Sale) error {
	sale.Items = copyItems(sale.Items)
	if err := h.store.AppendSaleRecord(ctx, sale); err != nil {
		return fmt.Errorf("%w: append sale %s: %v", ErrPersistenceUnavailable, sale.ID, err)
	}
	return nil
}

// Query returns an iterator over sales with from <= CommittedAt <= to,
// ordered by commit timestamp ascending. The iterator is a snapshot:
// sales committed after Query returns are not included.
func (h *History) Query(ctx context.Context, from, to time.Time) (*SaleIterator, error) {
	sales, err := h.store.LoadSalesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: load sales: %v", ErrPersistenceUnavailable, err)
	}
	// Stores are required to return ascending order; sort defensively so a
	// sloppy collaborator cannot break reporting.
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].CommittedAt.Before(sales[j].CommittedAt)
	})
	return &SaleIterator{sales: sales}, nil
}

// =============================================================================
// SALE ITERATOR - finite, restartable, read-only
// =============================================================================

// SaleIterator walks a query result. Restartable via Reset.
type SaleIterator struct {
	sales []Sale
	pos   int
}

// Next returns the next sale and true, or a zero Sale and false when the
// sequence is exhausted. Returned sales carry their own copy of Items.
func (it *SaleIterator) Next() (Sale, bool) {
	if it.pos >= len(it.sales) {
		return Sale{}, false
	}
	s := it.sales[it.pos]
	it.pos++
	s.Items = copyItems(s.Items)
	return s, true
}

// Reset rewinds the iterator to the first sale.
func (it *SaleIterator) Reset() { it.pos = 0 }

// Len returns the total number of sales in the result.
func (it *SaleIterator) Len() int { return len(it.sales) }
