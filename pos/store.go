/*
store.go - Persistence collaborator interfaces

PURPOSE:
  The core performs no disk or network I/O itself. Durability is delegated
  to injected collaborators behind these two interfaces, which are small
  enough to fake in tests and narrow enough that a spreadsheet exporter or
  GUI layer gets no mutation capability it should not have.

CONTRACTS:
  CatalogStore: product definitions and stock quantities
  SaleStore:    append-only sale records, range queries for reporting

ERROR DISCIPLINE:
  Implementations return their own errors; the core wraps every store
  failure in ErrPersistenceUnavailable and rolls back any in-memory change
  it made first. The store is never left ahead of or behind memory.

IMPLEMENTATIONS:
  - store/memory.go:   in-memory, for tests and development
  - store/sqlite/:     SQLite, for a real terminal

SEE ALSO:
  - ledger.go: CatalogStore consumer
  - history.go: SaleStore consumer
*/
package pos

import (
	"context"
	"time"
)

// CatalogStore persists product definitions and stock quantities.
// SaveStock writes the absolute new quantity, not a delta: replaying an
// absolute write is idempotent, a replayed delta is not.
type CatalogStore interface {
	// LoadCatalog returns every known product. Called once, at Ledger open.
	LoadCatalog(ctx context.Context) ([]Product, error)

	// SaveProduct persists a product definition (create or replace).
	SaveProduct(ctx context.Context, p Product) error

	// SaveStock persists the new absolute stock quantity for a product.
	SaveStock(ctx context.Context, id ProductID, quantity int) error
}

// SaleStore persists committed sales. Append-only: no update, no delete.
type SaleStore interface {
	// AppendSaleRecord persists one sale, line items included, atomically.
	AppendSaleRecord(ctx context.Context, sale Sale) error

	// LoadSalesInRange returns sales with from <= CommittedAt <= to,
	// ordered by commit timestamp ascending.
	LoadSalesInRange(ctx context.Context, from, to time.Time) ([]Sale, error)
}
