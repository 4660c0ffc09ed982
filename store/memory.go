/*
Package store provides in-memory implementations of the persistence
collaborator interfaces (pos.CatalogStore, pos.SaleStore).

PURPOSE:
  Used by tests and development setups where durability does not matter.
  Behavior matches the SQLite store: absolute stock writes, append-only
  sales, inclusive range queries in ascending commit order.

SEE ALSO:
  - pos/store.go: the interfaces
  - store/sqlite: the durable implementation
*/
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cantina/pos-engine/pos"
)

// Memory implements pos.CatalogStore and pos.SaleStore in memory.
// Safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	products map[pos.ProductID]pos.Product
	sales    []pos.Sale
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{products: make(map[pos.ProductID]pos.Product)}
}

// Compile-time interface checks.
var (
	_ pos.CatalogStore = (*Memory)(nil)
	_ pos.SaleStore    = (*Memory)(nil)
)

// =============================================================================
// CATALOG STORE
// =============================================================================

func (m *Memory) LoadCatalog(_ context.Context) ([]pos.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]pos.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveProduct(_ context.Context, p pos.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *Memory) SaveStock(_ context.Context, id pos.ProductID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return fmt.Errorf("save stock: product %s not stored", id)
	}
	p.Stock = quantity
	m.products[id] = p
	return nil
}

// =============================================================================
// SALE STORE - append-only
// =============================================================================

func (m *Memory) AppendSaleRecord(_ context.Context, sale pos.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]pos.LineItem, len(sale.Items))
	copy(items, sale.Items)
	sale.Items = items

	// Keep the log ordered by commit timestamp; sales arrive roughly in
	// order, so the insertion point is almost always the end.
	i := sort.Search(len(m.sales), func(i int) bool {
		return m.sales[i].CommittedAt.After(sale.CommittedAt)
	})
	m.sales = append(m.sales, pos.Sale{})
	copy(m.sales[i+1:], m.sales[i:])
	m.sales[i] = sale
	return nil
}

func (m *Memory) LoadSalesInRange(_ context.Context, from, to time.Time) ([]pos.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []pos.Sale
	for _, s := range m.sales {
		if s.CommittedAt.Before(from) || s.CommittedAt.After(to) {
			continue
		}
		items := make([]pos.LineItem, len(s.Items))
		copy(items, s.Items)
		s.Items = items
		out = append(out, s)
	}
	return out, nil
}
