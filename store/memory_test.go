package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cantina/pos-engine/pos"
	"github.com/cantina/pos-engine/store"
)

func TestMemory_SaveStock_RequiresStoredProduct(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	assert.Error(t, m.SaveStock(ctx, "GHOST", 5))

	require.NoError(t, m.SaveProduct(ctx, pos.Product{ID: "COFFEE", Name: "Cafe", Price: pos.MustPrice("2.50"), Stock: 10}))
	require.NoError(t, m.SaveStock(ctx, "COFFEE", 7))

	products, err := m.LoadCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 7, products[0].Stock)
}

func TestMemory_AppendKeepsSalesOrdered(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	base := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	mkSale := func(id string, at time.Time) pos.Sale {
		return pos.Sale{ID: pos.SaleID(id), CashierID: "c", Subtotal: pos.MustPrice("1"), Total: pos.MustPrice("1"), CommittedAt: at}
	}
	require.NoError(t, m.AppendSaleRecord(ctx, mkSale("s2", base.Add(time.Hour))))
	require.NoError(t, m.AppendSaleRecord(ctx, mkSale("s1", base)))

	sales, err := m.LoadSalesInRange(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, pos.SaleID("s1"), sales[0].ID)
	assert.Equal(t, pos.SaleID("s2"), sales[1].ID)
}

func TestMemory_StoredSaleIsIsolatedFromCaller(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	at := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	sale := pos.Sale{
		ID:          "s1",
		CashierID:   "c",
		Items:       []pos.LineItem{{ProductID: "COFFEE", Name: "Cafe", Quantity: 1, UnitPrice: pos.MustPrice("2.50")}},
		Subtotal:    pos.MustPrice("2.50"),
		Total:       pos.MustPrice("2.50"),
		CommittedAt: at,
	}
	require.NoError(t, m.AppendSaleRecord(ctx, sale))
	sale.Items[0].Quantity = 999

	loaded, err := m.LoadSalesInRange(ctx, at, at)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 1, loaded[0].Items[0].Quantity)
}
