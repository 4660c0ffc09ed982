package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cantina/pos-engine/pos"
	"github.com/cantina/pos-engine/report"
	"github.com/cantina/pos-engine/store"
)

func TestSummarize_AggregatesByProduct(t *testing.T) {
	history := pos.NewHistory(store.NewMemory())
	ctx := context.Background()
	base := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, history.Append(ctx, pos.Sale{
		ID:        "s1",
		CashierID: "cashier-1",
		Items: []pos.LineItem{
			{ProductID: "COFFEE", Name: "Cafe Americano", Quantity: 3, UnitPrice: pos.MustPrice("2.50")},
		},
		Subtotal:    pos.MustPrice("7.50"),
		Tax:         pos.MustPrice("0.60"),
		Total:       pos.MustPrice("8.10"),
		CommittedAt: base,
	}))
	require.NoError(t, history.Append(ctx, pos.Sale{
		ID:        "s2",
		CashierID: "cashier-2",
		Items: []pos.LineItem{
			{ProductID: "COFFEE", Name: "Cafe Americano", Quantity: 1, UnitPrice: pos.MustPrice("2.50")},
			{ProductID: "CROISSANT", Name: "Croissant", Quantity: 2, UnitPrice: pos.MustPrice("1.75")},
		},
		Subtotal:    pos.MustPrice("6.00"),
		Tax:         pos.MustPrice("0.48"),
		Total:       pos.MustPrice("6.48"),
		CommittedAt: base.Add(time.Hour),
	}))

	sum, err := report.Summarize(ctx, history, base, base.Add(2*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, sum.SaleCount)
	assert.Equal(t, "14.58", sum.Gross.StringFixed(2))
	assert.Equal(t, "1.08", sum.Tax.StringFixed(2))
	assert.Equal(t, "13.50", sum.Net.StringFixed(2))

	coffee := sum.ByProduct["COFFEE"]
	assert.Equal(t, "Cafe Americano", coffee.Name)
	assert.Equal(t, 4, coffee.Quantity)
	assert.Equal(t, "10.00", coffee.Revenue.StringFixed(2))

	croissant := sum.ByProduct["CROISSANT"]
	assert.Equal(t, 2, croissant.Quantity)
	assert.Equal(t, "3.50", croissant.Revenue.StringFixed(2))
}

func TestSummarize_EmptyRange(t *testing.T) {
	history := pos.NewHistory(store.NewMemory())
	base := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	sum, err := report.Summarize(context.Background(), history, base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, sum.SaleCount)
	assert.Equal(t, "0.00", sum.Gross.StringFixed(2))
	assert.Empty(t, sum.ByProduct)
}
