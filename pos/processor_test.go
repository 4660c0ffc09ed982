package pos_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cantina/pos-engine/pos"
	"github.com/cantina/pos-engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestProcessor(t *testing.T, products ...pos.Product) (*pos.Processor, *pos.Ledger, *pos.History) {
	t.Helper()
	ledger, mem := newTestLedger(t, products...)
	history := pos.NewHistory(mem)
	return pos.NewProcessor(ledger, history, quietLogger()), ledger, history
}

// brokenSaleStore rejects every append; range loads delegate to memory.
type brokenSaleStore struct {
	*store.Memory
}

func (b *brokenSaleStore) AppendSaleRecord(context.Context, pos.Sale) error {
	return errors.New("connection refused")
}

// =============================================================================
// COMMIT - happy path
// =============================================================================

func TestProcessor_Commit_CoffeeScenario(t *testing.T) {
	// GIVEN: COFFEE at 2.50 with stock 10, a cart of 3 units
	// WHEN: committing with tax rate 0.08
	// THEN: Sale{subtotal 7.50, tax 0.60, total 8.10}, stock becomes 7,
	//       and the sale is in the history

	processor, ledger, history := newTestProcessor(t, coffee(10))
	ctx := context.Background()

	cart := pos.NewCart("cashier-1", ledger)
	require.NoError(t, cart.AddItem("COFFEE", 3))

	sale, err := processor.Commit(ctx, cart, pos.MustPrice("0.08"))
	require.NoError(t, err)

	assert.Equal(t, "7.50", sale.Subtotal.StringFixed(2))
	assert.Equal(t, "0.60", sale.Tax.StringFixed(2))
	assert.Equal(t, "8.10", sale.Total.StringFixed(2))
	assert.Equal(t, pos.CashierID("cashier-1"), sale.CashierID)
	assert.NotEmpty(t, sale.ID)
	assert.False(t, sale.CommittedAt.IsZero())

	p, _ := ledger.Lookup("COFFEE")
	assert.Equal(t, 7, p.Stock)

	assert.Equal(t, pos.CartCommitted, cart.State())

	it, err := history.Query(ctx, sale.CommittedAt.Add(-time.Minute), sale.CommittedAt.Add(time.Minute))
	require.NoError(t, err)
	recorded, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, sale.ID, recorded.ID)
}

func TestProcessor_Commit_SaleInvariants(t *testing.T) {
	// Round-trip property: total = subtotal + tax, and subtotal equals the
	// sum of quantity x snapshotted unit price across line items.

	processor, ledger, _ := newTestProcessor(t, coffee(50), croissant(20))
	cart := pos.NewCart("cashier-1", ledger)
	require.NoError(t, cart.AddItem("COFFEE", 2))
	require.NoError(t, cart.AddItem("CROISSANT", 3))

	sale, err := processor.Commit(context.Background(), cart, pos.MustPrice("0.0825"))
	require.NoError(t, err)

	assert.True(t, sale.Total.Equal(sale.Subtotal.Add(sale.Tax)))

	sum := pos.MustPrice("0")
	for _, li := range sale.Items {
		sum = sum.Add(li.LineTotal())
	}
	assert.True(t, sale.Subtotal.Equal(sum))
}

// =============================================================================
// COMMIT - rejections leave everything untouched
// =============================================================================

func TestProcessor_Commit_EmptyCart(t *testing.T) {
	processor, ledger, history := newTestProcessor(t, coffee(10))
	cart := pos.NewCart("cashier-1", ledger)

	_, err := processor.Commit(context.Background(), cart, pos.MustPrice("0.08"))
	assert.ErrorIs(t, err, pos.ErrEmptyCart)

	p, _ := ledger.Lookup("COFFEE")
	assert.Equal(t, 10, p.Stock, "ledger must be untouched")

	it, err := history.Query(context.Background(), time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, it.Len(), "no sale may be recorded")
}

func TestProcessor_Commit_InsufficientStock(t *testing.T) {
	// GIVEN: COFFEE stock 10, a cart requesting 15
	// THEN: InsufficientStock("COFFEE", 15, 10); stock stays 10; no sale
	//       recorded; the cart stays Building and mutable

	processor, ledger, history := newTestProcessor(t, coffee(10))
	ctx := context.Background()

	cart := pos.NewCart("cashier-1", ledger)
	require.NoError(t, cart.AddItem("COFFEE", 15))

	_, err := processor.Commit(ctx, cart, pos.MustPrice("0.08"))
	require.Error(t, err)

	var short *pos.InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.Len(t, short.Shortfalls, 1)
	assert.Equal(t, pos.ProductID("COFFEE"), short.Shortfalls[0].ProductID)
	assert.Equal(t, 15, short.Shortfalls[0].Requested)
	assert.Equal(t, 10, short.Shortfalls[0].Available)

	p, _ := ledger.Lookup("COFFEE")
	assert.Equal(t, 10, p.Stock)

	it, err := history.Query(ctx, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, it.Len())

	// The cashier can recover: reduce the quantity and retry.
	assert.Equal(t, pos.CartBuilding, cart.State())
	require.NoError(t, cart.SetQuantity("COFFEE", 5))
	sale, err := processor.Commit(ctx, cart, pos.MustPrice("0.08"))
	require.NoError(t, err)
	assert.Equal(t, "12.50", sale.Subtotal.StringFixed(2))
}

// =============================================================================
// COMMIT - atomicity across ledger and history
// =============================================================================

func TestProcessor_Commit_HistoryFailureRecreditsStock(t *testing.T) {
	// GIVEN: the sale store rejects every append
	// WHEN: a commit deducts stock and then fails to record the sale
	// THEN: the deduction is re-credited, the error is
	//       ErrPersistenceUnavailable, and the cart is Failed

	ledger, mem := newTestLedger(t, coffee(10))
	history := pos.NewHistory(&brokenSaleStore{Memory: mem})
	processor := pos.NewProcessor(ledger, history, quietLogger())
	ctx := context.Background()

	cart := pos.NewCart("cashier-1", ledger)
	require.NoError(t, cart.AddItem("COFFEE", 3))

	_, err := processor.Commit(ctx, cart, pos.MustPrice("0.08"))
	require.Error(t, err)
	assert.ErrorIs(t, err, pos.ErrPersistenceUnavailable)

	p, _ := ledger.Lookup("COFFEE")
	assert.Equal(t, 10, p.Stock, "deducted stock must be re-credited")

	assert.Equal(t, pos.CartFailed, cart.State())
	assert.ErrorIs(t, cart.AddItem("COFFEE", 1), pos.ErrCartFinalized)
}

func TestProcessor_Commit_CommittedCartIsFinal(t *testing.T) {
	processor, ledger, _ := newTestProcessor(t, coffee(10))
	ctx := context.Background()

	cart := pos.NewCart("cashier-1", ledger)
	require.NoError(t, cart.AddItem("COFFEE", 1))

	_, err := processor.Commit(ctx, cart, pos.MustPrice("0.08"))
	require.NoError(t, err)

	// No further mutation, no double commit.
	assert.ErrorIs(t, cart.AddItem("COFFEE", 1), pos.ErrCartFinalized)
	assert.ErrorIs(t, cart.SetQuantity("COFFEE", 5), pos.ErrCartFinalized)
	_, err = processor.Commit(ctx, cart, pos.MustPrice("0.08"))
	assert.ErrorIs(t, err, pos.ErrCartFinalized)

	p, _ := ledger.Lookup("COFFEE")
	assert.Equal(t, 9, p.Stock, "the failed re-commit must not deduct again")
}
