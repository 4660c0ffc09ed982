/*
processor.go - Commit a cart into an immutable Sale

PURPOSE:
  The Processor is the one place a sale happens: it validates the cart,
  asks the Ledger for an all-or-nothing stock deduction, appends the Sale
  to History, and returns the Sale as the receipt payload.

STATE MACHINE (per cart):
  Building -> Committed    on success
  Building -> Building     on recoverable rejection (EmptyCart,
                           InsufficientStock): the cart is unchanged and
                           the cashier can adjust it and retry
  Building -> Failed       on persistence failure: the sale is abandoned
                           and any deducted stock has been re-credited

ATOMICITY:
  From the caller's point of view, commit either records a Sale with its
  stock deducted, or records nothing. If the History append fails after
  the Ledger deduction succeeded, the Processor re-credits the Ledger
  (compensating rollback - see DESIGN.md open-question decision) before
  surfacing ErrPersistenceUnavailable.

SEE ALSO:
  - ledger.go: ReserveAndDeduct, recredit
  - history.go: the append target
*/
package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Processor commits carts against an injected Ledger and History.
// Stateless and safe for concurrent use by multiple cashier terminals.
type Processor struct {
	ledger  *Ledger
	history *History
	log     logrus.FieldLogger
}

// NewProcessor wires a Processor. A nil logger falls back to the standard
// logrus logger.
func NewProcessor(ledger *Ledger, history *History, log logrus.FieldLogger) *Processor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Processor{ledger: ledger, history: history, log: log}
}

// Commit finalizes a cart into a Sale.
//
// Steps:
//  1. reject non-Building carts and empty carts
//  2. compute totals from the cart's snapshotted prices
//  3. Ledger.ReserveAndDeduct - the all-or-nothing stock step
//  4. append the Sale to History; on failure re-credit the Ledger
//  5. transition the cart and return the Sale (the receipt payload)
func (p *Processor) Commit(ctx context.Context, cart *Cart, taxRate decimal.Decimal) (Sale, error) {
	if cart.State() != CartBuilding {
		return Sale{}, fmt.Errorf("%w: cart is %s", ErrCartFinalized, cart.State())
	}
	if cart.IsEmpty() {
		return Sale{}, ErrEmptyCart
	}

	items := cart.Items()
	totals := cart.ComputeTotals(taxRate)

	if err := p.ledger.ReserveAndDeduct(ctx, items); err != nil {
		if errors.Is(err, ErrPersistenceUnavailable) {
			cart.markFailed()
			p.log.WithError(err).WithField("cashier", cart.Cashier()).
				Error("commit aborted: stock write failed")
			return Sale{}, err
		}
		// Recoverable: cart stays Building, untouched, so the cashier can
		// adjust quantities and retry.
		p.log.WithError(err).WithField("cashier", cart.Cashier()).
			Warn("commit rejected")
		return Sale{}, err
	}

	sale := Sale{
		ID:          SaleID(uuid.NewString()),
		CashierID:   cart.Cashier(),
		Items:       items,
		Subtotal:    totals.Subtotal,
		Tax:         totals.Tax,
		Total:       totals.Total,
		CommittedAt: time.Now().UTC(),
	}

	if err := p.history.Append(ctx, sale); err != nil {
		// Stock is deducted but the sale record is not durable. Re-credit
		// so that either both happened or neither did.
		if rbErr := p.ledger.recredit(ctx, items); rbErr != nil {
			p.log.WithError(rbErr).WithField("sale_id", sale.ID).
				Error("re-credit after failed sale append also failed")
		}
		cart.markFailed()
		p.log.WithError(err).WithFields(logrus.Fields{
			"sale_id": sale.ID,
			"cashier": sale.CashierID,
		}).Error("commit aborted: sale record append failed, stock re-credited")
		return Sale{}, err
	}

	cart.markCommitted()
	p.log.WithFields(logrus.Fields{
		"sale_id": sale.ID,
		"cashier": sale.CashierID,
		"items":   len(sale.Items),
		"total":   sale.Total.StringFixed(2),
	}).Info("sale committed")
	return sale, nil
}
