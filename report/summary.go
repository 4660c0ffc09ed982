/*
Package report aggregates committed sales for external reporting
collaborators (spreadsheet export, dashboards).

PURPOSE:
  Walks the Sale History's read-only iterator and reduces it to the
  figures a report needs: counts, gross/tax/net, and per-product quantity
  and revenue. File formatting is someone else's job; this package only
  produces the numbers.

SEE ALSO:
  - pos/history.go: the iterator contract consumed here
*/
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cantina/pos-engine/pos"
)

// ProductSales is the per-product slice of a summary.
type ProductSales struct {
	Name     string
	Quantity int
	Revenue  decimal.Decimal
}

// Summary aggregates every sale committed in [From, To].
type Summary struct {
	From      time.Time
	To        time.Time
	SaleCount int
	Gross     decimal.Decimal // sum of totals (tax included)
	Tax       decimal.Decimal
	Net       decimal.Decimal // sum of subtotals
	ByProduct map[pos.ProductID]ProductSales
}

// Summarize reduces the history range to a Summary. Read-only.
func Summarize(ctx context.Context, history *pos.History, from, to time.Time) (Summary, error) {
	it, err := history.Query(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		From:      from,
		To:        to,
		Gross:     decimal.Zero,
		Tax:       decimal.Zero,
		Net:       decimal.Zero,
		ByProduct: make(map[pos.ProductID]ProductSales),
	}
	for sale, ok := it.Next(); ok; sale, ok = it.Next() {
		sum.SaleCount++
		sum.Gross = sum.Gross.Add(sale.Total)
		sum.Tax = sum.Tax.Add(sale.Tax)
		sum.Net = sum.Net.Add(sale.Subtotal)

		for _, li := range sale.Items {
			ps := sum.ByProduct[li.ProductID]
			if ps.Name == "" {
				ps.Name = li.Name
			}
			ps.Quantity += li.Quantity
			ps.Revenue = ps.Revenue.Add(li.LineTotal())
			sum.ByProduct[li.ProductID] = ps
		}
	}
	return sum, nil
}
