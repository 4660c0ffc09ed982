/*
main.go - Terminal entry point

PURPOSE:
  Wires the POS core for one terminal: opens the SQLite store, loads the
  Ledger, seeds a starter catalog on first run, and runs a demonstration
  sale so a fresh checkout can be smoke-tested end to end. The real
  presentation layer (GUI) drives the same components through the same
  calls.

COMMAND-LINE FLAGS:
  -db       SQLite database path (default: pos.db, ":memory:" works)
  -cashier  cashier identity for the demo sale (default: demo)
  -tax      tax rate as a decimal string (default: 0.08)

SEE ALSO:
  - pos/processor.go: the commit path exercised here
  - store/sqlite: the durable store
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cantina/pos-engine/pos"
	"github.com/cantina/pos-engine/register"
	"github.com/cantina/pos-engine/report"
	"github.com/cantina/pos-engine/store/sqlite"
)

func main() {
	var (
		dbPath  = flag.String("db", "pos.db", "SQLite database path (\":memory:\" for in-memory)")
		cashier = flag.String("cashier", "demo", "cashier identity for the demo sale")
		taxRate = flag.String("tax", "0.08", "tax rate as a decimal string")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(*dbPath, *cashier, *taxRate, log); err != nil {
		log.WithError(err).Error("terminal run failed")
		os.Exit(1)
	}
}

func run(dbPath, cashier, taxRate string, log *logrus.Logger) error {
	rate, err := decimal.NewFromString(taxRate)
	if err != nil {
		return fmt.Errorf("parse tax rate %q: %w", taxRate, err)
	}

	st, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	ledger, err := pos.Open(ctx, st)
	if err != nil {
		return err
	}

	if len(ledger.Products()) == 0 {
		if err := seedCatalog(ctx, ledger); err != nil {
			return err
		}
		log.WithField("products", len(ledger.Products())).Info("seeded starter catalog")
	}

	history := pos.NewHistory(st)
	processor := pos.NewProcessor(ledger, history, log)
	session := register.Open(cashier, log)

	// Demo sale: one americano and a croissant.
	cart := pos.NewCart(pos.CashierID(cashier), ledger)
	if err := cart.AddItem("AMERICANO", 1); err != nil {
		return err
	}
	if err := cart.AddItem("CROISSANT", 1); err != nil {
		return err
	}

	sale, err := processor.Commit(ctx, cart, rate)
	if err != nil {
		return err
	}
	if err := session.RecordSale(sale); err != nil {
		return err
	}
	printReceipt(sale)

	day, err := report.Summarize(ctx, history,
		sale.CommittedAt.Truncate(24*time.Hour), sale.CommittedAt)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"sales": day.SaleCount,
		"gross": day.Gross.StringFixed(2),
	}).Info("sales so far today")

	summary, err := session.Close()
	if err != nil {
		return err
	}
	fmt.Printf("drawer %s: %d sale(s), gross %s\n",
		summary.SessionID, summary.SaleCount, summary.Gross.StringFixed(2))
	return nil
}

func seedCatalog(ctx context.Context, ledger *pos.Ledger) error {
	starters := []pos.Product{
		{ID: "AMERICANO", Name: "Cafe Americano", Price: pos.MustPrice("2.50"), Stock: 50},
		{ID: "LATTE", Name: "Cafe con Leche", Price: pos.MustPrice("3.00"), Stock: 45},
		{ID: "CROISSANT", Name: "Croissant", Price: pos.MustPrice("1.75"), Stock: 20},
		{ID: "MUFFIN", Name: "Muffin de Chocolate", Price: pos.MustPrice("2.25"), Stock: 15},
		{ID: "SANDWICH", Name: "Sandwich Mixto", Price: pos.MustPrice("4.50"), Stock: 10},
	}
	for _, p := range starters {
		if err := ledger.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func printReceipt(sale pos.Sale) {
	fmt.Printf("---- sale %s ----\n", sale.ID)
	for _, li := range sale.Items {
		fmt.Printf("%-24s x%-3d %8s\n", li.Name, li.Quantity, li.LineTotal().StringFixed(2))
	}
	fmt.Printf("%-29s %8s\n", "subtotal", sale.Subtotal.StringFixed(2))
	fmt.Printf("%-29s %8s\n", "tax", sale.Tax.StringFixed(2))
	fmt.Printf("%-29s %8s\n", "total", sale.Total.StringFixed(2))
}
