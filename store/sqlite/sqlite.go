/*
Package sqlite provides a SQLite-backed implementation of the persistence
collaborator interfaces (pos.CatalogStore, pos.SaleStore).

PURPOSE:
  A single cafeteria terminal keeps its catalog and sale log in one local
  SQLite file. The same SQL shape ports to PostgreSQL with only dialect
  changes if terminals ever share a central database.

KEY TABLES:
  products:    current definition and stock per product
  sales:       one row per committed sale (totals, cashier, timestamp)
  sale_items:  line items, positioned, per sale

APPEND-ONLY ENFORCEMENT:
  sales and sale_items are never UPDATEd or DELETEd. Stock corrections go
  through the Ledger as compensating adjustments, which arrive here as
  fresh absolute writes on products.stock.

TIMESTAMPS:
  committed_at is stored as unix nanoseconds (INTEGER) so range queries
  compare numerically; RFC 3339 text would need normalization to compare.

WAL MODE:
  Opened with WAL so readers (reporting) never block the writer (sales).

USAGE:
  st, err := sqlite.New("./data/pos.db")   // or ":memory:"
  if err != nil { ... }
  defer st.Close()
  ledger, err := pos.Open(ctx, st)

SEE ALSO:
  - pos/store.go: interface definitions
  - store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/cantina/pos-engine/pos"
)

// Store implements pos.CatalogStore and pos.SaleStore over SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface checks.
var (
	_ pos.CatalogStore = (*Store)(nil)
	_ pos.SaleStore    = (*Store)(nil)
)

// New opens (or creates) the database at dbPath and ensures the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id    TEXT PRIMARY KEY,
		name  TEXT NOT NULL,
		price TEXT NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0
	);

	-- Sales (append-only)
	CREATE TABLE IF NOT EXISTS sales (
		id           TEXT PRIMARY KEY,
		cashier_id   TEXT NOT NULL,
		subtotal     TEXT NOT NULL,
		tax          TEXT NOT NULL,
		total        TEXT NOT NULL,
		committed_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_committed_at
		ON sales(committed_at);

	-- Line items (append-only, ordered by position within a sale)
	CREATE TABLE IF NOT EXISTS sale_items (
		sale_id    TEXT NOT NULL REFERENCES sales(id),
		position   INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		name       TEXT NOT NULL,
		quantity   INTEGER NOT NULL,
		unit_price TEXT NOT NULL,
		PRIMARY KEY (sale_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CATALOG STORE
// =============================================================================

func (s *Store) LoadCatalog(ctx context.Context) ([]pos.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, stock FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	var products []pos.Product
	for rows.Next() {
		var p pos.Product
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Stock); err != nil {
			return nil, fmt.Errorf("load catalog: scan: %w", err)
		}
		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("load catalog: price for %s: %w", p.ID, err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) SaveProduct(ctx context.Context, p pos.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, stock) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, price = excluded.price`,
		p.ID, p.Name, p.Price.String(), p.Stock)
	if err != nil {
		return fmt.Errorf("save product %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) SaveStock(ctx context.Context, id pos.ProductID, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET stock = ? WHERE id = ?`, quantity, id)
	if err != nil {
		return fmt.Errorf("save stock %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save stock %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("save stock: product %s not stored", id)
	}
	return nil
}

// =============================================================================
// SALE STORE - append-only
// =============================================================================

// AppendSaleRecord writes the sale row and all its line items in one
// database transaction: a sale is never half-persisted.
func (s *Store) AppendSaleRecord(ctx context.Context, sale pos.Sale) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append sale %s: begin: %w", sale.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, cashier_id, subtotal, tax, total, committed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.CashierID,
		sale.Subtotal.String(), sale.Tax.String(), sale.Total.String(),
		sale.CommittedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("append sale %s: %w", sale.ID, err)
	}

	for i, li := range sale.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, position, product_id, name, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sale.ID, i, li.ProductID, li.Name, li.Quantity, li.UnitPrice.String())
		if err != nil {
			return fmt.Errorf("append sale %s item %d: %w", sale.ID, i, err)
		}
	}

	return tx.Commit()
}

func (s *Store) LoadSalesInRange(ctx context.Context, from, to time.Time) ([]pos.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.cashier_id, s.subtotal, s.tax, s.total, s.committed_at,
		       i.product_id, i.name, i.quantity, i.unit_price
		FROM sales s
		JOIN sale_items i ON i.sale_id = s.id
		WHERE s.committed_at >= ? AND s.committed_at <= ?
		ORDER BY s.committed_at, s.id, i.position`,
		from.UnixNano(), to.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	defer rows.Close()

	var sales []pos.Sale
	for rows.Next() {
		var (
			id, cashier, subtotal, tax, total string
			committedNs                       int64
			prodID, name, unitPrice           string
			quantity                          int
		)
		if err := rows.Scan(&id, &cashier, &subtotal, &tax, &total, &committedNs,
			&prodID, &name, &quantity, &unitPrice); err != nil {
			return nil, fmt.Errorf("load sales: scan: %w", err)
		}

		if len(sales) == 0 || string(sales[len(sales)-1].ID) != id {
			sale, err := scanSale(id, cashier, subtotal, tax, total, committedNs)
			if err != nil {
				return nil, err
			}
			sales = append(sales, sale)
		}

		price, err := decimal.NewFromString(unitPrice)
		if err != nil {
			return nil, fmt.Errorf("load sales: unit price in %s: %w", id, err)
		}
		last := len(sales) - 1
		sales[last].Items = append(sales[last].Items, pos.LineItem{
			ProductID: pos.ProductID(prodID),
			Name:      name,
			Quantity:  quantity,
			UnitPrice: price,
		})
	}
	return sales, rows.Err()
}

func scanSale(id, cashier, subtotal, tax, total string, committedNs int64) (pos.Sale, error) {
	sub, err := decimal.NewFromString(subtotal)
	if err != nil {
		return pos.Sale{}, fmt.Errorf("load sales: subtotal in %s: %w", id, err)
	}
	tx, err := decimal.NewFromString(tax)
	if err != nil {
		return pos.Sale{}, fmt.Errorf("load sales: tax in %s: %w", id, err)
	}
	tot, err := decimal.NewFromString(total)
	if err != nil {
		return pos.Sale{}, fmt.Errorf("load sales: total in %s: %w", id, err)
	}
	return pos.Sale{
		ID:          pos.SaleID(id),
		CashierID:   pos.CashierID(cashier),
		Subtotal:    sub,
		Tax:         tx,
		Total:       tot,
		CommittedAt: time.Unix(0, committedNs).UTC(),
	}, nil
}
