package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var primaryKey = map[string]string{
	"sqlite": "INTEGER PRIMARY KEY AUTOINCREMENT",
	"pgx":    "BIGSERIAL PRIMARY KEY",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{pk}},
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id {{pk}},
		name TEXT NOT NULL,
		contact_number TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		tax_id TEXT NOT NULL DEFAULT '',
		contact_person TEXT NOT NULL DEFAULT '',
		payment_terms TEXT NOT NULL DEFAULT '30 Days',
		preferred_payment_mode TEXT NOT NULL DEFAULT 'Bank Transfer',
		rating INTEGER NOT NULL DEFAULT 3,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS medicines (
		id {{pk}},
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		batch_number TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		expiry_date DATE NOT NULL,
		supplier_id BIGINT REFERENCES suppliers(id),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_medicines_expiry ON medicines(expiry_date)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id {{pk}},
		customer_name TEXT,
		payment_method TEXT NOT NULL,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created ON sales(created_at)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id {{pk}},
		sale_id BIGINT NOT NULL REFERENCES sales(id),
		medicine_id BIGINT NOT NULL REFERENCES medicines(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(12,2) NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_medicine ON sale_items(medicine_id)`,
	`CREATE TABLE IF NOT EXISTS purchase_orders (
		id {{pk}},
		supplier_id BIGINT NOT NULL REFERENCES suppliers(id),
		po_number TEXT NOT NULL UNIQUE,
		po_date DATE NOT NULL,
		expected_delivery DATE,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'Pending',
		notes TEXT NOT NULL DEFAULT '',
		received_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_order_items (
		id {{pk}},
		po_id BIGINT NOT NULL REFERENCES purchase_orders(id),
		medicine_id BIGINT REFERENCES medicines(id),
		medicine_name TEXT NOT NULL,
		batch_number TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price NUMERIC(12,2) NOT NULL,
		received_quantity INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS supplier_payments (
		id {{pk}},
		supplier_id BIGINT NOT NULL REFERENCES suppliers(id),
		po_id BIGINT REFERENCES purchase_orders(id),
		payment_date DATE NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		payment_mode TEXT NOT NULL,
		reference_number TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_returns (
		id {{pk}},
		supplier_id BIGINT NOT NULL REFERENCES suppliers(id),
		medicine_id BIGINT NOT NULL REFERENCES medicines(id),
		return_date DATE NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		reason TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		credit_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
}

// Run creates every table the service uses. It is idempotent and runs once
// at startup, so no query has to guard against a missing ledger table.
func Run(ctx context.Context, db *sqlx.DB) error {
	pk, ok := primaryKey[db.DriverName()]
	if !ok {
		return fmt.Errorf("migrations: unsupported driver %q", db.DriverName())
	}
	replacer := strings.NewReplacer("{{pk}}", pk)
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, replacer.Replace(stmt)); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
