package store

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"pharmacy/m/domain"
)

const saleSelect = `SELECT id, customer_name, payment_method, total_amount, created_at FROM sales`

type SaleRepo struct {
	q sqlx.ExtContext
}

// Create inserts the sale header. CreatedAt is stamped here when unset.
func (r SaleRepo) Create(ctx context.Context, s *domain.Sale) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	err := r.q.QueryRowxContext(ctx, r.q.Rebind(`INSERT INTO sales (customer_name, payment_method, total_amount, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`), s.CustomerName, s.PaymentMethod, s.TotalAmount, s.CreatedAt).Scan(&s.ID)
	return wrap(err, "create sale")
}

func (r SaleRepo) AddItem(ctx context.Context, item *domain.SaleItem) error {
	err := r.q.QueryRowxContext(ctx, r.q.Rebind(`INSERT INTO sale_items (sale_id, medicine_id, quantity, unit_price, subtotal)
		VALUES (?, ?, ?, ?, ?) RETURNING id`),
		item.SaleID, item.MedicineID, item.Quantity, item.UnitPrice, item.Subtotal).Scan(&item.ID)
	return wrap(err, "add sale item")
}

func (r SaleRepo) SetTotal(ctx context.Context, id int64, total decimal.Decimal) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE sales SET total_amount = ? WHERE id = ?`), total, id)
	if err != nil {
		return wrap(err, "set sale total")
	}
	return mustAffect(res, "set sale total")
}

func (r SaleRepo) Get(ctx context.Context, id int64) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := sqlx.GetContext(ctx, r.q, &inv.Sale, r.q.Rebind(saleSelect+` WHERE id = ?`), id); err != nil {
		return nil, wrap(err, "get sale")
	}
	items, err := r.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

func (r SaleRepo) Items(ctx context.Context, saleID int64) ([]domain.SaleItem, error) {
	items := []domain.SaleItem{}
	err := sqlx.SelectContext(ctx, r.q, &items, r.q.Rebind(`SELECT si.id, si.sale_id, si.medicine_id,
		m.name AS medicine_name, m.category, m.batch_number, si.quantity, si.unit_price, si.subtotal
		FROM sale_items si
		JOIN medicines m ON m.id = si.medicine_id
		WHERE si.sale_id = ?
		ORDER BY si.id`), saleID)
	if err != nil {
		return nil, wrap(err, "list sale items")
	}
	return items, nil
}

// List returns sales newest first, optionally bounded to [from, to).
func (r SaleRepo) List(ctx context.Context, from, to *time.Time) ([]domain.Sale, error) {
	var (
		clauses []string
		args    []any
	)
	if from != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, from.UTC())
	}
	if to != nil {
		clauses = append(clauses, "created_at < ?")
		args = append(args, to.UTC())
	}
	query := saleSelect
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	sales := []domain.Sale{}
	if err := sqlx.SelectContext(ctx, r.q, &sales, r.q.Rebind(query), args...); err != nil {
		return nil, wrap(err, "list sales")
	}
	return sales, nil
}

// TotalBetween sums sale totals in [from, to). The sum is taken in Go so the
// result stays exact on drivers that return floating point aggregates.
func (r SaleRepo) TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := sqlx.SelectContext(ctx, r.q, &totals, r.q.Rebind(`SELECT total_amount FROM sales
		WHERE created_at >= ? AND created_at < ?`), from.UTC(), to.UTC())
	if err != nil {
		return decimal.Zero, wrap(err, "sum sales")
	}
	return decimal.Sum(decimal.Zero, totals...), nil
}
