package store

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
)

const medicineSelect = `SELECT m.id, m.name, m.category, m.batch_number, m.price, m.quantity,
	m.expiry_date, m.supplier_id, s.name AS supplier_name, m.created_at
	FROM medicines m
	LEFT JOIN suppliers s ON s.id = m.supplier_id`

const stockLevelSelect = `SELECT m.id, m.name, m.category, m.quantity, COALESCE(s.name, '') AS supplier_name
	FROM medicines m
	LEFT JOIN suppliers s ON s.id = m.supplier_id`

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type MedicineRepo struct {
	q sqlx.ExtContext
}

func (r MedicineRepo) Create(ctx context.Context, m *domain.Medicine) error {
	m.CreatedAt = time.Now().UTC()
	err := r.q.QueryRowxContext(ctx, r.q.Rebind(`INSERT INTO medicines
		(name, category, batch_number, price, quantity, expiry_date, supplier_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		m.Name, m.Category, m.BatchNumber, m.Price, m.Quantity, m.ExpiryDate, m.SupplierID, m.CreatedAt,
	).Scan(&m.ID)
	return wrap(err, "create medicine")
}

func (r MedicineRepo) Get(ctx context.Context, id int64) (*domain.Medicine, error) {
	var m domain.Medicine
	if err := sqlx.GetContext(ctx, r.q, &m, r.q.Rebind(medicineSelect+` WHERE m.id = ?`), id); err != nil {
		return nil, wrap(err, "get medicine")
	}
	return &m, nil
}

func (r MedicineRepo) List(ctx context.Context) ([]domain.Medicine, error) {
	meds := []domain.Medicine{}
	if err := sqlx.SelectContext(ctx, r.q, &meds, medicineSelect+` ORDER BY m.name, m.id`); err != nil {
		return nil, wrap(err, "list medicines")
	}
	return meds, nil
}

// ListByQuantity orders the catalog from lowest to highest stock.
func (r MedicineRepo) ListByQuantity(ctx context.Context) ([]domain.Medicine, error) {
	meds := []domain.Medicine{}
	if err := sqlx.SelectContext(ctx, r.q, &meds, medicineSelect+` ORDER BY m.quantity, m.name`); err != nil {
		return nil, wrap(err, "list stock")
	}
	return meds, nil
}

// Search matches name or batch number among medicines that can still be sold.
func (r MedicineRepo) Search(ctx context.Context, term string, today domain.Date, limit int) ([]domain.Medicine, error) {
	like := "%" + likeEscaper.Replace(term) + "%"
	meds := []domain.Medicine{}
	err := sqlx.SelectContext(ctx, r.q, &meds, r.q.Rebind(medicineSelect+`
		WHERE (LOWER(m.name) LIKE LOWER(?) ESCAPE '\' OR LOWER(m.batch_number) LIKE LOWER(?) ESCAPE '\')
		AND m.quantity > 0 AND m.expiry_date >= ?
		ORDER BY m.name LIMIT ?`), like, like, today, limit)
	if err != nil {
		return nil, wrap(err, "search medicines")
	}
	return meds, nil
}

// ExpiringBy returns medicines whose expiry date is on or before cutoff,
// soonest first.
func (r MedicineRepo) ExpiringBy(ctx context.Context, cutoff domain.Date, stockedOnly bool) ([]domain.Medicine, error) {
	query := medicineSelect + ` WHERE m.expiry_date <= ?`
	if stockedOnly {
		query += ` AND m.quantity > 0`
	}
	query += ` ORDER BY m.expiry_date, m.name`
	meds := []domain.Medicine{}
	if err := sqlx.SelectContext(ctx, r.q, &meds, r.q.Rebind(query), cutoff); err != nil {
		return nil, wrap(err, "list expiring medicines")
	}
	return meds, nil
}

// Update rewrites the descriptive fields. Quantity is left out:
// it only changes through the inventory package.
func (r MedicineRepo) Update(ctx context.Context, m *domain.Medicine) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE medicines
		SET name = ?, category = ?, batch_number = ?, price = ?, expiry_date = ?, supplier_id = ?
		WHERE id = ?`),
		m.Name, m.Category, m.BatchNumber, m.Price, m.ExpiryDate, m.SupplierID, m.ID)
	if err != nil {
		return wrap(err, "update medicine")
	}
	return mustAffect(res, "update medicine")
}

// Delete refuses to remove a medicine that historical records point at.
func (r MedicineRepo) Delete(ctx context.Context, id int64) error {
	var referenced bool
	err := sqlx.GetContext(ctx, r.q, &referenced, r.q.Rebind(`SELECT
		EXISTS(SELECT 1 FROM sale_items WHERE medicine_id = ?)
		OR EXISTS(SELECT 1 FROM purchase_returns WHERE medicine_id = ?)
		OR EXISTS(SELECT 1 FROM purchase_order_items WHERE medicine_id = ?)`), id, id, id)
	if err != nil {
		return wrap(err, "check medicine references")
	}
	if referenced {
		return wrap(errReferenced("medicine"), "delete medicine")
	}
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM medicines WHERE id = ?`), id)
	if err != nil {
		return wrap(err, "delete medicine")
	}
	return mustAffect(res, "delete medicine")
}

func (r MedicineRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM medicines`)
	return n, wrap(err, "count medicines")
}

func (r MedicineRepo) CountBelow(ctx context.Context, threshold int64) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, r.q, &n, r.q.Rebind(`SELECT COUNT(*) FROM medicines WHERE quantity < ?`), threshold)
	return n, wrap(err, "count low stock")
}

func (r MedicineRepo) StockLevel(ctx context.Context, id int64) (*domain.StockLevel, error) {
	var lvl domain.StockLevel
	if err := sqlx.GetContext(ctx, r.q, &lvl, r.q.Rebind(stockLevelSelect+` WHERE m.id = ?`), id); err != nil {
		return nil, wrap(err, "get stock level")
	}
	return &lvl, nil
}

// StockBetween lists medicines whose quantity lies in [min, max].
func (r MedicineRepo) StockBetween(ctx context.Context, min, max int64) ([]domain.StockLevel, error) {
	levels := []domain.StockLevel{}
	err := sqlx.SelectContext(ctx, r.q, &levels, r.q.Rebind(stockLevelSelect+`
		WHERE m.quantity BETWEEN ? AND ? ORDER BY m.quantity, m.name`), min, max)
	if err != nil {
		return nil, wrap(err, "list stock band")
	}
	return levels, nil
}

// DecrementQuantity subtracts delta only while enough stock remains. It
// reports false, without error, when the guard rejected the update.
func (r MedicineRepo) DecrementQuantity(ctx context.Context, id, delta int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE medicines
		SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`), delta, id, delta)
	if err != nil {
		return false, wrap(err, "decrement stock")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap(err, "decrement stock")
	}
	return n == 1, nil
}

func (r MedicineRepo) IncrementQuantity(ctx context.Context, id, delta int64) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE medicines SET quantity = quantity + ? WHERE id = ?`), delta, id)
	if err != nil {
		return wrap(err, "increment stock")
	}
	return mustAffect(res, "increment stock")
}

func (r MedicineRepo) SetQuantity(ctx context.Context, id, quantity int64) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE medicines SET quantity = ? WHERE id = ?`), quantity, id)
	if err != nil {
		return wrap(err, "set stock")
	}
	return mustAffect(res, "set stock")
}
