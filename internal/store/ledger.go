package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"pharmacy/m/domain"
)

const purchaseOrderSelect = `SELECT po.id, po.supplier_id, s.name AS supplier_name, po.po_number, po.po_date,
	po.expected_delivery, po.total_amount, po.status, po.notes, po.received_at, po.created_at
	FROM purchase_orders po
	JOIN suppliers s ON s.id = po.supplier_id`

const paymentSelect = `SELECT p.id, p.supplier_id, s.name AS supplier_name, p.po_id, po.po_number,
	p.payment_date, p.amount, p.payment_mode, p.reference_number, p.notes, p.created_at
	FROM supplier_payments p
	JOIN suppliers s ON s.id = p.supplier_id
	LEFT JOIN purchase_orders po ON po.id = p.po_id`

const returnSelect = `SELECT r.id, r.supplier_id, s.name AS supplier_name, r.medicine_id, m.name AS medicine_name,
	r.return_date, r.quantity, r.reason, r.status, r.credit_amount, r.notes, r.created_at
	FROM purchase_returns r
	JOIN suppliers s ON s.id = r.supplier_id
	JOIN medicines m ON m.id = r.medicine_id`

// LedgerRepo covers the supplier side of the books: purchase orders,
// payments and returns.
type LedgerRepo struct {
	q sqlx.ExtContext
}

// CreatePurchaseOrder inserts the order and its items. The order total is
// computed from the items and overwrites po.TotalAmount.
func (r LedgerRepo) CreatePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error {
	po.CreatedAt = time.Now().UTC()
	if po.Status == "" {
		po.Status = domain.StatusPending
	}
	total := decimal.Zero
	for _, item := range po.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}
	po.TotalAmount = total

	err := r.q.QueryRowxContext(ctx, r.q.Rebind(`INSERT INTO purchase_orders
		(supplier_id, po_number, po_date, expected_delivery, total_amount, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		po.SupplierID, po.PONumber, po.PODate, po.ExpectedDelivery, po.TotalAmount, po.Status, po.Notes, po.CreatedAt,
	).Scan(&po.ID)
	if err != nil {
		return wrap(err, "create purchase order")
	}

	for i := range po.Items {
		item := &po.Items[i]
		item.POID = po.ID
		err := r.q.QueryRowxContext(ctx, r.q.Rebind(`INSERT INTO purchase_order_items
			(po_id, medicine_id, medicine_name, batch_number, quantity, price, received_quantity)
			VALUES (?, ?, ?, ?, ?, ?, 0) RETURNING id`),
			item.POID, item.MedicineID, item.MedicineName, item.BatchNumber, item.Quantity, item.Price,
		).Scan(&item.ID)
		if err != nil {
			return wrap(err, "add purchase order item")
		}
	}
	return nil
}

func (r LedgerRepo) GetPurchaseOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	if err := sqlx.GetContext(ctx, r.q, &po, r.q.Rebind(purchaseOrderSelect+` WHERE po.id = ?`), id); err != nil {
		return nil, wrap(err, "get purchase order")
	}
	items := []domain.PurchaseOrderItem{}
	err := sqlx.SelectContext(ctx, r.q, &items, r.q.Rebind(`SELECT id, po_id, medicine_id, medicine_name,
		batch_number, quantity, price, received_quantity
		FROM purchase_order_items WHERE po_id = ? ORDER BY id`), id)
	if err != nil {
		return nil, wrap(err, "list purchase order items")
	}
	po.Items = items
	return &po, nil
}

// ListPurchaseOrders returns orders newest first, optionally for one supplier.
func (r LedgerRepo) ListPurchaseOrders(ctx context.Context, supplierID *int64) ([]domain.PurchaseOrder, error) {
	query := purchaseOrderSelect
	var args []any
	if supplierID != nil {
		query += ` WHERE po.supplier_id = ?`
		args = append(args, *supplierID)
	}
	query += ` ORDER BY po.po_date DESC, po.id DESC`

	orders := []domain.PurchaseOrder{}
	if err := sqlx.SelectContext(ctx, r.q, &orders, r.q.Rebind(query), args...); err != nil {
		return nil, wrap(err, "list purchase orders")
	}
	return orders, nil
}

// MarkReceived moves a pending order to Received. An order that was already
// received yields ErrConflict.
func (r LedgerRepo) MarkReceived(ctx context.Context, id int64, at time.Time) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE purchase_orders
		SET status = ?, received_at = ? WHERE id = ? AND status <> ?`),
		domain.StatusReceived, at.UTC(), id, domain.StatusReceived)
	if err != nil {
		return wrap(err, "receive purchase order")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err, "receive purchase order")
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, r.q, &exists, r.q.Rebind(`SELECT EXISTS(SELECT 1 FROM purchase_orders WHERE id = ?)`), id); err != nil {
		return wrap(err, "receive purchase order")
	}
	if !exists {
		return fmt.Errorf("receive purchase order: %w", domain.ErrNotFound)
	}
	return fmt.Errorf("purchase order %d already received: %w", id, domain.ErrConflict)
}

func (r LedgerRepo) SetReceivedQuantity(ctx context.Context, itemID, quantity int64) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE purchase_order_items SET received_quantity = ? WHERE id = ?`), quantity, itemID)
	if err != nil {
		return wrap(err, "set received quantity")
	}
	return mustAffect(res, "set received quantity")
}

func (r LedgerRepo) CreatePayment(ctx context.Context, p *domain.SupplierPayment) error {
	p.CreatedAt = time.Now().UTC()
	err := r.q.QueryRowxContext(ctx, r.q.Rebind(`INSERT INTO supplier_payments
		(supplier_id, po_id, payment_date, amount, payment_mode, reference_number, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		p.SupplierID, p.POID, p.PaymentDate, p.Amount, p.PaymentMode, p.ReferenceNumber, p.Notes, p.CreatedAt,
	).Scan(&p.ID)
	return wrap(err, "create supplier payment")
}

func (r LedgerRepo) ListPayments(ctx context.Context, supplierID *int64) ([]domain.SupplierPayment, error) {
	query := paymentSelect
	var args []any
	if supplierID != nil {
		query += ` WHERE p.supplier_id = ?`
		args = append(args, *supplierID)
	}
	query += ` ORDER BY p.payment_date DESC, p.id DESC`

	payments := []domain.SupplierPayment{}
	if err := sqlx.SelectContext(ctx, r.q, &payments, r.q.Rebind(query), args...); err != nil {
		return nil, wrap(err, "list supplier payments")
	}
	return payments, nil
}

func (r LedgerRepo) CreateReturn(ctx context.Context, ret *domain.PurchaseReturn) error {
	ret.CreatedAt = time.Now().UTC()
	if ret.Status == "" {
		ret.Status = domain.StatusPending
	}
	err := r.q.QueryRowxContext(ctx, r.q.Rebind(`INSERT INTO purchase_returns
		(supplier_id, medicine_id, return_date, quantity, reason, status, credit_amount, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		ret.SupplierID, ret.MedicineID, ret.ReturnDate, ret.Quantity, ret.Reason, ret.Status,
		ret.CreditAmount, ret.Notes, ret.CreatedAt,
	).Scan(&ret.ID)
	return wrap(err, "create purchase return")
}

func (r LedgerRepo) ListReturns(ctx context.Context, supplierID *int64) ([]domain.PurchaseReturn, error) {
	query := returnSelect
	var args []any
	if supplierID != nil {
		query += ` WHERE r.supplier_id = ?`
		args = append(args, *supplierID)
	}
	query += ` ORDER BY r.return_date DESC, r.id DESC`

	returns := []domain.PurchaseReturn{}
	if err := sqlx.SelectContext(ctx, r.q, &returns, r.q.Rebind(query), args...); err != nil {
		return nil, wrap(err, "list purchase returns")
	}
	return returns, nil
}

type amountRow struct {
	SupplierID   int64           `db:"supplier_id"`
	SupplierName string          `db:"supplier_name"`
	Amount       decimal.Decimal `db:"amount"`
}

// Outstanding reports, per supplier, the ordered total minus payments made.
// Only suppliers still owed money are listed, largest balance first.
func (r LedgerRepo) Outstanding(ctx context.Context) ([]domain.Outstanding, error) {
	var ordered, paid []amountRow
	err := sqlx.SelectContext(ctx, r.q, &ordered, `SELECT po.supplier_id, s.name AS supplier_name, po.total_amount AS amount
		FROM purchase_orders po JOIN suppliers s ON s.id = po.supplier_id`)
	if err != nil {
		return nil, wrap(err, "sum purchase orders")
	}
	err = sqlx.SelectContext(ctx, r.q, &paid, `SELECT p.supplier_id, s.name AS supplier_name, p.amount
		FROM supplier_payments p JOIN suppliers s ON s.id = p.supplier_id`)
	if err != nil {
		return nil, wrap(err, "sum supplier payments")
	}

	bySupplier := map[int64]*domain.Outstanding{}
	for _, row := range ordered {
		o, ok := bySupplier[row.SupplierID]
		if !ok {
			o = &domain.Outstanding{SupplierID: row.SupplierID, SupplierName: row.SupplierName}
			bySupplier[row.SupplierID] = o
		}
		o.Ordered = o.Ordered.Add(row.Amount)
	}
	for _, row := range paid {
		if o, ok := bySupplier[row.SupplierID]; ok {
			o.Paid = o.Paid.Add(row.Amount)
		}
	}

	out := make([]domain.Outstanding, 0, len(bySupplier))
	for _, o := range bySupplier {
		o.Balance = o.Ordered.Sub(o.Paid)
		if o.Balance.IsPositive() {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Balance.Cmp(out[j].Balance); c != 0 {
			return c > 0
		}
		return out[i].SupplierID < out[j].SupplierID
	})
	return out, nil
}
