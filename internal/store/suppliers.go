package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
)

const supplierSelect = `SELECT id, name, contact_number, email, address, tax_id, contact_person,
	payment_terms, preferred_payment_mode, rating, created_at FROM suppliers`

type SupplierRepo struct {
	q sqlx.ExtContext
}

func (r SupplierRepo) Create(ctx context.Context, s *domain.Supplier) error {
	s.CreatedAt = time.Now().UTC()
	err := r.q.QueryRowxContext(ctx, r.q.Rebind(`INSERT INTO suppliers
		(name, contact_number, email, address, tax_id, contact_person, payment_terms, preferred_payment_mode, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		s.Name, s.ContactNumber, s.Email, s.Address, s.TaxID, s.ContactPerson,
		s.PaymentTerms, s.PreferredPaymentMode, s.Rating, s.CreatedAt,
	).Scan(&s.ID)
	return wrap(err, "create supplier")
}

func (r SupplierRepo) Get(ctx context.Context, id int64) (*domain.Supplier, error) {
	var s domain.Supplier
	if err := sqlx.GetContext(ctx, r.q, &s, r.q.Rebind(supplierSelect+` WHERE id = ?`), id); err != nil {
		return nil, wrap(err, "get supplier")
	}
	return &s, nil
}

func (r SupplierRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := sqlx.GetContext(ctx, r.q, &ok, r.q.Rebind(`SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = ?)`), id)
	return ok, wrap(err, "check supplier")
}

func (r SupplierRepo) List(ctx context.Context) ([]domain.Supplier, error) {
	suppliers := []domain.Supplier{}
	if err := sqlx.SelectContext(ctx, r.q, &suppliers, supplierSelect+` ORDER BY name, id`); err != nil {
		return nil, wrap(err, "list suppliers")
	}
	return suppliers, nil
}

func (r SupplierRepo) Update(ctx context.Context, s *domain.Supplier) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE suppliers
		SET name = ?, contact_number = ?, email = ?, address = ?, tax_id = ?, contact_person = ?,
		payment_terms = ?, preferred_payment_mode = ?, rating = ?
		WHERE id = ?`),
		s.Name, s.ContactNumber, s.Email, s.Address, s.TaxID, s.ContactPerson,
		s.PaymentTerms, s.PreferredPaymentMode, s.Rating, s.ID)
	if err != nil {
		return wrap(err, "update supplier")
	}
	return mustAffect(res, "update supplier")
}

// Delete refuses to remove a supplier that medicines or ledger rows point at.
func (r SupplierRepo) Delete(ctx context.Context, id int64) error {
	var referenced bool
	err := sqlx.GetContext(ctx, r.q, &referenced, r.q.Rebind(`SELECT
		EXISTS(SELECT 1 FROM medicines WHERE supplier_id = ?)
		OR EXISTS(SELECT 1 FROM purchase_orders WHERE supplier_id = ?)
		OR EXISTS(SELECT 1 FROM supplier_payments WHERE supplier_id = ?)
		OR EXISTS(SELECT 1 FROM purchase_returns WHERE supplier_id = ?)`), id, id, id, id)
	if err != nil {
		return wrap(err, "check supplier references")
	}
	if referenced {
		return wrap(errReferenced("supplier"), "delete supplier")
	}
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM suppliers WHERE id = ?`), id)
	if err != nil {
		return wrap(err, "delete supplier")
	}
	return mustAffect(res, "delete supplier")
}
