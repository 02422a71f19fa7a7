// Package store holds the sqlx repositories. Every query is written with '?'
// placeholders and rebound for the active driver.
package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
)

type repos struct {
	Medicines MedicineRepo
	Suppliers SupplierRepo
	Sales     SaleRepo
	Ledger    LedgerRepo
	Users     UserRepo
}

func newRepos(q sqlx.ExtContext) repos {
	return repos{
		Medicines: MedicineRepo{q: q},
		Suppliers: SupplierRepo{q: q},
		Sales:     SaleRepo{q: q},
		Ledger:    LedgerRepo{q: q},
		Users:     UserRepo{q: q},
	}
}

// Store exposes the repositories bound to the connection pool.
type Store struct {
	repos
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{repos: newRepos(db), db: db}
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Tx exposes the same repositories bound to one transaction.
type Tx struct {
	repos
	tx *sqlx.Tx
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and is rolled back on every other exit path, panics included.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Storage(err)
	}
	defer tx.Rollback()

	if err := fn(&Tx{repos: newRepos(tx), tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.Storage(err)
	}
	return nil
}
