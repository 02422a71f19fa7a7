package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"pharmacy/m/domain"
)

// wrap translates driver errors into the domain taxonomy.
func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503":
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, pgErr.Message)
		case "23514":
			return fmt.Errorf("%s: %w: %s", op, domain.ErrValidation, pgErr.Message)
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, liteErr.Error())
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrValidation, liteErr.Error())
		case sqlite3.SQLITE_CONSTRAINT:
			if strings.Contains(liteErr.Error(), "CHECK constraint") {
				return fmt.Errorf("%s: %w: %s", op, domain.ErrValidation, liteErr.Error())
			}
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, liteErr.Error())
		}
	}

	return domain.Storage(fmt.Errorf("%s: %w", op, err))
}

func errReferenced(what string) error {
	return fmt.Errorf("%s is still referenced by other records: %w", what, domain.ErrConflict)
}

func mustAffect(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err, op)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
