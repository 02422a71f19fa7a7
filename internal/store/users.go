package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
)

type UserRepo struct {
	q sqlx.ExtContext
}

func (r UserRepo) Create(ctx context.Context, u *domain.User) error {
	u.CreatedAt = time.Now().UTC()
	err := r.q.QueryRowxContext(ctx, r.q.Rebind(`INSERT INTO users (username, password, role, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`), u.Username, u.Password, u.Role, u.CreatedAt).Scan(&u.ID)
	return wrap(err, "create user")
}

func (r UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, r.q.Rebind(`SELECT id, username, password, role, created_at
		FROM users WHERE username = ?`), username)
	if err != nil {
		return nil, wrap(err, "get user")
	}
	return &u, nil
}

func (r UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, r.q.Rebind(`SELECT id, username, password, role, created_at
		FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, wrap(err, "get user")
	}
	return &u, nil
}

func (r UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE users SET password = ? WHERE id = ?`), hash, id)
	if err != nil {
		return wrap(err, "update password")
	}
	return mustAffect(res, "update password")
}
