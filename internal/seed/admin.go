package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pharmacy/m/domain"
	"pharmacy/m/internal/store"
)

// EnsureAdmin creates the admin account on first start. An existing account
// is never touched, so a changed password survives restarts.
func EnsureAdmin(ctx context.Context, s *store.Store, username, password string, log *zap.Logger) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	_, err := s.Users.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	u := &domain.User{Username: username, Password: string(hash), Role: domain.RoleAdmin}
	if err := s.Users.Create(ctx, u); err != nil {
		return false, err
	}
	log.Info("Created default admin user", zap.String("username", username))
	return true, nil
}
