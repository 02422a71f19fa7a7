package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pharmacy/m/domain"
	"pharmacy/m/internal/database/dbtest"
	"pharmacy/m/internal/store"
)

const catalog = `name,category,batch_number,price,quantity,expiry_date
Paracetamol 500mg,Tablet,PB-001,2.50,100,2027-06-30
 Amoxicillin ,Capsule,AM-7,5.75,40,2026-12-01
,Tablet,X,1.00,1,2027-01-01
Broken Price,Tablet,BP,abc,1,2027-01-01
Negative,Tablet,NG,1.00,-3,2027-01-01
Bad Date,Syrup,BD,1.00,3,01/02/2027
`

func TestLoadMedicines(t *testing.T) {
	ctx := context.Background()
	s := store.New(dbtest.Open(t))

	n, err := LoadMedicines(ctx, s, strings.NewReader(catalog), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	meds, err := s.Medicines.List(ctx)
	require.NoError(t, err)
	require.Len(t, meds, 2)
	assert.Equal(t, "Amoxicillin", meds[0].Name)
	assert.Equal(t, "2026-12-01", meds[0].ExpiryDate.String())
	assert.Equal(t, int64(100), meds[1].Quantity)
	assert.Equal(t, "2.50", meds[1].Price.StringFixed(2))
}

func TestLoadMedicinesRejectsUnknownHeader(t *testing.T) {
	s := store.New(dbtest.Open(t))
	_, err := LoadMedicines(context.Background(), s, strings.NewReader("brand,type\nA,B\n"), zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoadMedicinesFileSkipsPopulatedCatalog(t *testing.T) {
	ctx := context.Background()
	s := store.New(dbtest.Open(t))
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o600))

	n, err := LoadMedicinesFile(ctx, s, path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = LoadMedicinesFile(ctx, s, path, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = LoadMedicinesFile(ctx, s, "", zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	s := store.New(dbtest.Open(t))

	created, err := EnsureAdmin(ctx, s, "admin", "secret", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, created)

	u, err := s.Users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))

	created, err = EnsureAdmin(ctx, s, "admin", "other", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, created)
}
