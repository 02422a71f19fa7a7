package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy/m/domain"
	"pharmacy/m/internal/database/dbtest"
	"pharmacy/m/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(dbtest.Open(t))
}

func addSupplier(t *testing.T, s *store.Store, name string) *domain.Supplier {
	t.Helper()
	sup := &domain.Supplier{Name: name, PaymentTerms: "30 Days", PreferredPaymentMode: "Cash", Rating: 4}
	require.NoError(t, s.Suppliers.Create(context.Background(), sup))
	return sup
}

func addMedicine(t *testing.T, s *store.Store, name string, qty int64, price string, expiry domain.Date) *domain.Medicine {
	t.Helper()
	m := &domain.Medicine{
		Name:        name,
		Category:    "Tablet",
		BatchNumber: "B-" + name,
		Price:       decimal.RequireFromString(price),
		Quantity:    qty,
		ExpiryDate:  expiry,
	}
	require.NoError(t, s.Medicines.Create(context.Background(), m))
	return m
}

func TestMedicineCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sup := addSupplier(t, s, "Acme Pharma")
	expiry := domain.NewDate(time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC))

	m := addMedicine(t, s, "Paracetamol", 20, "2.50", expiry)
	assert.NotZero(t, m.ID)

	got, err := s.Medicines.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", got.Name)
	assert.True(t, decimal.RequireFromString("2.50").Equal(got.Price))
	assert.Equal(t, "2030-05-01", got.ExpiryDate.String())
	assert.Nil(t, got.SupplierName)

	got.SupplierID = &sup.ID
	got.Price = decimal.RequireFromString("3.00")
	got.Quantity = 999
	require.NoError(t, s.Medicines.Update(ctx, got))

	got, err = s.Medicines.Get(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SupplierName)
	assert.Equal(t, "Acme Pharma", *got.SupplierName)
	assert.Equal(t, int64(20), got.Quantity, "update must not touch quantity")

	_, err = s.Medicines.Get(ctx, 4242)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecrementQuantityGuard(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	m := addMedicine(t, s, "Ibuprofen", 5, "1.00", domain.Today().AddDays(100))

	ok, err := s.Medicines.DecrementQuantity(ctx, m.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Medicines.DecrementQuantity(ctx, m.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	lvl, err := s.Medicines.StockLevel(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), lvl.Quantity)

	require.NoError(t, s.Medicines.IncrementQuantity(ctx, m.ID, 8))
	require.NoError(t, s.Medicines.SetQuantity(ctx, m.ID, 4))
	lvl, err = s.Medicines.StockLevel(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), lvl.Quantity)

	err = s.Medicines.SetQuantity(ctx, m.ID, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, s.Medicines.IncrementQuantity(ctx, 999, 1), domain.ErrNotFound)
}

func TestSearchAndExpiringBy(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	today := domain.Today()

	addMedicine(t, s, "Amoxicillin", 10, "5.00", today.AddDays(200))
	addMedicine(t, s, "Amoxiclav", 0, "5.00", today.AddDays(200))
	addMedicine(t, s, "Amoxil Old", 4, "5.00", today.AddDays(-1))
	addMedicine(t, s, "Cetirizine", 3, "1.00", today.AddDays(10))

	found, err := s.Medicines.Search(ctx, "amox", today, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Amoxicillin", found[0].Name)

	expiring, err := s.Medicines.ExpiringBy(ctx, today.AddDays(30), true)
	require.NoError(t, err)
	require.Len(t, expiring, 2)
	assert.Equal(t, "Amoxil Old", expiring[0].Name)
	assert.Equal(t, "Cetirizine", expiring[1].Name)

	band, err := s.Medicines.StockBetween(ctx, 1, 4)
	require.NoError(t, err)
	require.Len(t, band, 2)
	assert.Equal(t, int64(3), band[0].Quantity)

	n, err := s.Medicines.CountBelow(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	today := domain.Today()

	addMedicine(t, s, "Amoxicillin", 10, "5.00", today.AddDays(200))
	addMedicine(t, s, "Zinc 50%", 10, "2.00", today.AddDays(200))
	addMedicine(t, s, "Vit_D", 10, "3.00", today.AddDays(200))

	found, err := s.Medicines.Search(ctx, "%", today, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Zinc 50%", found[0].Name)

	found, err = s.Medicines.Search(ctx, "_", today, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Vit_D", found[0].Name)

	found, err = s.Medicines.Search(ctx, `\`, today, 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDeleteReferencedRecordsConflicts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sup := addSupplier(t, s, "Beta Labs")
	m := addMedicine(t, s, "Zinc", 10, "1.00", domain.Today().AddDays(90))
	m.SupplierID = &sup.ID
	require.NoError(t, s.Medicines.Update(ctx, m))

	sale := &domain.Sale{PaymentMethod: "Cash"}
	require.NoError(t, s.Sales.Create(ctx, sale))
	require.NoError(t, s.Sales.AddItem(ctx, &domain.SaleItem{
		SaleID: sale.ID, MedicineID: m.ID, Quantity: 1,
		UnitPrice: decimal.NewFromInt(1), Subtotal: decimal.NewFromInt(1),
	}))

	assert.ErrorIs(t, s.Medicines.Delete(ctx, m.ID), domain.ErrConflict)
	assert.ErrorIs(t, s.Suppliers.Delete(ctx, sup.ID), domain.ErrConflict)

	unused := addMedicine(t, s, "Unused", 1, "1.00", domain.Today().AddDays(90))
	require.NoError(t, s.Medicines.Delete(ctx, unused.ID))
	assert.ErrorIs(t, s.Medicines.Delete(ctx, unused.ID), domain.ErrNotFound)
}

func TestSalesInvoiceAndTotals(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	a := addMedicine(t, s, "A", 10, "2.50", domain.Today().AddDays(90))
	b := addMedicine(t, s, "B", 10, "4.00", domain.Today().AddDays(90))

	customer := "Jane"
	sale := &domain.Sale{PaymentMethod: "Card", CustomerName: &customer}
	require.NoError(t, s.Sales.Create(ctx, sale))
	for _, it := range []domain.SaleItem{
		{SaleID: sale.ID, MedicineID: a.ID, Quantity: 2, UnitPrice: a.Price, Subtotal: a.Price.Mul(decimal.NewFromInt(2))},
		{SaleID: sale.ID, MedicineID: b.ID, Quantity: 1, UnitPrice: b.Price, Subtotal: b.Price},
	} {
		it := it
		require.NoError(t, s.Sales.AddItem(ctx, &it))
	}
	require.NoError(t, s.Sales.SetTotal(ctx, sale.ID, decimal.RequireFromString("9.00")))

	inv, err := s.Sales.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Card", inv.PaymentMethod)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "A", inv.Items[0].MedicineName)
	assert.Equal(t, "B-A", inv.Items[0].BatchNumber)
	assert.True(t, decimal.RequireFromString("9").Equal(inv.TotalAmount))

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	sales, err := s.Sales.List(ctx, &from, &to)
	require.NoError(t, err)
	assert.Len(t, sales, 1)

	total, err := s.Sales.TotalBetween(ctx, from, to)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("9").Equal(total), total.String())

	past := time.Now().Add(-2 * time.Hour)
	sales, err = s.Sales.List(ctx, &past, &from)
	require.NoError(t, err)
	assert.Empty(t, sales)

	_, err = s.Sales.Get(ctx, 777)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sup := addSupplier(t, s, "Gamma")
	m := addMedicine(t, s, "Vitamin C", 0, "1.00", domain.Today().AddDays(365))

	po := &domain.PurchaseOrder{
		SupplierID: sup.ID,
		PONumber:   "PO-1",
		PODate:     domain.Today(),
		Items: []domain.PurchaseOrderItem{
			{MedicineID: &m.ID, MedicineName: m.Name, Quantity: 10, Price: decimal.RequireFromString("0.75")},
			{MedicineName: "New Syrup", Quantity: 2, Price: decimal.RequireFromString("3.10")},
		},
	}
	require.NoError(t, s.Ledger.CreatePurchaseOrder(ctx, po))
	assert.True(t, decimal.RequireFromString("13.70").Equal(po.TotalAmount))

	dup := &domain.PurchaseOrder{SupplierID: sup.ID, PONumber: "PO-1", PODate: domain.Today()}
	assert.ErrorIs(t, s.Ledger.CreatePurchaseOrder(ctx, dup), domain.ErrConflict)

	got, err := s.Ledger.GetPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "Gamma", got.SupplierName)
	require.Len(t, got.Items, 2)
	assert.Nil(t, got.Items[1].MedicineID)

	require.NoError(t, s.Ledger.MarkReceived(ctx, po.ID, time.Now()))
	assert.ErrorIs(t, s.Ledger.MarkReceived(ctx, po.ID, time.Now()), domain.ErrConflict)
	assert.ErrorIs(t, s.Ledger.MarkReceived(ctx, 999, time.Now()), domain.ErrNotFound)

	got, err = s.Ledger.GetPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReceived, got.Status)
	assert.NotNil(t, got.ReceivedAt)

	orders, err := s.Ledger.ListPurchaseOrders(ctx, &sup.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestOutstandingBalances(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	a := addSupplier(t, s, "Alpha")
	b := addSupplier(t, s, "Bravo")

	for i, sup := range []*domain.Supplier{a, b} {
		po := &domain.PurchaseOrder{
			SupplierID: sup.ID,
			PONumber:   []string{"PO-A", "PO-B"}[i],
			PODate:     domain.Today(),
			Items:      []domain.PurchaseOrderItem{{MedicineName: "X", Quantity: 10, Price: decimal.NewFromInt(10)}},
		}
		require.NoError(t, s.Ledger.CreatePurchaseOrder(ctx, po))
	}
	require.NoError(t, s.Ledger.CreatePayment(ctx, &domain.SupplierPayment{
		SupplierID: a.ID, PaymentDate: domain.Today(), Amount: decimal.NewFromInt(40), PaymentMode: "Cash",
	}))

	out, err := s.Ledger.Outstanding(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Bravo", out[0].SupplierName)
	assert.True(t, decimal.NewFromInt(100).Equal(out[0].Balance))
	assert.True(t, decimal.NewFromInt(60).Equal(out[1].Balance))

	require.NoError(t, s.Ledger.CreatePayment(ctx, &domain.SupplierPayment{
		SupplierID: a.ID, PaymentDate: domain.Today(), Amount: decimal.NewFromInt(60), PaymentMode: "Cash",
	}))
	out, err = s.Ledger.Outstanding(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].SupplierID)

	payments, err := s.Ledger.ListPayments(ctx, &a.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Nil(t, payments[0].PONumber)
}

func TestPurchaseReturnsAndSupplierDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sup := addSupplier(t, s, "Delta")
	m := addMedicine(t, s, "Cough Syrup", 5, "2.00", domain.Today().AddDays(30))

	ret := &domain.PurchaseReturn{
		SupplierID: sup.ID, MedicineID: m.ID, ReturnDate: domain.Today(),
		Quantity: 2, Reason: "Damaged", CreditAmount: decimal.NewFromInt(4),
	}
	require.NoError(t, s.Ledger.CreateReturn(ctx, ret))

	returns, err := s.Ledger.ListReturns(ctx, nil)
	require.NoError(t, err)
	require.Len(t, returns, 1)
	assert.Equal(t, "Cough Syrup", returns[0].MedicineName)
	assert.Equal(t, domain.StatusPending, returns[0].Status)

	lvl, err := s.Medicines.StockLevel(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), lvl.Quantity)

	assert.ErrorIs(t, s.Suppliers.Delete(ctx, sup.ID), domain.ErrConflict)

	lonely := addSupplier(t, s, "Lonely")
	require.NoError(t, s.Suppliers.Delete(ctx, lonely.ID))
	_, err = s.Suppliers.Get(ctx, lonely.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	m := addMedicine(t, s, "Rollback", 5, "1.00", domain.Today().AddDays(30))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *store.Tx) error {
		ok, err := tx.Medicines.DecrementQuantity(ctx, m.ID, 5)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	lvl, err := s.Medicines.StockLevel(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), lvl.Quantity)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := &domain.User{Username: "admin", Password: "hash", Role: domain.RoleAdmin}
	require.NoError(t, s.Users.Create(ctx, u))
	assert.ErrorIs(t, s.Users.Create(ctx, &domain.User{Username: "admin", Password: "x", Role: domain.RoleStaff}), domain.ErrConflict)

	require.NoError(t, s.Users.UpdatePassword(ctx, u.ID, "new-hash"))
	got, err := s.Users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.Password)

	_, err = s.Users.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byID, err := s.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", byID.Username)
	_, err = s.Users.GetByID(ctx, u.ID+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
