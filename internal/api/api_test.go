package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pharmacy/m/domain"
	"pharmacy/m/internal/alerts"
	"pharmacy/m/internal/billing"
	"pharmacy/m/internal/database/dbtest"
	"pharmacy/m/internal/inventory"
	"pharmacy/m/internal/metrics"
	"pharmacy/m/internal/purchasing"
	"pharmacy/m/internal/seed"
	"pharmacy/m/internal/store"
)

type fakeNotifier struct {
	mu       sync.Mutex
	lowStock [][]domain.StockLevel
	expiry   int
}

func (f *fakeNotifier) LowStock(_ context.Context, levels []domain.StockLevel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lowStock = append(f.lowStock, levels)
}

func (f *fakeNotifier) Expiry(context.Context, []domain.ExpiringMedicine, []domain.ExpiringMedicine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiry++
}

type fakeTester struct{ err error }

func (f fakeTester) SendTest(context.Context) error { return f.err }

type testServer struct {
	t        *testing.T
	h        *Handler
	store    *store.Store
	notifier *fakeNotifier
	router   http.Handler
	admin    string
	staff    string
}

func newTestServer(t *testing.T, tester alerts.Tester) *testServer {
	t.Helper()
	log := zap.NewNop()
	s := store.New(dbtest.Open(t))
	n := &fakeNotifier{}
	m := metrics.New()
	stock := inventory.NewStock(n, m, log)

	h := New(Deps{
		Store:          s,
		Engine:         billing.NewEngine(s, stock, m, log),
		Stock:          stock,
		Purchasing:     purchasing.NewService(s, stock, log),
		Alerts:         alerts.NewService(s, n, tester, log),
		Metrics:        m,
		Log:            log,
		Secret:         "test-secret",
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"*"},
	})

	admin, err := h.generateToken(&domain.User{ID: 1, Username: "admin", Role: domain.RoleAdmin})
	require.NoError(t, err)
	staff, err := h.generateToken(&domain.User{ID: 2, Username: "clerk", Role: domain.RoleStaff})
	require.NoError(t, err)

	return &testServer{t: t, h: h, store: s, notifier: n, router: h.Router(), admin: admin, staff: staff}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (ts *testServer) medicine(name, price string, qty int64, expiry domain.Date) int64 {
	ts.t.Helper()
	m := &domain.Medicine{
		Name: name, Category: "Tablet", BatchNumber: "B-" + name,
		Price: decimal.RequireFromString(price), Quantity: qty, ExpiryDate: expiry,
	}
	require.NoError(ts.t, ts.store.Medicines.Create(context.Background(), m))
	return m.ID
}

func (ts *testServer) quantity(id int64) int64 {
	ts.t.Helper()
	lvl, err := ts.store.Medicines.StockLevel(context.Background(), id)
	require.NoError(ts.t, err)
	return lvl.Quantity
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	ts := newTestServer(t, fakeTester{})

	rec := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = ts.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, fakeTester{})

	rec := ts.do(http.MethodGet, "/medicines", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = ts.do(http.MethodGet, "/medicines", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRegisterAndReset(t *testing.T) {
	ts := newTestServer(t, fakeTester{})
	ctx := context.Background()
	_, err := seed.EnsureAdmin(ctx, ts.store, "owner", "owner-pass", zap.NewNop())
	require.NoError(t, err)

	rec := ts.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "owner", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "owner", "password": "owner-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.NotContains(t, rec.Body.String(), "owner-pass")

	newUser := map[string]string{"username": "clerk2", "password": "secret1", "role": "staff"}
	rec = ts.do(http.MethodPost, "/auth/register", ts.staff, newUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/auth/register", token, map[string]string{"username": "clerk2", "password": "secret1", "role": "boss"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "role must be one of")

	rec = ts.do(http.MethodPost, "/auth/register", token, newUser)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.do(http.MethodPost, "/auth/register", token, newUser)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/auth/reset-password", token, map[string]string{"current_password": "nope", "new_password": "brand-new"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.do(http.MethodPost, "/auth/reset-password", token, map[string]string{"current_password": "owner-pass", "new_password": "brand-new"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "owner", "password": "brand-new"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateSale(t *testing.T) {
	ts := newTestServer(t, fakeTester{})
	id := ts.medicine("Paracetamol", "2.50", 10, domain.Today().AddDays(90))

	rec := ts.do(http.MethodPost, "/sales", ts.staff, map[string]any{
		"customer_name":  "Asha",
		"payment_method": "Cash",
		"items":          []map[string]any{{"medicine_id": id, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "10", body["total_amount"])
	assert.NotZero(t, body["sale_id"])
	assert.Len(t, body["items"], 1)
	assert.Equal(t, int64(6), ts.quantity(id))

	saleID := int64(body["sale_id"].(float64))
	rec = ts.do(http.MethodGet, "/sales/"+itoa(saleID), ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"medicine_name":"Paracetamol"`)
	assert.Contains(t, rec.Body.String(), `"customer_name":"Asha"`)
}

func TestCreateSaleFailures(t *testing.T) {
	ts := newTestServer(t, fakeTester{})
	a := ts.medicine("A", "1.00", 5, domain.Today().AddDays(90))
	b := ts.medicine("B", "1.00", 2, domain.Today().AddDays(90))

	rec := ts.do(http.MethodPost, "/sales", ts.staff, map[string]any{
		"payment_method": "Cash",
		"items": []map[string]any{
			{"medicine_id": a, "quantity": 3},
			{"medicine_id": b, "quantity": 5},
		},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(1), body["line"])
	assert.Equal(t, float64(b), body["medicine_id"])
	assert.Equal(t, "insufficient_stock", body["reason"])
	assert.Equal(t, int64(5), ts.quantity(a))
	assert.Equal(t, int64(2), ts.quantity(b))

	rec = ts.do(http.MethodPost, "/sales", ts.staff, map[string]any{
		"payment_method": "Cash",
		"items":          []map[string]any{{"medicine_id": 999, "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec)["reason"])

	rec = ts.do(http.MethodPost, "/sales", ts.staff, map[string]any{"payment_method": "Cash", "items": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/sales", ts.staff, `{"payment_method": "Cash", "items": [{"medicine_id": 1, "quantity": 1}], "discount": 5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/sales", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestListSalesDateFilter(t *testing.T) {
	ts := newTestServer(t, fakeTester{})
	id := ts.medicine("A", "1.00", 5, domain.Today().AddDays(90))
	rec := ts.do(http.MethodPost, "/sales", ts.staff, map[string]any{
		"payment_method": "Card",
		"items":          []map[string]any{{"medicine_id": id, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	today := domain.Today()
	rec = ts.do(http.MethodGet, "/sales?start_date="+today.String()+"&end_date="+today.String(), ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sales []domain.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sales))
	assert.Len(t, sales, 1)

	rec = ts.do(http.MethodGet, "/sales?end_date="+today.AddDays(-1).String(), ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sales))
	assert.Empty(t, sales)

	rec = ts.do(http.MethodGet, "/sales?start_date=yesterday", ts.staff, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalesWindowsFollowServerZone(t *testing.T) {
	ts := newTestServer(t, fakeTester{})
	ist := time.FixedZone("IST", 5*3600+1800)
	ts.h.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, ist) }

	// 02:00 on 2 March in IST is still 1 March in UTC.
	sale := &domain.Sale{
		PaymentMethod: "Cash",
		TotalAmount:   decimal.RequireFromString("9.99"),
		CreatedAt:     time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC),
	}
	require.NoError(t, ts.store.Sales.Create(context.Background(), sale))

	rec := ts.do(http.MethodGet, "/dashboard", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "9.99", decode(t, rec)["today_sales"])

	var sales []domain.Sale
	rec = ts.do(http.MethodGet, "/sales?start_date=2026-03-02&end_date=2026-03-02", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ID)

	rec = ts.do(http.MethodGet, "/sales?start_date=2026-03-01&end_date=2026-03-01", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sales))
	assert.Empty(t, sales)
}

func TestRejectsMalformedDatesAndFractionalCents(t *testing.T) {
	ts := newTestServer(t, fakeTester{})

	rec := ts.do(http.MethodPost, "/medicines", ts.staff, map[string]any{
		"name": "Loratadine", "category": "Tablet", "batch_number": "LR-1",
		"price": "1.00", "quantity": 5, "expiry_date": "2026-03-01garbage",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, "/sales?start_date=2026-03-01garbage", ts.staff, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/medicines", ts.staff, map[string]any{
		"name": "Loratadine", "category": "Tablet", "batch_number": "LR-1",
		"price": "0.125", "quantity": 5, "expiry_date": "2030-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "decimal places")

	rec = ts.do(http.MethodGet, "/medicines", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestResetPasswordForUnknownAccount(t *testing.T) {
	ts := newTestServer(t, fakeTester{})
	ghost, err := ts.h.generateToken(&domain.User{ID: 999, Username: "ghost", Role: domain.RoleStaff})
	require.NoError(t, err)

	rec := ts.do(http.MethodPost, "/auth/reset-password", ghost, map[string]string{"current_password": "x", "new_password": "brand-new"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMedicineLifecycle(t *testing.T) {
	ts := newTestServer(t, fakeTester{})

	rec := ts.do(http.MethodPost, "/medicines", ts.staff, map[string]any{
		"name": "Ibuprofen", "category": "Tablet", "batch_number": "IB-1",
		"price": "3.20", "quantity": 20, "expiry_date": domain.Today().AddDays(200).String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := int64(decode(t, rec)["id"].(float64))

	rec = ts.do(http.MethodPost, "/medicines", ts.staff, map[string]any{
		"name": "Broken", "category": "Tablet", "batch_number": "X", "price": "-1", "expiry_date": "2030-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/medicines", ts.staff, map[string]any{
		"name": "Orphan", "category": "Tablet", "batch_number": "X", "price": "1", "expiry_date": "2030-01-01", "supplier_id": 77,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPut, "/medicines/"+itoa(id), ts.staff, map[string]any{
		"name": "Ibuprofen 400", "category": "Tablet", "batch_number": "IB-1",
		"price": "3.50", "quantity": 3, "expiry_date": domain.Today().AddDays(200).String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(3), ts.quantity(id))
	require.Len(t, ts.notifier.lowStock, 1)

	rec = ts.do(http.MethodPut, "/medicines/"+itoa(id)+"/stock", ts.staff, map[string]any{"quantity": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(3), ts.quantity(id))

	rec = ts.do(http.MethodPut, "/medicines/"+itoa(id)+"/stock", ts.staff, map[string]any{"quantity": 40})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "In Stock", decode(t, rec)["status"])
	assert.Len(t, ts.notifier.lowStock, 1)

	rec = ts.do(http.MethodPut, "/medicines/999/stock", ts.staff, map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, "/medicines/search?q=ibu", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ibuprofen 400")

	rec = ts.do(http.MethodGet, "/medicines/stock", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"In Stock"`)

	rec = ts.do(http.MethodDelete, "/medicines/"+itoa(id), ts.staff, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/sales", ts.staff, map[string]any{
		"payment_method": "Cash",
		"items":          []map[string]any{{"medicine_id": id, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodDelete, "/medicines/"+itoa(id), ts.admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodGet, "/medicines/abc", ts.staff, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpiryEndpointAndDashboard(t *testing.T) {
	ts := newTestServer(t, fakeTester{})
	today := domain.Today()
	ts.medicine("Expired", "1.00", 2, today.AddDays(-3))
	ts.medicine("Expired Empty", "1.00", 0, today.AddDays(-8))
	ts.medicine("Soon", "1.00", 20, today.AddDays(10))
	ts.medicine("Fine", "1.00", 50, today.AddDays(100))

	rec := ts.do(http.MethodGet, "/medicines/expiry?days=30", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report alerts.ExpiryReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Expired, 2)
	assert.Equal(t, "Expired Empty", report.Expired[0].Name)
	require.Len(t, report.NearExpiry, 1)
	assert.Equal(t, "Soon", report.NearExpiry[0].Name)

	rec = ts.do(http.MethodGet, "/medicines/expiry?days=-4", ts.staff, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/dashboard", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(4), body["total_medicines"])
	assert.Equal(t, float64(2), body["low_stock_count"])
	assert.Equal(t, float64(2), body["expired_count"])
	assert.Equal(t, float64(1), body["near_expiry_count"])
	assert.Equal(t, "0", body["today_sales"])
}

func TestSuppliersAndLedger(t *testing.T) {
	ts := newTestServer(t, fakeTester{})
	med := ts.medicine("Vitamin D", "4.00", 0, domain.Today().AddDays(365))

	rec := ts.do(http.MethodPost, "/suppliers", ts.staff, map[string]any{"name": "Acme", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/suppliers", ts.staff, map[string]any{"name": "Acme", "email": "Sales@Acme.test", "rating": 5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	supID := int64(decode(t, rec)["id"].(float64))

	rec = ts.do(http.MethodPost, "/purchase-orders", ts.staff, map[string]any{
		"supplier_id": supID,
		"items": []map[string]any{
			{"medicine_id": med, "quantity": 4, "price": "2.00"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	po := decode(t, rec)["purchase_order"].(map[string]any)
	poID := int64(po["id"].(float64))
	assert.Equal(t, "Pending", po["status"])
	assert.Equal(t, "8", po["total_amount"])

	rec = ts.do(http.MethodPost, "/purchase-orders/"+itoa(poID)+"/receive", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(4), ts.quantity(med))
	assert.Len(t, ts.notifier.lowStock, 1)

	rec = ts.do(http.MethodPost, "/purchase-orders/"+itoa(poID)+"/receive", ts.staff, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int64(4), ts.quantity(med))

	rec = ts.do(http.MethodPost, "/payments", ts.staff, map[string]any{
		"supplier_id": supID, "po_id": poID, "amount": "3.00", "payment_mode": "Cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, "/payments/outstanding", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balances []domain.Outstanding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balances))
	require.Len(t, balances, 1)
	assert.Equal(t, "5.00", balances[0].Balance.StringFixed(2))

	rec = ts.do(http.MethodPost, "/returns", ts.staff, map[string]any{
		"supplier_id": supID, "medicine_id": med, "quantity": 1, "reason": "Damaged",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, int64(4), ts.quantity(med))

	rec = ts.do(http.MethodGet, "/suppliers/"+itoa(supID), ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode(t, rec)
	assert.Equal(t, "5", profile["outstanding_balance"])
	assert.Len(t, profile["returns"], 1)
	assert.Contains(t, rec.Body.String(), "sales@acme.test")

	rec = ts.do(http.MethodGet, "/purchase-orders?supplier_id="+itoa(supID), ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Received"`)

	rec = ts.do(http.MethodDelete, "/suppliers/"+itoa(supID), ts.admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAlertEndpoints(t *testing.T) {
	ts := newTestServer(t, fakeTester{err: errors.New("dial tcp: connection refused")})
	ts.medicine("Low", "1.00", 2, domain.Today().AddDays(5))

	rec := ts.do(http.MethodPost, "/alerts/low-stock", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["low_stock"])

	rec = ts.do(http.MethodPost, "/alerts/expiry", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["near_expiry"])
	assert.Equal(t, 1, ts.notifier.expiry)

	rec = ts.do(http.MethodPost, "/alerts/test-email", ts.staff, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, strings.Contains(decode(t, rec)["message"].(string), "connection refused"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
