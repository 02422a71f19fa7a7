package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pharmacy/m/domain"
	"pharmacy/m/internal/alerts"
	"pharmacy/m/internal/billing"
	"pharmacy/m/internal/inventory"
	"pharmacy/m/internal/logger"
	"pharmacy/m/internal/metrics"
	"pharmacy/m/internal/purchasing"
	"pharmacy/m/internal/store"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Store      *store.Store
	Engine     *billing.Engine
	Stock      *inventory.Stock
	Purchasing *purchasing.Service
	Alerts     *alerts.Service
	Metrics    *metrics.Metrics
	Log        *zap.Logger

	Secret         string
	TokenTTL       time.Duration
	AllowedOrigins []string
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store      *store.Store
	engine     *billing.Engine
	stock      *inventory.Stock
	purchasing *purchasing.Service
	alerts     *alerts.Service
	metrics    *metrics.Metrics
	log        *zap.Logger
	validate   *validator.Validate

	secret         string
	tokenTTL       time.Duration
	allowedOrigins []string
	now            func() time.Time
}

func New(d Deps) *Handler {
	ttl := d.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handler{
		store:          d.Store,
		engine:         d.Engine,
		stock:          d.Stock,
		purchasing:     d.Purchasing,
		alerts:         d.Alerts,
		metrics:        d.Metrics,
		log:            d.Log,
		validate:       newValidator(),
		secret:         d.Secret,
		tokenTTL:       ttl,
		allowedOrigins: d.AllowedOrigins,
		now:            time.Now,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(h.metrics.Middleware)

	r.Get("/health", h.health)
	r.Handle("/metrics", h.metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.With(h.requireRole(domain.RoleAdmin)).Post("/register", h.register)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.listMedicines)
			r.Post("/", h.createMedicine)
			r.Get("/search", h.searchMedicines)
			r.Get("/stock", h.stockView)
			r.Get("/expiry", h.expiringMedicines)
			r.Get("/{id}", h.getMedicine)
			r.Put("/{id}", h.updateMedicine)
			r.With(h.requireRole(domain.RoleAdmin)).Delete("/{id}", h.deleteMedicine)
			r.Put("/{id}/stock", h.updateStock)
		})

		pr.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.listSuppliers)
			r.Post("/", h.createSupplier)
			r.Get("/{id}", h.supplierProfile)
			r.Put("/{id}", h.updateSupplier)
			r.With(h.requireRole(domain.RoleAdmin)).Delete("/{id}", h.deleteSupplier)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Post("/", h.createSale)
			r.Get("/", h.listSales)
			r.Get("/{id}", h.getSale)
		})

		pr.Route("/purchase-orders", func(r chi.Router) {
			r.Post("/", h.createPurchaseOrder)
			r.Get("/", h.listPurchaseOrders)
			r.Get("/{id}", h.getPurchaseOrder)
			r.Post("/{id}/receive", h.receivePurchaseOrder)
		})

		pr.Route("/payments", func(r chi.Router) {
			r.Post("/", h.createPayment)
			r.Get("/", h.listPayments)
			r.Get("/outstanding", h.outstanding)
		})

		pr.Route("/returns", func(r chi.Router) {
			r.Post("/", h.createReturn)
			r.Get("/", h.listReturns)
		})

		pr.Get("/dashboard", h.dashboard)

		pr.Route("/alerts", func(r chi.Router) {
			r.Post("/expiry", h.triggerExpiryAlert)
			r.Post("/low-stock", h.triggerLowStockAlert)
			r.Post("/test-email", h.sendTestEmail)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DB().PingContext(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a domain error to its status code. Unexpected errors are
// logged and reported without detail.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Request failed", zap.Error(err))
		message = "internal storage failure"
	}
	respondJSON(w, status, errorResponse{Success: false, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Success: false, Message: message})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return nil
}

// bind decodes the body into dest and runs its validate tags.
func (h *Handler) bind(r *http.Request, dest interface{}) error {
	if err := decodeJSON(r, dest); err != nil {
		return err
	}
	if err := h.validate.Struct(dest); err != nil {
		return validationError(err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, chi.URLParam(r, "id"))
	}
	return id, nil
}

func queryID(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid %s", domain.ErrValidation, key)
	}
	return &id, nil
}

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
