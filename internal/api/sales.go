package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"pharmacy/m/domain"
	"pharmacy/m/internal/billing"
)

type saleRequest struct {
	CustomerName  string         `json:"customer_name"`
	PaymentMethod string         `json:"payment_method"`
	Items         []billing.Line `json:"items"`
}

type saleResponse struct {
	Success     bool              `json:"success"`
	SaleID      int64             `json:"sale_id"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []domain.SaleItem `json:"items"`
}

type saleErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Line       int    `json:"line"`
	MedicineID int64  `json:"medicine_id"`
	Reason     string `json:"reason"`
}

// createSale validates the cart and records the sale. Cart-line failures
// name the offending line and leave every medicine untouched.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	receipt, err := h.engine.Checkout(r.Context(), billing.Checkout{
		Lines:         req.Items,
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		var lineErr *domain.LineError
		if errors.As(err, &lineErr) && statusFor(err) != http.StatusInternalServerError {
			respondJSON(w, statusFor(err), saleErrorResponse{
				Success:    false,
				Message:    lineErr.Error(),
				Line:       lineErr.Line,
				MedicineID: lineErr.MedicineID,
				Reason:     lineErr.Reason(),
			})
			return
		}
		h.writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, saleResponse{
		Success:     true,
		SaleID:      receipt.SaleID,
		TotalAmount: receipt.TotalAmount,
		Items:       receipt.Items,
	})
}

// listSales accepts optional start_date and end_date (YYYY-MM-DD, inclusive).
// Both are calendar days in the server's time zone.
func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	loc := h.now().Location()
	var from, to *time.Time
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "start_date must be in YYYY-MM-DD format")
			return
		}
		start := d.StartIn(loc)
		from = &start
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "end_date must be in YYYY-MM-DD format")
			return
		}
		end := d.AddDays(1).StartIn(loc)
		to = &end
	}

	sales, err := h.store.Sales.List(r.Context(), from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	invoice, err := h.store.Sales.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}
