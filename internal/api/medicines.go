package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"pharmacy/m/domain"
	"pharmacy/m/internal/inventory"
	"pharmacy/m/internal/store"
)

const searchLimit = 10

type medicineRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Category    string          `json:"category" validate:"required"`
	BatchNumber string          `json:"batch_number" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Quantity    *int64          `json:"quantity" validate:"omitempty,gte=0"`
	ExpiryDate  domain.Date     `json:"expiry_date"`
	SupplierID  *int64          `json:"supplier_id" validate:"omitempty,gt=0"`
}

func (req medicineRequest) check() error {
	if err := domain.CheckMoney("price", req.Price); err != nil {
		return err
	}
	if req.ExpiryDate.IsZero() {
		return fmt.Errorf("%w: expiry_date is required", domain.ErrValidation)
	}
	return nil
}

func (req medicineRequest) medicine() *domain.Medicine {
	m := &domain.Medicine{
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		BatchNumber: strings.TrimSpace(req.BatchNumber),
		Price:       req.Price,
		ExpiryDate:  req.ExpiryDate,
		SupplierID:  req.SupplierID,
	}
	if req.Quantity != nil {
		m.Quantity = *req.Quantity
	}
	return m
}

func checkSupplier(ctx context.Context, tx *store.Tx, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := tx.Suppliers.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: supplier %d does not exist", domain.ErrValidation, *id)
	}
	return nil
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	meds, err := h.store.Medicines.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, meds)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	med, err := h.store.Medicines.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, med)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.check(); err != nil {
		h.writeError(w, r, err)
		return
	}

	med := req.medicine()
	err := h.store.WithTx(r.Context(), func(tx *store.Tx) error {
		if err := checkSupplier(r.Context(), tx, med.SupplierID); err != nil {
			return err
		}
		return tx.Medicines.Create(r.Context(), med)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": med.ID, "medicine": med})
}

// updateMedicine rewrites the record. A quantity in the body goes through the
// stock choke point like any manual edit.
func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req medicineRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.check(); err != nil {
		h.writeError(w, r, err)
		return
	}

	med := req.medicine()
	med.ID = id
	var level *domain.StockLevel
	err = h.store.WithTx(r.Context(), func(tx *store.Tx) error {
		if err := checkSupplier(r.Context(), tx, med.SupplierID); err != nil {
			return err
		}
		if err := tx.Medicines.Update(r.Context(), med); err != nil {
			return err
		}
		if req.Quantity != nil {
			var err error
			level, err = h.stock.Set(r.Context(), tx, id, *req.Quantity)
			return err
		}
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if level != nil {
		h.stock.NotifyLow(r.Context(), *level)
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "medicine updated"})
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.Medicines.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "medicine deleted"})
}

type stockRequest struct {
	Quantity *int64 `json:"quantity" validate:"required"`
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req stockRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var level *domain.StockLevel
	err = h.store.WithTx(r.Context(), func(tx *store.Tx) error {
		var err error
		level, err = h.stock.Set(r.Context(), tx, id, *req.Quantity)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.stock.NotifyLow(r.Context(), *level)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"medicine_id": level.MedicineID,
		"quantity":    level.Quantity,
		"status":      inventory.ClassifyStock(level.Quantity),
	})
}

func (h *Handler) searchMedicines(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		respondJSON(w, http.StatusOK, []domain.Medicine{})
		return
	}
	meds, err := h.store.Medicines.Search(r.Context(), term, domain.NewDate(h.now()), searchLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, meds)
}

type stockEntry struct {
	domain.Medicine
	Status       inventory.StockStatus  `json:"status"`
	ExpiryStatus inventory.ExpiryStatus `json:"expiry_status"`
}

func (h *Handler) stockView(w http.ResponseWriter, r *http.Request) {
	meds, err := h.store.Medicines.ListByQuantity(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	today := domain.NewDate(h.now())
	entries := make([]stockEntry, len(meds))
	for i, m := range meds {
		entries[i] = stockEntry{
			Medicine:     m,
			Status:       inventory.ClassifyStock(m.Quantity),
			ExpiryStatus: inventory.ClassifyExpiry(m.ExpiryDate, today),
		}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) expiringMedicines(w http.ResponseWriter, r *http.Request) {
	days := inventory.NearExpiryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = n
	}
	report, err := h.alerts.ExpiryReport(r.Context(), days, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
