package api

import (
	"net/http"
	"strings"

	"pharmacy/m/domain"
)

type supplierRequest struct {
	Name                 string `json:"name" validate:"required,max=200"`
	ContactNumber        string `json:"contact_number"`
	Email                string `json:"email" validate:"omitempty,email"`
	Address              string `json:"address"`
	TaxID                string `json:"tax_id"`
	ContactPerson        string `json:"contact_person"`
	PaymentTerms         string `json:"payment_terms"`
	PreferredPaymentMode string `json:"preferred_payment_mode"`
	Rating               int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

func (req supplierRequest) supplier() *domain.Supplier {
	s := &domain.Supplier{
		Name:                 strings.TrimSpace(req.Name),
		ContactNumber:        strings.TrimSpace(req.ContactNumber),
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		Address:              strings.TrimSpace(req.Address),
		TaxID:                strings.TrimSpace(req.TaxID),
		ContactPerson:        strings.TrimSpace(req.ContactPerson),
		PaymentTerms:         strings.TrimSpace(req.PaymentTerms),
		PreferredPaymentMode: strings.TrimSpace(req.PreferredPaymentMode),
		Rating:               req.Rating,
	}
	if s.PaymentTerms == "" {
		s.PaymentTerms = "30 Days"
	}
	if s.PreferredPaymentMode == "" {
		s.PreferredPaymentMode = "Bank Transfer"
	}
	if s.Rating == 0 {
		s.Rating = 3
	}
	return s
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.store.Suppliers.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s := req.supplier()
	if err := h.store.Suppliers.Create(r.Context(), s); err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": s.ID, "supplier": s})
}

// supplierProfile returns the supplier with its purchase history and balance.
func (h *Handler) supplierProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	profile, err := h.purchasing.Profile(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req supplierRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s := req.supplier()
	s.ID = id
	if err := h.store.Suppliers.Update(r.Context(), s); err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "supplier updated"})
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.Suppliers.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "supplier deleted"})
}
