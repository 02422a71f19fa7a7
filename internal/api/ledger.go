package api

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"pharmacy/m/domain"
)

type purchaseOrderItemRequest struct {
	MedicineID   *int64          `json:"medicine_id" validate:"omitempty,gt=0"`
	MedicineName string          `json:"medicine_name"`
	BatchNumber  string          `json:"batch_number"`
	Quantity     int64           `json:"quantity" validate:"required,gt=0"`
	Price        decimal.Decimal `json:"price"`
}

type purchaseOrderRequest struct {
	SupplierID       int64                      `json:"supplier_id" validate:"required,gt=0"`
	PONumber         string                     `json:"po_number"`
	PODate           domain.Date                `json:"po_date"`
	ExpectedDelivery *domain.Date               `json:"expected_delivery"`
	Notes            string                     `json:"notes"`
	Items            []purchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req purchaseOrderRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	po := &domain.PurchaseOrder{
		SupplierID:       req.SupplierID,
		PONumber:         req.PONumber,
		PODate:           req.PODate,
		ExpectedDelivery: req.ExpectedDelivery,
		Notes:            strings.TrimSpace(req.Notes),
	}
	for _, it := range req.Items {
		po.Items = append(po.Items, domain.PurchaseOrderItem{
			MedicineID:   it.MedicineID,
			MedicineName: strings.TrimSpace(it.MedicineName),
			BatchNumber:  strings.TrimSpace(it.BatchNumber),
			Quantity:     it.Quantity,
			Price:        it.Price,
		})
	}
	if err := h.purchasing.CreateOrder(r.Context(), po); err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "purchase_order": po})
}

func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	supplierID, err := queryID(r, "supplier_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	orders, err := h.store.Ledger.ListPurchaseOrders(r.Context(), supplierID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	po, err := h.store.Ledger.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, po)
}

func (h *Handler) receivePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	po, err := h.purchasing.Receive(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "purchase_order": po})
}

type paymentRequest struct {
	SupplierID      int64           `json:"supplier_id" validate:"required,gt=0"`
	POID            *int64          `json:"po_id" validate:"omitempty,gt=0"`
	PaymentDate     domain.Date     `json:"payment_date"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMode     string          `json:"payment_mode" validate:"required"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p := &domain.SupplierPayment{
		SupplierID:      req.SupplierID,
		POID:            req.POID,
		PaymentDate:     req.PaymentDate,
		Amount:          req.Amount,
		PaymentMode:     strings.TrimSpace(req.PaymentMode),
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		Notes:           strings.TrimSpace(req.Notes),
	}
	if err := h.purchasing.RecordPayment(r.Context(), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": p.ID, "payment": p})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	supplierID, err := queryID(r, "supplier_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	payments, err := h.store.Ledger.ListPayments(r.Context(), supplierID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

func (h *Handler) outstanding(w http.ResponseWriter, r *http.Request) {
	balances, err := h.store.Ledger.Outstanding(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, balances)
}

type returnRequest struct {
	SupplierID   int64           `json:"supplier_id" validate:"required,gt=0"`
	MedicineID   int64           `json:"medicine_id" validate:"required,gt=0"`
	ReturnDate   domain.Date     `json:"return_date"`
	Quantity     int64           `json:"quantity" validate:"required,gt=0"`
	Reason       string          `json:"reason" validate:"required"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Notes        string          `json:"notes"`
}

func (h *Handler) createReturn(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	ret := &domain.PurchaseReturn{
		SupplierID:   req.SupplierID,
		MedicineID:   req.MedicineID,
		ReturnDate:   req.ReturnDate,
		Quantity:     req.Quantity,
		Reason:       strings.TrimSpace(req.Reason),
		CreditAmount: req.CreditAmount,
		Notes:        strings.TrimSpace(req.Notes),
	}
	if err := h.purchasing.RecordReturn(r.Context(), ret); err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": ret.ID, "return": ret})
}

func (h *Handler) listReturns(w http.ResponseWriter, r *http.Request) {
	supplierID, err := queryID(r, "supplier_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	returns, err := h.store.Ledger.ListReturns(r.Context(), supplierID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, returns)
}
