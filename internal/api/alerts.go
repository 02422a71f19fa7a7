package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"pharmacy/m/domain"
	"pharmacy/m/internal/logger"
)

func (h *Handler) triggerExpiryAlert(w http.ResponseWriter, r *http.Request) {
	report, err := h.alerts.CheckExpiry(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"expired":     len(report.Expired),
		"near_expiry": len(report.NearExpiry),
	})
}

func (h *Handler) triggerLowStockAlert(w http.ResponseWriter, r *http.Request) {
	levels, err := h.alerts.CheckLowStock(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "low_stock": len(levels)})
}

func (h *Handler) sendTestEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.alerts.SendTestEmail(r.Context()); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.writeError(w, r, err)
			return
		}
		logger.FromContext(r.Context()).Warn("Test email failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "unable to send test email: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "test email sent"})
}
