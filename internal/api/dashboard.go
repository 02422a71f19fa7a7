package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"pharmacy/m/domain"
	"pharmacy/m/internal/inventory"
)

type dashboardStats struct {
	TotalMedicines  int64           `json:"total_medicines"`
	LowStockCount   int64           `json:"low_stock_count"`
	TodaySales      decimal.Decimal `json:"today_sales"`
	ExpiredCount    int             `json:"expired_count"`
	NearExpiryCount int             `json:"near_expiry_count"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()
	today := domain.NewDate(now)

	var (
		stats dashboardStats
		err   error
	)
	if stats.TotalMedicines, err = h.store.Medicines.Count(ctx); err != nil {
		h.writeError(w, r, err)
		return
	}
	if stats.LowStockCount, err = h.store.Medicines.CountBelow(ctx, inventory.StockAlertLevel); err != nil {
		h.writeError(w, r, err)
		return
	}
	dayStart, dayEnd := today.StartIn(now.Location()), today.AddDays(1).StartIn(now.Location())
	if stats.TodaySales, err = h.store.Sales.TotalBetween(ctx, dayStart, dayEnd); err != nil {
		h.writeError(w, r, err)
		return
	}

	expiring, err := h.store.Medicines.ExpiringBy(ctx, today.AddDays(inventory.NearExpiryDays), false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	for _, m := range expiring {
		switch inventory.ClassifyExpiry(m.ExpiryDate, today) {
		case inventory.Expired:
			stats.ExpiredCount++
		case inventory.NearExpiry:
			stats.NearExpiryCount++
		}
	}
	respondJSON(w, http.StatusOK, stats)
}
