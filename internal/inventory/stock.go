// Package inventory is the only place medicine quantities change. Every
// mutation runs on a caller-supplied transaction and returns the resulting
// stock level so the caller can decide on alerts after commit.
package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pharmacy/m/domain"
	"pharmacy/m/internal/metrics"
	"pharmacy/m/internal/notify"
	"pharmacy/m/internal/store"
)

// Low-stock band, inclusive. Zero stock is out of stock, not low.
const (
	LowStockMin int64 = 1
	LowStockMax int64 = 4
)

// Mutation sources used as metric labels.
const (
	SourceSale    = "sale"
	SourceReceipt = "receipt"
	SourceManual  = "manual"
)

func InLowStockBand(qty int64) bool {
	return qty >= LowStockMin && qty <= LowStockMax
}

type Stock struct {
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewStock(n notify.Notifier, m *metrics.Metrics, log *zap.Logger) *Stock {
	return &Stock{notifier: n, metrics: m, log: log.Named("inventory")}
}

// Decrement removes delta units if at least delta are on hand. A shortfall,
// including one caused by a concurrent sale, is reported as
// ErrInsufficientStock and leaves the row unchanged.
func (s *Stock) Decrement(ctx context.Context, tx *store.Tx, id, delta int64) (*domain.StockLevel, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	ok, err := tx.Medicines.DecrementQuantity(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := tx.Medicines.StockLevel(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrInsufficientStock
	}
	return s.after(ctx, tx, id, SourceSale)
}

func (s *Stock) Increment(ctx context.Context, tx *store.Tx, id, delta int64) (*domain.StockLevel, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if err := tx.Medicines.IncrementQuantity(ctx, id, delta); err != nil {
		return nil, err
	}
	return s.after(ctx, tx, id, SourceReceipt)
}

// Set overwrites the quantity with an absolute value.
func (s *Stock) Set(ctx context.Context, tx *store.Tx, id, qty int64) (*domain.StockLevel, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", domain.ErrValidation)
	}
	if err := tx.Medicines.SetQuantity(ctx, id, qty); err != nil {
		return nil, err
	}
	return s.after(ctx, tx, id, SourceManual)
}

func (s *Stock) after(ctx context.Context, tx *store.Tx, id int64, source string) (*domain.StockLevel, error) {
	lvl, err := tx.Medicines.StockLevel(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.StockMutations.WithLabelValues(source).Inc()
	return lvl, nil
}

// NotifyLow hands the levels that fall in the low-stock band to the notifier.
// A medicine listed more than once is reported with its last level. Call it
// only after the mutating transaction has committed.
func (s *Stock) NotifyLow(ctx context.Context, levels ...domain.StockLevel) {
	var (
		low  []domain.StockLevel
		seen = map[int64]int{}
	)
	for _, lvl := range levels {
		if i, ok := seen[lvl.MedicineID]; ok {
			low[i] = lvl
			continue
		}
		seen[lvl.MedicineID] = len(low)
		low = append(low, lvl)
	}

	filtered := low[:0]
	for _, lvl := range low {
		if InLowStockBand(lvl.Quantity) {
			filtered = append(filtered, lvl)
		}
	}
	if len(filtered) == 0 {
		return
	}
	s.log.Debug("Low stock detected", zap.Int("medicines", len(filtered)))
	s.notifier.LowStock(ctx, filtered)
}
