// Package billing records point-of-sale transactions.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pharmacy/m/domain"
	"pharmacy/m/internal/inventory"
	"pharmacy/m/internal/metrics"
	"pharmacy/m/internal/store"
)

// Line is one cart entry.
type Line struct {
	MedicineID int64 `json:"medicine_id"`
	Quantity   int64 `json:"quantity"`
}

type Checkout struct {
	Lines         []Line
	CustomerName  string
	PaymentMethod string
}

type Receipt struct {
	SaleID      int64             `json:"sale_id"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []domain.SaleItem `json:"items"`
}

type Engine struct {
	store   *store.Store
	stock   *inventory.Stock
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewEngine(s *store.Store, stock *inventory.Stock, m *metrics.Metrics, log *zap.Logger) *Engine {
	return &Engine{store: s, stock: stock, metrics: m, log: log.Named("billing")}
}

func validate(c Checkout) error {
	if len(c.Lines) == 0 {
		return fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	if strings.TrimSpace(c.PaymentMethod) == "" {
		return fmt.Errorf("%w: payment method is required", domain.ErrValidation)
	}
	for i, l := range c.Lines {
		if l.Quantity <= 0 {
			return &domain.LineError{
				Line:       i,
				MedicineID: l.MedicineID,
				Requested:  l.Quantity,
				Err:        fmt.Errorf("%w: quantity must be a positive integer", domain.ErrValidation),
			}
		}
	}
	return nil
}

// Checkout validates the cart line by line and, if every line can be filled,
// commits the sale, its items and the stock decrements in one transaction.
// The first failing line aborts the sale with a *domain.LineError and
// nothing is written. Low-stock notices go out only after commit.
func (e *Engine) Checkout(ctx context.Context, c Checkout) (*Receipt, error) {
	if err := validate(c); err != nil {
		e.reject(err)
		return nil, err
	}

	var (
		receipt *Receipt
		levels  []domain.StockLevel
	)
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		levels = levels[:0]

		sale := &domain.Sale{PaymentMethod: strings.TrimSpace(c.PaymentMethod), TotalAmount: decimal.Zero}
		if name := strings.TrimSpace(c.CustomerName); name != "" {
			sale.CustomerName = &name
		}
		if err := tx.Sales.Create(ctx, sale); err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]domain.SaleItem, 0, len(c.Lines))
		for i, l := range c.Lines {
			med, err := tx.Medicines.Get(ctx, l.MedicineID)
			if err != nil {
				return &domain.LineError{Line: i, MedicineID: l.MedicineID, Requested: l.Quantity, Err: err}
			}
			if med.Quantity < l.Quantity {
				return &domain.LineError{
					Line:       i,
					MedicineID: l.MedicineID,
					Requested:  l.Quantity,
					Available:  med.Quantity,
					Err:        domain.ErrInsufficientStock,
				}
			}

			item := domain.SaleItem{
				SaleID:       sale.ID,
				MedicineID:   med.ID,
				MedicineName: med.Name,
				Category:     med.Category,
				BatchNumber:  med.BatchNumber,
				Quantity:     l.Quantity,
				UnitPrice:    med.Price,
				Subtotal:     med.Price.Mul(decimal.NewFromInt(l.Quantity)),
			}
			if err := tx.Sales.AddItem(ctx, &item); err != nil {
				return &domain.LineError{Line: i, MedicineID: l.MedicineID, Requested: l.Quantity, Err: err}
			}

			lvl, err := e.stock.Decrement(ctx, tx, med.ID, l.Quantity)
			if err != nil {
				lineErr := &domain.LineError{Line: i, MedicineID: l.MedicineID, Requested: l.Quantity, Err: err}
				if errors.Is(err, domain.ErrInsufficientStock) {
					lineErr.Available = med.Quantity
				}
				return lineErr
			}
			levels = append(levels, *lvl)
			items = append(items, item)
			total = total.Add(item.Subtotal)
		}

		if err := tx.Sales.SetTotal(ctx, sale.ID, total); err != nil {
			return err
		}
		receipt = &Receipt{SaleID: sale.ID, TotalAmount: total, Items: items}
		return nil
	})
	if err != nil {
		e.reject(err)
		return nil, err
	}

	revenue, _ := receipt.TotalAmount.Float64()
	e.metrics.SalesCommitted.Inc()
	e.metrics.SaleRevenue.Add(revenue)
	e.log.Info("Sale committed",
		zap.Int64("sale_id", receipt.SaleID),
		zap.String("total", receipt.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(receipt.Items)))

	e.stock.NotifyLow(ctx, levels...)
	return receipt, nil
}

func (e *Engine) reject(err error) {
	reason := "storage_failure"
	var lineErr *domain.LineError
	switch {
	case errors.As(err, &lineErr):
		reason = lineErr.Reason()
	case errors.Is(err, domain.ErrValidation):
		reason = "validation_error"
	case errors.Is(err, domain.ErrNotFound):
		reason = "not_found"
	}
	e.metrics.SalesRejected.WithLabelValues(reason).Inc()
	if reason == "storage_failure" {
		e.log.Error("Checkout failed", zap.Error(err))
		return
	}
	e.log.Info("Checkout rejected", zap.String("reason", reason), zap.Error(err))
}
