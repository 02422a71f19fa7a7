// Package notify delivers low-stock and expiry alerts by email. Alerts are
// rendered on the caller's goroutine and sent by a bounded worker pool, so a
// slow or failing mail relay never holds up a sale.
package notify

import (
	"context"

	"pharmacy/m/domain"
)

// Notifier receives alert-worthy stock state. Implementations must not block
// on delivery.
type Notifier interface {
	LowStock(ctx context.Context, levels []domain.StockLevel)
	Expiry(ctx context.Context, expired, nearExpiry []domain.ExpiringMedicine)
}

// Nop discards every notice.
type Nop struct{}

func (Nop) LowStock(context.Context, []domain.StockLevel) {}

func (Nop) Expiry(context.Context, []domain.ExpiringMedicine, []domain.ExpiringMedicine) {}
