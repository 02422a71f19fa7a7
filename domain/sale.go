package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID            int64           `db:"id" json:"id"`
	CustomerName  *string         `db:"customer_name" json:"customer_name,omitempty"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type SaleItem struct {
	ID           int64           `db:"id" json:"id"`
	SaleID       int64           `db:"sale_id" json:"sale_id"`
	MedicineID   int64           `db:"medicine_id" json:"medicine_id"`
	MedicineName string          `db:"medicine_name" json:"medicine_name,omitempty"`
	Category     string          `db:"category" json:"category,omitempty"`
	BatchNumber  string          `db:"batch_number" json:"batch_number,omitempty"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// Invoice is a committed sale together with its line items.
type Invoice struct {
	Sale
	Items []SaleItem `json:"items"`
}
