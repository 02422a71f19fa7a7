package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Medicine struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Category     string          `db:"category" json:"category"`
	BatchNumber  string          `db:"batch_number" json:"batch_number"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	ExpiryDate   Date            `db:"expiry_date" json:"expiry_date"`
	SupplierID   *int64          `db:"supplier_id" json:"supplier_id,omitempty"`
	SupplierName *string         `db:"supplier_name" json:"supplier_name,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// StockLevel is the post-mutation view of a medicine handed to the notifier.
type StockLevel struct {
	MedicineID   int64  `db:"id" json:"medicine_id"`
	Name         string `db:"name" json:"name"`
	Category     string `db:"category" json:"category"`
	Quantity     int64  `db:"quantity" json:"quantity"`
	SupplierName string `db:"supplier_name" json:"supplier_name"`
}

// ExpiringMedicine is one row of the expiry digest. Days is negative for
// medicines already past their expiry date.
type ExpiringMedicine struct {
	MedicineID  int64  `json:"medicine_id"`
	Name        string `json:"name"`
	BatchNumber string `json:"batch_number"`
	ExpiryDate  Date   `json:"expiry_date"`
	Quantity    int64  `json:"quantity"`
	Days        int    `json:"days"`
}
