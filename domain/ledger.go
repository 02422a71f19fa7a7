package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger status values are advisory; only the Pending -> Received transition
// of a purchase order has side effects.
const (
	StatusPending  = "Pending"
	StatusReceived = "Received"
)

type PurchaseOrder struct {
	ID               int64           `db:"id" json:"id"`
	SupplierID       int64           `db:"supplier_id" json:"supplier_id"`
	SupplierName     string          `db:"supplier_name" json:"supplier_name,omitempty"`
	PONumber         string          `db:"po_number" json:"po_number"`
	PODate           Date            `db:"po_date" json:"po_date"`
	ExpectedDelivery *Date           `db:"expected_delivery" json:"expected_delivery,omitempty"`
	TotalAmount      decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status           string          `db:"status" json:"status"`
	Notes            string          `db:"notes" json:"notes"`
	ReceivedAt       *time.Time      `db:"received_at" json:"received_at,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`

	Items []PurchaseOrderItem `db:"-" json:"items,omitempty"`
}

type PurchaseOrderItem struct {
	ID               int64           `db:"id" json:"id"`
	POID             int64           `db:"po_id" json:"po_id"`
	MedicineID       *int64          `db:"medicine_id" json:"medicine_id,omitempty"`
	MedicineName     string          `db:"medicine_name" json:"medicine_name"`
	BatchNumber      string          `db:"batch_number" json:"batch_number"`
	Quantity         int64           `db:"quantity" json:"quantity"`
	Price            decimal.Decimal `db:"price" json:"price"`
	ReceivedQuantity int64           `db:"received_quantity" json:"received_quantity"`
}

type SupplierPayment struct {
	ID              int64           `db:"id" json:"id"`
	SupplierID      int64           `db:"supplier_id" json:"supplier_id"`
	SupplierName    string          `db:"supplier_name" json:"supplier_name,omitempty"`
	POID            *int64          `db:"po_id" json:"po_id,omitempty"`
	PONumber        *string         `db:"po_number" json:"po_number,omitempty"`
	PaymentDate     Date            `db:"payment_date" json:"payment_date"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	PaymentMode     string          `db:"payment_mode" json:"payment_mode"`
	ReferenceNumber string          `db:"reference_number" json:"reference_number"`
	Notes           string          `db:"notes" json:"notes"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

type PurchaseReturn struct {
	ID           int64           `db:"id" json:"id"`
	SupplierID   int64           `db:"supplier_id" json:"supplier_id"`
	SupplierName string          `db:"supplier_name" json:"supplier_name,omitempty"`
	MedicineID   int64           `db:"medicine_id" json:"medicine_id"`
	MedicineName string          `db:"medicine_name" json:"medicine_name,omitempty"`
	ReturnDate   Date            `db:"return_date" json:"return_date"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	Reason       string          `db:"reason" json:"reason"`
	Status       string          `db:"status" json:"status"`
	CreditAmount decimal.Decimal `db:"credit_amount" json:"credit_amount"`
	Notes        string          `db:"notes" json:"notes"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Outstanding is the unpaid balance owed to one supplier.
type Outstanding struct {
	SupplierID   int64           `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Ordered      decimal.Decimal `json:"ordered"`
	Paid         decimal.Decimal `json:"paid"`
	Balance      decimal.Decimal `json:"balance"`
}
