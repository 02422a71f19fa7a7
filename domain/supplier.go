package domain

import "time"

type Supplier struct {
	ID                   int64     `db:"id" json:"id"`
	Name                 string    `db:"name" json:"name"`
	ContactNumber        string    `db:"contact_number" json:"contact_number"`
	Email                string    `db:"email" json:"email"`
	Address              string    `db:"address" json:"address"`
	TaxID                string    `db:"tax_id" json:"tax_id"`
	ContactPerson        string    `db:"contact_person" json:"contact_person"`
	PaymentTerms         string    `db:"payment_terms" json:"payment_terms"`
	PreferredPaymentMode string    `db:"preferred_payment_mode" json:"preferred_payment_mode"`
	Rating               int       `db:"rating" json:"rating"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}
