package inventory

import "pharmacy/m/domain"

// NearExpiryDays is the window, in days from today, in which a medicine
// counts as near expiry.
const NearExpiryDays = 30

type ExpiryStatus string

const (
	Expired    ExpiryStatus = "Expired"
	NearExpiry ExpiryStatus = "Near Expiry"
	Normal     ExpiryStatus = "Normal"
)

// ClassifyExpiry compares calendar days only; the time of day is ignored.
func ClassifyExpiry(expiry, today domain.Date) ExpiryStatus {
	expiry, today = domain.NewDate(expiry.Time), domain.NewDate(today.Time)
	switch {
	case expiry.Before(today):
		return Expired
	case !expiry.After(today.AddDays(NearExpiryDays)):
		return NearExpiry
	default:
		return Normal
	}
}

type StockStatus string

const (
	OutOfStock StockStatus = "Out of Stock"
	LowStock   StockStatus = "Low Stock"
	InStock    StockStatus = "In Stock"
)

// StockAlertLevel is the quantity below which the stock view and dashboard
// report a medicine as low. It is wider than the alert band.
const StockAlertLevel int64 = 10

func ClassifyStock(qty int64) StockStatus {
	switch {
	case qty <= 0:
		return OutOfStock
	case qty < StockAlertLevel:
		return LowStock
	default:
		return InStock
	}
}

// SplitExpiring returns, as digest rows, the medicines that are expired and
// those expiring within window days of today. With a window of
// NearExpiryDays this matches ClassifyExpiry exactly.
func SplitExpiring(meds []domain.Medicine, today domain.Date, window int) (expired, near []domain.ExpiringMedicine) {
	expired = []domain.ExpiringMedicine{}
	near = []domain.ExpiringMedicine{}
	cutoff := today.AddDays(window)
	for _, m := range meds {
		row := domain.ExpiringMedicine{
			MedicineID:  m.ID,
			Name:        m.Name,
			BatchNumber: m.BatchNumber,
			ExpiryDate:  m.ExpiryDate,
			Quantity:    m.Quantity,
			Days:        today.DaysUntil(m.ExpiryDate),
		}
		switch {
		case ClassifyExpiry(m.ExpiryDate, today) == Expired:
			expired = append(expired, row)
		case !m.ExpiryDate.After(cutoff):
			near = append(near, row)
		}
	}
	return expired, near
}
