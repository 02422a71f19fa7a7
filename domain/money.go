package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the scale of every stored amount.
const MoneyPlaces = 2

// CheckMoney rejects negative amounts and amounts finer than a cent.
func CheckMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s cannot be negative", ErrValidation, field)
	}
	if !d.Equal(d.Round(MoneyPlaces)) {
		return fmt.Errorf("%w: %s cannot have more than %d decimal places", ErrValidation, field, MoneyPlaces)
	}
	return nil
}
