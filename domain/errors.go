package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation error")
	ErrStorage           = errors.New("storage failure")
	ErrConflict          = errors.New("conflict")
)

// Storage marks err as an unexpected datastore failure.
func Storage(err error) error {
	if err == nil || errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// LineError reports the cart line that aborted a checkout.
type LineError struct {
	Line       int
	MedicineID int64
	Requested  int64
	Available  int64
	Err        error
}

func (e *LineError) Error() string {
	if errors.Is(e.Err, ErrInsufficientStock) {
		return fmt.Sprintf("line %d: insufficient stock for medicine %d (requested %d, available %d)",
			e.Line+1, e.MedicineID, e.Requested, e.Available)
	}
	return fmt.Sprintf("line %d: medicine %d: %v", e.Line+1, e.MedicineID, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Reason is the machine-readable failure kind for API responses.
func (e *LineError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrNotFound):
		return "not_found"
	case errors.Is(e.Err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(e.Err, ErrValidation):
		return "validation_error"
	default:
		return "storage_failure"
	}
}
