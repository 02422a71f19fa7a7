package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pharmacy/m/domain"
	"pharmacy/m/internal/store"
)

var medicineHeader = []string{"name", "category", "batch_number", "price", "quantity", "expiry_date"}

// LoadMedicinesFile seeds the catalog from a CSV file. An empty path or a
// catalog that already has medicines is a no-op.
func LoadMedicinesFile(ctx context.Context, s *store.Store, csvPath string, log *zap.Logger) (int, error) {
	if csvPath == "" {
		return 0, nil
	}
	n, err := s.Medicines.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Debug("Catalog already populated, skipping CSV seed", zap.Int64("medicines", n))
		return 0, nil
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("unable to load medicine catalog %s: %w", csvPath, err)
	}
	defer file.Close()
	return LoadMedicines(ctx, s, file, log)
}

// LoadMedicines inserts every valid row of r in one transaction. Rows that
// fail to parse are logged and skipped; a database error aborts the load.
func LoadMedicines(ctx context.Context, s *store.Store, r io.Reader, log *zap.Logger) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("unable to read medicine header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return 0, err
	}

	rows := 0
	err = s.WithTx(ctx, func(tx *store.Tx) error {
		for line := 2; ; line++ {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				log.Warn("Unable to read medicine row", zap.Int("line", line), zap.Error(err))
				continue
			}
			m, err := parseMedicine(record, cols)
			if err != nil {
				log.Warn("Skipping medicine row", zap.Int("line", line), zap.Error(err))
				continue
			}
			if err := tx.Medicines.Create(ctx, m); err != nil {
				if errors.Is(err, domain.ErrValidation) {
					log.Warn("Skipping medicine row", zap.Int("line", line), zap.Error(err))
					continue
				}
				return err
			}
			rows++
		}
	})
	if err != nil {
		return 0, err
	}
	log.Info("Seeded medicine catalog", zap.Int("rows", rows))
	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range medicineHeader {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("%w: medicine CSV is missing column %q", domain.ErrValidation, want)
		}
	}
	return cols, nil
}

func parseMedicine(record []string, cols map[string]int) (*domain.Medicine, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := field("name")
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	price, err := decimal.NewFromString(field("price"))
	if err != nil || domain.CheckMoney("price", price) != nil {
		return nil, fmt.Errorf("%w: invalid price %q", domain.ErrValidation, field("price"))
	}
	qty, err := strconv.ParseInt(field("quantity"), 10, 64)
	if err != nil || qty < 0 {
		return nil, fmt.Errorf("%w: invalid quantity %q", domain.ErrValidation, field("quantity"))
	}
	expiry, err := domain.ParseDate(field("expiry_date"))
	if err != nil {
		return nil, err
	}
	return &domain.Medicine{
		Name:        name,
		Category:    field("category"),
		BatchNumber: field("batch_number"),
		Price:       price,
		Quantity:    qty,
		ExpiryDate:  expiry,
	}, nil
}
