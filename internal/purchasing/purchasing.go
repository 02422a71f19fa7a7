// Package purchasing handles the supplier side of the ledger: purchase
// orders and their receipt, payments and returns.
package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pharmacy/m/domain"
	"pharmacy/m/internal/inventory"
	"pharmacy/m/internal/store"
)

type Service struct {
	store *store.Store
	stock *inventory.Stock
	log   *zap.Logger
	now   func() time.Time
}

func NewService(s *store.Store, stock *inventory.Stock, log *zap.Logger) *Service {
	return &Service{store: s, stock: stock, log: log.Named("purchasing"), now: time.Now}
}

// NewPONumber returns a short random purchase order number.
func NewPONumber() string {
	return "PO-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// CreateOrder stores a pending purchase order. Items that reference a
// catalog medicine inherit its name and batch when those are blank.
func (s *Service) CreateOrder(ctx context.Context, po *domain.PurchaseOrder) error {
	if len(po.Items) == 0 {
		return fmt.Errorf("%w: a purchase order needs at least one item", domain.ErrValidation)
	}
	if po.PONumber = strings.TrimSpace(po.PONumber); po.PONumber == "" {
		po.PONumber = NewPONumber()
	}
	if po.PODate.IsZero() {
		po.PODate = domain.NewDate(s.now())
	}
	po.Status = domain.StatusPending

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := requireSupplier(ctx, tx, po.SupplierID); err != nil {
			return err
		}
		for i := range po.Items {
			item := &po.Items[i]
			if item.Quantity <= 0 {
				return fmt.Errorf("%w: item %d: quantity must be positive", domain.ErrValidation, i+1)
			}
			if err := domain.CheckMoney("price", item.Price); err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
			if item.MedicineID != nil {
				med, err := tx.Medicines.Get(ctx, *item.MedicineID)
				if err != nil {
					return fmt.Errorf("item %d: %w", i+1, err)
				}
				if item.MedicineName == "" {
					item.MedicineName = med.Name
				}
				if item.BatchNumber == "" {
					item.BatchNumber = med.BatchNumber
				}
			}
			if strings.TrimSpace(item.MedicineName) == "" {
				return fmt.Errorf("%w: item %d: medicine name is required", domain.ErrValidation, i+1)
			}
		}
		return tx.Ledger.CreatePurchaseOrder(ctx, po)
	})
	if err != nil {
		return err
	}
	s.log.Info("Purchase order created",
		zap.Int64("po_id", po.ID),
		zap.String("po_number", po.PONumber),
		zap.String("total", po.TotalAmount.StringFixed(2)))
	return nil
}

// Receive marks the order received and adds every catalog-linked line to
// stock, all in one transaction. Receiving an order twice is a conflict.
func (s *Service) Receive(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	var (
		po     *domain.PurchaseOrder
		levels []domain.StockLevel
	)
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		levels = levels[:0]
		if err := tx.Ledger.MarkReceived(ctx, id, s.now()); err != nil {
			return err
		}
		var err error
		po, err = tx.Ledger.GetPurchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		for i := range po.Items {
			item := &po.Items[i]
			if item.MedicineID == nil {
				continue
			}
			lvl, err := s.stock.Increment(ctx, tx, *item.MedicineID, item.Quantity)
			if err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
			if err := tx.Ledger.SetReceivedQuantity(ctx, item.ID, item.Quantity); err != nil {
				return err
			}
			item.ReceivedQuantity = item.Quantity
			levels = append(levels, *lvl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Purchase order received", zap.Int64("po_id", id), zap.Int("stocked_lines", len(levels)))
	s.stock.NotifyLow(ctx, levels...)
	return po, nil
}

func (s *Service) RecordPayment(ctx context.Context, p *domain.SupplierPayment) error {
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if err := domain.CheckMoney("amount", p.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(p.PaymentMode) == "" {
		return fmt.Errorf("%w: payment mode is required", domain.ErrValidation)
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = domain.NewDate(s.now())
	}
	return s.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := requireSupplier(ctx, tx, p.SupplierID); err != nil {
			return err
		}
		if p.POID != nil {
			po, err := tx.Ledger.GetPurchaseOrder(ctx, *p.POID)
			if err != nil {
				return fmt.Errorf("purchase order: %w", err)
			}
			if po.SupplierID != p.SupplierID {
				return fmt.Errorf("%w: purchase order %d belongs to another supplier", domain.ErrValidation, po.ID)
			}
		}
		return tx.Ledger.CreatePayment(ctx, p)
	})
}

// RecordReturn logs goods sent back to a supplier. Stock is not adjusted.
func (s *Service) RecordReturn(ctx context.Context, r *domain.PurchaseReturn) error {
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("%w: reason is required", domain.ErrValidation)
	}
	if err := domain.CheckMoney("credit amount", r.CreditAmount); err != nil {
		return err
	}
	if r.ReturnDate.IsZero() {
		r.ReturnDate = domain.NewDate(s.now())
	}
	return s.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := requireSupplier(ctx, tx, r.SupplierID); err != nil {
			return err
		}
		if _, err := tx.Medicines.Get(ctx, r.MedicineID); err != nil {
			return err
		}
		return tx.Ledger.CreateReturn(ctx, r)
	})
}

// Profile gathers everything recorded against one supplier.
type Profile struct {
	Supplier       *domain.Supplier         `json:"supplier"`
	PurchaseOrders []domain.PurchaseOrder   `json:"purchase_orders"`
	Payments       []domain.SupplierPayment `json:"payments"`
	Returns        []domain.PurchaseReturn  `json:"returns"`
	Balance        decimal.Decimal          `json:"outstanding_balance"`
}

func (s *Service) Profile(ctx context.Context, supplierID int64) (*Profile, error) {
	sup, err := s.store.Suppliers.Get(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	p := &Profile{Supplier: sup}
	if p.PurchaseOrders, err = s.store.Ledger.ListPurchaseOrders(ctx, &supplierID); err != nil {
		return nil, err
	}
	if p.Payments, err = s.store.Ledger.ListPayments(ctx, &supplierID); err != nil {
		return nil, err
	}
	if p.Returns, err = s.store.Ledger.ListReturns(ctx, &supplierID); err != nil {
		return nil, err
	}

	ordered, paid := decimal.Zero, decimal.Zero
	for _, po := range p.PurchaseOrders {
		ordered = ordered.Add(po.TotalAmount)
	}
	for _, pay := range p.Payments {
		paid = paid.Add(pay.Amount)
	}
	p.Balance = ordered.Sub(paid)
	return p, nil
}

func requireSupplier(ctx context.Context, tx *store.Tx, id int64) error {
	ok, err := tx.Suppliers.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: supplier %d does not exist", domain.ErrValidation, id)
	}
	return nil
}
