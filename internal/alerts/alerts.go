// Package alerts runs the expiry digest and the low-stock scan, on demand
// and on a cron schedule.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pharmacy/m/domain"
	"pharmacy/m/internal/inventory"
	"pharmacy/m/internal/notify"
	"pharmacy/m/internal/store"
)

// Tester sends a one-off mail to prove the relay works.
type Tester interface {
	SendTest(ctx context.Context) error
}

type ExpiryReport struct {
	Expired    []domain.ExpiringMedicine `json:"expired"`
	NearExpiry []domain.ExpiringMedicine `json:"near_expiry"`
}

type Service struct {
	store    *store.Store
	notifier notify.Notifier
	tester   Tester
	log      *zap.Logger
	now      func() time.Time
}

func NewService(s *store.Store, n notify.Notifier, t Tester, log *zap.Logger) *Service {
	return &Service{store: s, notifier: n, tester: t, log: log.Named("alerts"), now: time.Now}
}

// ExpiryReport lists medicines that are expired or expire within the given
// number of days. With stockedOnly, medicines with no units on hand are left out.
func (s *Service) ExpiryReport(ctx context.Context, days int, stockedOnly bool) (*ExpiryReport, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days cannot be negative", domain.ErrValidation)
	}
	today := domain.NewDate(s.now())
	meds, err := s.store.Medicines.ExpiringBy(ctx, today.AddDays(days), stockedOnly)
	if err != nil {
		return nil, err
	}
	expired, near := inventory.SplitExpiring(meds, today, days)
	return &ExpiryReport{Expired: expired, NearExpiry: near}, nil
}

// CheckExpiry sends the expiry digest when anything is expired or near
// expiry. It reports what was found.
func (s *Service) CheckExpiry(ctx context.Context) (*ExpiryReport, error) {
	report, err := s.ExpiryReport(ctx, inventory.NearExpiryDays, true)
	if err != nil {
		return nil, err
	}
	s.log.Info("Expiry check complete",
		zap.Int("expired", len(report.Expired)),
		zap.Int("near_expiry", len(report.NearExpiry)))
	if len(report.Expired) > 0 || len(report.NearExpiry) > 0 {
		s.notifier.Expiry(ctx, report.Expired, report.NearExpiry)
	}
	return report, nil
}

// CheckLowStock sends one notice covering every medicine in the low-stock
// band.
func (s *Service) CheckLowStock(ctx context.Context) ([]domain.StockLevel, error) {
	levels, err := s.store.Medicines.StockBetween(ctx, inventory.LowStockMin, inventory.LowStockMax)
	if err != nil {
		return nil, err
	}
	s.log.Info("Low stock check complete", zap.Int("medicines", len(levels)))
	if len(levels) > 0 {
		s.notifier.LowStock(ctx, levels)
	}
	return levels, nil
}

func (s *Service) SendTestEmail(ctx context.Context) error {
	return s.tester.SendTest(ctx)
}

// RunDigest performs both checks. Failures are logged, not returned.
func (s *Service) RunDigest(ctx context.Context) {
	if _, err := s.CheckExpiry(ctx); err != nil {
		s.log.Error("Expiry digest failed", zap.Error(err))
	}
	if _, err := s.CheckLowStock(ctx); err != nil {
		s.log.Error("Low stock digest failed", zap.Error(err))
	}
}

// Schedule registers the digest on a new cron scheduler. The caller starts
// and stops it.
func (s *Service) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cronLogger{s.log}))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.RunDigest(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: digest schedule %q: %v", domain.ErrValidation, spec, err)
	}
	return c, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
