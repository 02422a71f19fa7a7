package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pharmacy/m/domain"
	"pharmacy/m/internal/metrics"
)

const (
	kindLowStock = "low_stock"
	kindExpiry   = "expiry"
)

type Options struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
}

type job struct {
	kind string
	msg  Message
}

// Dispatcher is the Notifier used in production. It renders each notice,
// queues it, and lets a fixed set of workers deliver it with linear backoff.
// When the queue is full the notice is dropped.
type Dispatcher struct {
	mailer  *Mailer
	opts    Options
	metrics *metrics.Metrics
	log     *zap.Logger

	jobs   chan job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(mailer *Mailer, opts Options, m *metrics.Metrics, log *zap.Logger) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		mailer:  mailer,
		opts:    opts,
		metrics: m,
		log:     log.Named("notify"),
		jobs:    make(chan job, opts.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.log.Info("Notification workers started",
		zap.Int("workers", d.opts.Workers),
		zap.Int("queue_size", d.opts.QueueSize))
}

// Stop refuses new notices and waits for queued ones to be delivered. If ctx
// expires first, in-flight retries are abandoned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) LowStock(ctx context.Context, levels []domain.StockLevel) {
	if len(levels) == 0 {
		return
	}
	msg, err := d.mailer.LowStockMessage(levels)
	if err != nil {
		d.log.Error("Failed to render low stock alert", zap.Error(err))
		d.metrics.Notifications.WithLabelValues(kindLowStock, "failed").Inc()
		return
	}
	d.enqueue(job{kind: kindLowStock, msg: msg})
}

func (d *Dispatcher) Expiry(ctx context.Context, expired, nearExpiry []domain.ExpiringMedicine) {
	if len(expired) == 0 && len(nearExpiry) == 0 {
		return
	}
	msg, err := d.mailer.ExpiryMessage(expired, nearExpiry)
	if err != nil {
		d.log.Error("Failed to render expiry alert", zap.Error(err))
		d.metrics.Notifications.WithLabelValues(kindExpiry, "failed").Inc()
		return
	}
	d.enqueue(job{kind: kindExpiry, msg: msg})
}

func (d *Dispatcher) enqueue(j job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("Notification dropped, dispatcher stopped", zap.String("kind", j.kind))
		d.metrics.Notifications.WithLabelValues(j.kind, "dropped").Inc()
		return false
	}
	select {
	case d.jobs <- j:
		d.metrics.NotifyQueueSize.Set(float64(len(d.jobs)))
		return true
	default:
		d.log.Warn("Notification dropped, queue full",
			zap.String("kind", j.kind),
			zap.Int("queue_size", d.opts.QueueSize))
		d.metrics.Notifications.WithLabelValues(j.kind, "dropped").Inc()
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.metrics.NotifyQueueSize.Set(float64(len(d.jobs)))
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	for attempt := 1; ; attempt++ {
		err := d.mailer.Send(d.ctx, j.msg)
		if err == nil {
			d.metrics.Notifications.WithLabelValues(j.kind, "sent").Inc()
			d.log.Info("Notification sent", zap.String("kind", j.kind), zap.Int("attempt", attempt))
			return
		}
		if attempt >= d.opts.MaxAttempts {
			d.metrics.Notifications.WithLabelValues(j.kind, "failed").Inc()
			d.log.Error("Notification failed",
				zap.String("kind", j.kind),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}
		d.metrics.Notifications.WithLabelValues(j.kind, "retried").Inc()
		d.log.Warn("Notification attempt failed, retrying",
			zap.String("kind", j.kind),
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-time.After(d.opts.RetryDelay * time.Duration(attempt)):
		case <-d.ctx.Done():
			d.metrics.Notifications.WithLabelValues(j.kind, "failed").Inc()
			return
		}
	}
}
