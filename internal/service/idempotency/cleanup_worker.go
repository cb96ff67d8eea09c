// Package idempotency обслуживает ключи идемпотентности FulfillDelivery.
package idempotency

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/metrics"
)

const (
	defaultCleanupInterval  = 10 * time.Minute
	defaultCleanupBatchSize = 500
	defaultMaxBatchesPerRun = 100
)

// CleanupOption настраивает CleanupWorker.
type CleanupOption func(*CleanupWorker)

func WithLogger(logger *log.Entry) CleanupOption {
	return func(w *CleanupWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) CleanupOption {
	return func(w *CleanupWorker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithBatchSize задаёт число ключей, удаляемых одним запросом.
func WithBatchSize(size int) CleanupOption {
	return func(w *CleanupWorker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithMaxBatchesPerRun ограничивает число запросов за один проход; остаток дочистится на следующем тике.
func WithMaxBatchesPerRun(n int) CleanupOption {
	return func(w *CleanupWorker) {
		if n > 0 {
			w.maxBatches = n
		}
	}
}

func WithMetrics(m *metrics.IdempotencyMetrics) CleanupOption {
	return func(w *CleanupWorker) {
		if m != nil {
			w.metrics = m
		}
	}
}

// Sweep — итог одного прохода очистки.
type Sweep struct {
	Deleted int
	Batches int
	// Truncated: проход упёрся в лимит батчей, просроченные ключи могли остаться.
	Truncated bool
}

// CleanupWorker периодически удаляет просроченные ключи идемпотентности.
// Для Redis удаление ничего не делает: ключи истекают по TTL.
type CleanupWorker struct {
	repo       domain.IdempotencyRepository
	interval   time.Duration
	batchSize  int
	maxBatches int
	logger     *log.Entry
	metrics    *metrics.IdempotencyMetrics
	now        func() time.Time
}

// NewCleanupWorker создаёт воркер очистки.
func NewCleanupWorker(repo domain.IdempotencyRepository, opts ...CleanupOption) *CleanupWorker {
	w := &CleanupWorker{
		repo:       repo,
		interval:   defaultCleanupInterval,
		batchSize:  defaultCleanupBatchSize,
		maxBatches: defaultMaxBatchesPerRun,
		logger:     log.WithField("component", "idempotency-cleanup"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.metrics == nil {
		w.metrics = metrics.NewIdempotencyMetrics()
	}
	return w
}

// Run чистит ключи сразу и затем каждые interval, пока ctx не отменён.
func (w *CleanupWorker) Run(ctx context.Context) {
	if w.repo == nil {
		w.logger.Warn("idempotency cleanup disabled: repository is not configured")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.runOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *CleanupWorker) runOnce(ctx context.Context) {
	sweep, err := w.DeleteExpired(ctx, w.now().UTC())
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return
	case err != nil:
		w.metrics.RecordSweep(metrics.CleanupError, sweep.Deleted)
		w.logger.WithError(err).WithField("deleted", sweep.Deleted).Warn("idempotency cleanup failed")
		return
	case sweep.Truncated:
		w.metrics.RecordSweep(metrics.CleanupPartial, sweep.Deleted)
	default:
		w.metrics.RecordSweep(metrics.CleanupOK, sweep.Deleted)
	}

	if sweep.Deleted > 0 {
		w.logger.WithFields(log.Fields{
			"deleted":   sweep.Deleted,
			"batches":   sweep.Batches,
			"truncated": sweep.Truncated,
		}).Info("expired idempotency keys removed")
	}
}

// DeleteExpired удаляет ключи с ttl не позже before порциями batchSize.
// Проход заканчивается на неполной порции или после maxBatches запросов.
func (w *CleanupWorker) DeleteExpired(ctx context.Context, before time.Time) (Sweep, error) {
	var sweep Sweep
	if before.IsZero() {
		before = w.now().UTC()
	}

	for sweep.Batches < w.maxBatches {
		if err := ctx.Err(); err != nil {
			return sweep, err
		}
		n, err := w.repo.DeleteExpired(ctx, before, w.batchSize)
		sweep.Batches++
		if err != nil {
			return sweep, err
		}
		sweep.Deleted += n
		if n < w.batchSize {
			return sweep, nil
		}
	}
	sweep.Truncated = true
	return sweep, nil
}
