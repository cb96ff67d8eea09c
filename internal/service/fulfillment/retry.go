package fulfillment

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// RetryConfig задаёт повтор транзакции отгрузки при конфликте хранилища.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	def := DefaultRetryConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = def.BackoffFactor
	}
	return c
}

// withTxRetry повторяет fn только при domain.ErrTxConflict.
// Бизнес-ошибки и отмена контекста возвращаются сразу.
func (s *Service) withTxRetry(ctx context.Context, salesOrderID string, fn func() error) error {
	cfg := s.retry
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			if attempt > 1 {
				s.logger.WithFields(log.Fields{
					"sales_order_id": salesOrderID,
					"attempt":        attempt,
				}).Info("delivery transaction succeeded after retry")
			}
			return nil
		}
		if !domain.IsTxConflict(err) || attempt == cfg.MaxAttempts {
			return err
		}

		s.metrics.RecordRetry()
		s.logger.WithError(err).WithFields(log.Fields{
			"sales_order_id": salesOrderID,
			"attempt":        attempt,
			"delay":          delay,
		}).Warn("delivery transaction conflict, retrying")

		if waitErr := s.sleep(ctx, delay); waitErr != nil {
			return waitErr
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
