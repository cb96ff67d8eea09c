// Package outbox ретранслирует события отгрузок из transactional outbox во внешний брокер.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/metrics"
	"github.com/vladislavdragonenkov/fulfillment/internal/tracing"
)

const (
	defaultPollInterval   = time.Second
	defaultBatchSize      = 100
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond

	maxBackoff = time.Minute
)

// Option настраивает Worker.
type Option func(*Worker)

func WithLogger(logger *log.Entry) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDLQPublisher задаёт получателя событий, для которых исчерпаны попытки.
func WithDLQPublisher(publisher domain.OutboxPublisher) Option {
	return func(w *Worker) { w.dlq = publisher }
}

func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithMaxAttempts задаёт число попыток публикации одного события.
func WithMaxAttempts(attempts int) Option {
	return func(w *Worker) {
		if attempts > 0 {
			w.maxAttempts = attempts
		}
	}
}

// WithRetryBaseDelay задаёт первую паузу между попытками; дальше она удваивается.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(w *Worker) {
		if delay < 0 {
			delay = 0
		}
		w.retryBaseDelay = delay
	}
}

func WithMetrics(m *metrics.OutboxMetrics) Option {
	return func(w *Worker) {
		if m != nil {
			w.metrics = m
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(w *Worker) {
		if tracer != nil {
			w.tracer = tracer
		}
	}
}

// BatchResult — итог одного цикла опроса.
type BatchResult struct {
	Pulled int
	Sent   int
	Failed int
}

// DeadLetter описывает событие, отправленное в DLQ.
type DeadLetter struct {
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	Attempts      int             `json:"attempts"`
	PublishError  string          `json:"publish_error"`
	FailedAt      time.Time       `json:"failed_at"`
}

// Worker забирает события DeliveryShipped из outbox и публикует их.
// Событие помечается sent после успешной публикации и failed после исчерпания попыток.
type Worker struct {
	repo      domain.OutboxRepository
	publisher domain.OutboxPublisher
	dlq       domain.OutboxPublisher

	pollInterval   time.Duration
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration

	logger  *log.Entry
	metrics *metrics.OutboxMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewWorker создаёт ретранслятор outbox.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, opts ...Option) *Worker {
	w := &Worker{
		repo:           repo,
		publisher:      publisher,
		pollInterval:   defaultPollInterval,
		batchSize:      defaultBatchSize,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         log.WithField("component", "outbox-worker"),
		tracer:         tracing.Tracer(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.metrics == nil {
		w.metrics = metrics.NewOutboxMetrics()
	}
	return w
}

// Run опрашивает outbox каждые pollInterval, пока ctx не отменён.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil || w.publisher == nil {
		w.logger.Warn("outbox worker disabled: repository or publisher is not configured")
		return
	}

	w.logger.WithFields(log.Fields{
		"poll_interval": w.pollInterval,
		"batch_size":    w.batchSize,
		"max_attempts":  w.maxAttempts,
	}).Info("outbox worker started")
	defer w.logger.Info("outbox worker stopped")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		w.ProcessOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessOnce выполняет один цикл: обновляет метрики backlog и публикует очередную пачку событий.
func (w *Worker) ProcessOnce(ctx context.Context) BatchResult {
	var result BatchResult
	if ctx.Err() != nil {
		return result
	}

	w.refreshBacklog(ctx)
	defer w.refreshBacklog(ctx)

	events, err := w.repo.PullPending(ctx, w.batchSize)
	if err != nil {
		w.logger.WithError(err).Warn("pull pending outbox events")
		return result
	}
	result.Pulled = len(events)
	if len(events) == 0 {
		return result
	}
	w.metrics.ObserveBatch(len(events))

	for _, event := range events {
		if ctx.Err() != nil {
			break
		}
		if w.relay(ctx, event) {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	if result.Failed > 0 {
		w.logger.WithFields(log.Fields{
			"sent":   result.Sent,
			"failed": result.Failed,
		}).Warn("outbox batch finished with failures")
	}
	return result
}

// relay публикует одно событие и фиксирует исход в outbox. Возвращает true, если событие отправлено.
func (w *Worker) relay(ctx context.Context, event domain.OutboxMessage) bool {
	ctx, span := w.tracer.Start(ctx, "outbox.Relay", trace.WithAttributes(
		attribute.String("outbox.id", event.ID),
		attribute.String("outbox.event_type", event.EventType),
		attribute.String("fulfillment.delivery_order_id", event.AggregateID),
	))
	defer span.End()

	logger := w.logger.WithFields(log.Fields{
		"outbox_id":         event.ID,
		"event_type":        event.EventType,
		"delivery_order_id": event.AggregateID,
	})

	attempts, err := w.publish(ctx, event)
	span.SetAttributes(attribute.Int("outbox.attempts", attempts))
	if err == nil {
		if markErr := w.repo.MarkSent(ctx, event.ID); markErr != nil {
			logger.WithError(markErr).Warn("mark outbox event as sent")
		}
		return true
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "publish failed")

	if ctx.Err() != nil {
		// Событие остаётся pending и будет взято после рестарта.
		return false
	}

	logger.WithError(err).WithField("attempts", attempts).Error("outbox event publish failed")
	w.metrics.RecordPublish(metrics.OutboxFailed)

	if w.dlq != nil {
		if dlqErr := w.sendToDLQ(ctx, event, attempts, err); dlqErr != nil {
			logger.WithError(dlqErr).Warn("publish outbox event to dlq")
			w.metrics.RecordPublish(metrics.OutboxDLQFailed)
		} else {
			w.metrics.RecordPublish(metrics.OutboxDLQ)
		}
	}
	if markErr := w.repo.MarkFailed(ctx, event.ID); markErr != nil {
		logger.WithError(markErr).Warn("mark outbox event as failed")
	}
	return false
}

// publish делает до maxAttempts попыток с экспоненциальной паузой.
func (w *Worker) publish(ctx context.Context, event domain.OutboxMessage) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		lastErr = w.publisher.Publish(ctx, event)
		if lastErr == nil {
			w.metrics.RecordPublish(metrics.OutboxSent)
			return attempt, nil
		}
		if attempt == w.maxAttempts {
			return attempt, fmt.Errorf("publish %s after %d attempts: %w", event.ID, attempt, lastErr)
		}
		w.metrics.RecordPublish(metrics.OutboxRetried)

		delay := w.retryBackoff(attempt)
		if delay == 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}
	return w.maxAttempts, lastErr
}

// retryBackoff: base, 2*base, 4*base ... не больше maxBackoff.
func (w *Worker) retryBackoff(attempt int) time.Duration {
	if w.retryBaseDelay <= 0 || attempt < 1 {
		return 0
	}
	delay := w.retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

func (w *Worker) sendToDLQ(ctx context.Context, event domain.OutboxMessage, attempts int, publishErr error) error {
	var payload json.RawMessage
	if len(event.Payload) > 0 {
		payload = json.RawMessage(event.Payload)
	}
	body, err := json.Marshal(DeadLetter{
		OutboxID:      event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       payload,
		Attempts:      attempts,
		PublishError:  publishErr.Error(),
		FailedAt:      w.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}

	letter := event
	letter.Payload = body
	return w.dlq.Publish(ctx, letter)
}

func (w *Worker) refreshBacklog(ctx context.Context) {
	stats, err := w.repo.Stats(ctx)
	if err != nil {
		w.logger.WithError(err).Debug("collect outbox backlog stats")
		return
	}
	w.metrics.SetBacklog(stats.PendingCount, stats.OldestPendingAt, w.now())
}
