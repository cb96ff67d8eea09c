// Package fulfillment проводит отгрузку по заказу покупателя: проверка запроса,
// запись отгрузки и списание остатков одной транзакцией, затем уведомление покупателя.
package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/metrics"
	"github.com/vladislavdragonenkov/fulfillment/internal/tracing"
)

// Notifier принимает уведомление о проведённой отгрузке. Schedule не должен блокировать.
type Notifier interface {
	Schedule(salesOrderID string)
}

// Service — оркестратор отгрузки.
type Service struct {
	validator  domain.DeliveryValidator
	uow        domain.UnitOfWork
	deliveries domain.DeliveryReader
	stock      domain.StockReader

	notifier Notifier
	retry    RetryConfig
	logger   *log.Entry
	metrics  *metrics.FulfillmentMetrics
	tracer   trace.Tracer
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option настраивает Service.
type Option func(*Service)

// WithNotifier задаёт получателя уведомлений после коммита.
func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithRetryConfig задаёт повтор транзакции при конфликте хранилища.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(s *Service) {
		s.retry = cfg.normalized()
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics задаёт метрики (например, с изолированным реестром в тестах).
func WithMetrics(m *metrics.FulfillmentMetrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer задаёт трейсер.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewService создаёт оркестратор отгрузки.
func NewService(
	validator domain.DeliveryValidator,
	uow domain.UnitOfWork,
	deliveries domain.DeliveryReader,
	stock domain.StockReader,
	opts ...Option,
) *Service {
	s := &Service{
		validator:  validator,
		uow:        uow,
		deliveries: deliveries,
		stock:      stock,
		retry:      DefaultRetryConfig(),
		logger:     log.New().WithField("component", "fulfillment"),
		tracer:     tracing.Tracer(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewFulfillmentMetrics()
	}
	return s
}

// FulfillDelivery проводит отгрузку и возвращает идентификатор созданной отгрузки.
//
// Заголовок, строки, списания и событие outbox фиксируются одной транзакцией:
// первая же ошибка по строке откатывает всё, последующие строки не проверяются.
// Уведомление покупателя ставится в очередь только после коммита и на результат не влияет.
func (s *Service) FulfillDelivery(ctx context.Context, req domain.DeliveryRequest, operatorID string) (string, error) {
	start := time.Now()
	operatorID = strings.TrimSpace(operatorID)
	req.SalesOrderID = strings.TrimSpace(req.SalesOrderID)

	ctx, span := s.tracer.Start(ctx, "fulfillment.FulfillDelivery", trace.WithAttributes(
		attribute.String("fulfillment.sales_order_id", req.SalesOrderID),
		attribute.String("fulfillment.operator", operatorID),
		attribute.Int("fulfillment.items", len(req.Items)),
	))
	defer span.End()

	s.metrics.RecordStarted()
	defer func() {
		s.metrics.RecordFinished(time.Since(start))
	}()

	logger := s.logger.WithFields(log.Fields{
		"sales_order_id": req.SalesOrderID,
		"operator":       operatorID,
	})

	result, err := s.fulfill(ctx, req, operatorID)
	if err != nil {
		reason := failureReason(err)
		s.metrics.RecordFailed(reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)

		entry := logger.WithError(err).WithField("reason", reason)
		if reason == metrics.ReasonInternal {
			entry.Error("delivery fulfillment failed")
		} else {
			entry.Warn("delivery rejected")
		}
		return "", err
	}

	s.metrics.RecordCompleted(len(result.lines), result.units)
	span.SetAttributes(attribute.String("fulfillment.delivery_order_id", result.order.ID))
	logger.WithFields(log.Fields{
		"delivery_order_id": result.order.ID,
		"lines":             len(result.lines),
		"units":             result.units,
	}).Info("delivery fulfilled")

	if s.notifier != nil {
		s.notifier.Schedule(req.SalesOrderID)
	}

	return result.order.ID, nil
}

type fulfillResult struct {
	order domain.DeliveryOrder
	lines []domain.DeliveryLine
	units int64
}

func (s *Service) fulfill(ctx context.Context, req domain.DeliveryRequest, operatorID string) (fulfillResult, error) {
	if operatorID == "" {
		return fulfillResult{}, domain.ErrOperatorRequired
	}
	if err := s.validator.CheckDelivery(ctx, req); err != nil {
		return fulfillResult{}, err
	}

	var result fulfillResult
	err := s.withTxRetry(ctx, req.SalesOrderID, func() error {
		result = fulfillResult{}
		return s.uow.WithinTx(ctx, func(ctx context.Context, repos domain.TxRepositories) error {
			var err error
			result, err = s.writeDelivery(ctx, repos, req, operatorID)
			return err
		})
	})
	if err != nil {
		return fulfillResult{}, err
	}
	return result, nil
}

// writeDelivery выполняется внутри транзакции.
func (s *Service) writeDelivery(ctx context.Context, repos domain.TxRepositories, req domain.DeliveryRequest, operatorID string) (fulfillResult, error) {
	order, err := repos.Deliveries().CreateHeader(ctx, req.SalesOrderID, operatorID)
	if err != nil {
		return fulfillResult{}, fmt.Errorf("create delivery header: %w", err)
	}

	lines, err := repos.Deliveries().CreateLines(ctx, req.BuildLines(order.ID))
	if err != nil {
		return fulfillResult{}, fmt.Errorf("create delivery lines: %w", err)
	}

	var units int64
	for _, line := range lines {
		if err := s.decrementLot(ctx, repos.Stock(), line, operatorID); err != nil {
			return fulfillResult{}, err
		}
		units += line.Quantity
	}

	payload, err := json.Marshal(domain.NewDeliveryShippedEvent(order, lines))
	if err != nil {
		return fulfillResult{}, fmt.Errorf("marshal delivery shipped event: %w", err)
	}
	if _, err := repos.Outbox().Enqueue(ctx, domain.OutboxMessage{
		AggregateType: domain.AggregateTypeDelivery,
		AggregateID:   order.ID,
		EventType:     domain.EventTypeDeliveryShipped,
		Payload:       payload,
	}); err != nil {
		return fulfillResult{}, fmt.Errorf("enqueue delivery shipped event: %w", err)
	}

	return fulfillResult{order: order, lines: lines, units: units}, nil
}

func (s *Service) decrementLot(ctx context.Context, ledger domain.StockLedger, line domain.DeliveryLine, operatorID string) error {
	key := line.LotKey()

	lot, err := ledger.FindLot(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrStockNotFound) {
			return domain.NewStockNotFoundError(key)
		}
		return fmt.Errorf("find stock lot %s: %w", key, err)
	}
	if !lot.CanDeliver(line.Quantity) {
		return domain.NewInsufficientStockError(key, line.Quantity, lot.Count)
	}

	if _, err := ledger.ApplyDecrement(ctx, lot, line.Quantity, operatorID); err != nil {
		var stockErr *domain.StockError
		if errors.As(err, &stockErr) {
			return stockErr
		}
		return fmt.Errorf("decrement stock lot %s: %w", key, err)
	}
	return nil
}

// GetDelivery возвращает отгрузку со строками.
func (s *Service) GetDelivery(ctx context.Context, id string) (domain.Delivery, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Delivery{}, domain.ErrDeliveryNotFound
	}
	return s.deliveries.Get(ctx, id)
}

// ListDeliveries возвращает отгрузки по заказу покупателя в порядке создания.
func (s *Service) ListDeliveries(ctx context.Context, salesOrderID string) ([]domain.Delivery, error) {
	salesOrderID = strings.TrimSpace(salesOrderID)
	if salesOrderID == "" {
		return nil, domain.NewValidationError(domain.ErrSalesOrderRequired)
	}
	return s.deliveries.ListBySalesOrder(ctx, salesOrderID)
}

// GetStockLot возвращает текущий остаток партии.
func (s *Service) GetStockLot(ctx context.Context, key domain.LotKey) (domain.StockLot, error) {
	key = domain.NewLotKey(key.ProductID, key.WarehouseID, key.ProductionDate)
	if !key.Valid() {
		return domain.StockLot{}, domain.NewValidationError(domain.ErrDeliveryItemInvalid)
	}

	lot, err := s.stock.FindLot(ctx, key)
	if errors.Is(err, domain.ErrStockNotFound) {
		return domain.StockLot{}, domain.NewStockNotFoundError(key)
	}
	return lot, err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrOperatorRequired):
		return metrics.ReasonOperatorMissing
	case domain.IsValidation(err):
		return metrics.ReasonValidation
	case errors.Is(err, domain.ErrStockNotFound):
		return metrics.ReasonStockNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.ReasonInsufficient
	case domain.IsTxConflict(err):
		return metrics.ReasonTxConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ReasonCanceled
	default:
		return metrics.ReasonInternal
	}
}
