// Package notification отправляет покупателю письмо о проведённой отгрузке.
// Отправка идёт в фоне и никогда не влияет на результат отгрузки.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
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
	defaultWorkers     = 2
	defaultQueueSize   = 256
	defaultSendTimeout = 10 * time.Second

	// ShipmentSubject — тема письма об отгрузке.
	ShipmentSubject = "Shipment notice"
)

// ShipmentBody формирует текст письма об отгрузке.
func ShipmentBody(customerName, orderNumber string) string {
	return fmt.Sprintf("Hello %s, your order %s has been shipped.", customerName, orderNumber)
}

// Option настраивает Dispatcher.
type Option func(*Dispatcher)

// WithWorkers задаёт число воркеров, разбирающих очередь.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workerCount = n
		}
	}
}

// WithQueueSize задаёт ёмкость очереди уведомлений.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.queueSize = n
		}
	}
}

// WithSendTimeout ограничивает время одной отправки.
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics задаёт метрики уведомлений.
func WithMetrics(m *metrics.NotificationMetrics) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithTracer задаёт трейсер.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Dispatcher) {
		if tracer != nil {
			d.tracer = tracer
		}
	}
}

// Dispatcher держит пул воркеров поверх буферизованной очереди заказов, по которым нужно уведомить покупателя.
type Dispatcher struct {
	salesOrders domain.SalesOrderRepository
	customers   domain.CustomerRepository
	mailer      domain.Mailer
	sender      string

	workerCount int
	queueSize   int
	sendTimeout time.Duration
	logger      *log.Entry
	metrics     *metrics.NotificationMetrics
	tracer      trace.Tracer

	queue chan string

	mu       sync.RWMutex
	stopped  bool
	workers  sync.WaitGroup
	detached sync.WaitGroup
}

// NewDispatcher создаёт и запускает диспетчер уведомлений.
func NewDispatcher(
	salesOrders domain.SalesOrderRepository,
	customers domain.CustomerRepository,
	mailer domain.Mailer,
	sender string,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		salesOrders: salesOrders,
		customers:   customers,
		mailer:      mailer,
		sender:      strings.TrimSpace(sender),
		workerCount: defaultWorkers,
		queueSize:   defaultQueueSize,
		sendTimeout: defaultSendTimeout,
		logger:      log.WithField("component", "notification-dispatcher"),
		tracer:      tracing.Tracer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.metrics == nil {
		d.metrics = metrics.NewNotificationMetrics()
	}

	d.queue = make(chan string, d.queueSize)
	for i := 0; i < d.workerCount; i++ {
		d.workers.Add(1)
		go d.runWorker()
	}
	return d
}

// Schedule ставит уведомление в очередь и сразу возвращает управление.
// При заполненной очереди уведомление отправляется отдельной горутиной.
func (d *Dispatcher) Schedule(salesOrderID string) {
	salesOrderID = strings.TrimSpace(salesOrderID)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.metrics.RecordResult(metrics.NotificationDropped)
		d.logger.WithField("sales_order_id", salesOrderID).Warn("notification dropped: dispatcher is stopped")
		return
	}

	select {
	case d.queue <- salesOrderID:
		d.metrics.SetQueueDepth(len(d.queue))
	default:
		d.metrics.RecordResult(metrics.NotificationDetached)
		d.detached.Add(1)
		go func() {
			defer d.detached.Done()
			d.deliver(salesOrderID)
		}()
	}
}

// Stop перестаёт принимать уведомления и ждёт отправки уже поставленных.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		d.detached.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.metrics.SetQueueDepth(0)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for pending notifications: %w", ctx.Err())
	}
}

func (d *Dispatcher) runWorker() {
	defer d.workers.Done()
	for salesOrderID := range d.queue {
		d.metrics.SetQueueDepth(len(d.queue))
		d.deliver(salesOrderID)
	}
}

func (d *Dispatcher) deliver(salesOrderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()
	d.NotifyCustomerOfShipment(ctx, salesOrderID)
}

// NotifyCustomerOfShipment отправляет письмо покупателю по заказу.
// Покупатель без e-mail пропускается; ошибки логируются и считаются, но не возвращаются.
func (d *Dispatcher) NotifyCustomerOfShipment(ctx context.Context, salesOrderID string) {
	ctx, span := d.tracer.Start(ctx, "notification.NotifyCustomerOfShipment",
		trace.WithAttributes(attribute.String("fulfillment.sales_order_id", salesOrderID)))
	defer span.End()

	logger := d.logger.WithField("sales_order_id", salesOrderID)

	result, err := d.notify(ctx, salesOrderID)
	d.metrics.RecordResult(result)
	span.SetAttributes(attribute.String("notification.result", result))

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		logger.WithError(err).Error("shipment notification failed")
	case result == metrics.NotificationSkipped:
		logger.Debug("shipment notification skipped: customer has no e-mail")
	default:
		logger.Info("shipment notification sent")
	}
}

func (d *Dispatcher) notify(ctx context.Context, salesOrderID string) (string, error) {
	order, err := d.salesOrders.Get(ctx, salesOrderID)
	if err != nil {
		return metrics.NotificationFailed, fmt.Errorf("load sales order: %w", err)
	}

	customer, err := d.customers.Get(ctx, order.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return metrics.NotificationSkipped, nil
		}
		return metrics.NotificationFailed, fmt.Errorf("load customer %s: %w", order.CustomerID, err)
	}
	if !customer.CanBeNotified() {
		return metrics.NotificationSkipped, nil
	}

	msg := domain.MailMessage{
		From:    d.sender,
		To:      strings.TrimSpace(customer.Email),
		Subject: ShipmentSubject,
		Body:    ShipmentBody(customer.Name, order.OrderNumber),
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		return metrics.NotificationFailed, fmt.Errorf("send shipment mail to customer %s: %w", customer.ID, err)
	}
	return metrics.NotificationSent, nil
}
