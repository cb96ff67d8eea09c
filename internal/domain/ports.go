package domain

import (
	"context"
	"time"
)

// StockLedger — доступ к складским партиям внутри транзакции отгрузки.
type StockLedger interface {
	// FindLot ищет партию по точному совпадению ключа; ErrStockNotFound, если её нет.
	FindLot(ctx context.Context, key LotKey) (StockLot, error)
	// ApplyDecrement списывает qty с партии; хранилище само не допускает отрицательный остаток.
	ApplyDecrement(ctx context.Context, lot StockLot, qty int64, operator string) (StockLot, error)
}

// StockReader читает остатки вне транзакции.
type StockReader interface {
	FindLot(ctx context.Context, key LotKey) (StockLot, error)
}

// DeliveryRecordWriter создаёт заголовок и строки отгрузки.
type DeliveryRecordWriter interface {
	CreateHeader(ctx context.Context, salesOrderID, operator string) (DeliveryOrder, error)
	CreateLines(ctx context.Context, lines []DeliveryLine) ([]DeliveryLine, error)
}

// DeliveryReader читает проведённые отгрузки.
type DeliveryReader interface {
	// Get возвращает отгрузку или ErrDeliveryNotFound.
	Get(ctx context.Context, id string) (Delivery, error)
	ListBySalesOrder(ctx context.Context, salesOrderID string) ([]Delivery, error)
}

// OutboxWriter ставит событие в outbox; внутри транзакции атомарно с отгрузкой.
type OutboxWriter interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
}

// TxRepositories — репозитории, привязанные к одной транзакции.
type TxRepositories interface {
	Deliveries() DeliveryRecordWriter
	Stock() StockLedger
	Outbox() OutboxWriter
}

// UnitOfWork выполняет fn в одной транзакции: ошибка откатывает всё, nil фиксирует.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// SalesOrderRepository читает заказы покупателей.
type SalesOrderRepository interface {
	Get(ctx context.Context, id string) (SalesOrder, error)
}

// CustomerRepository читает покупателей.
type CustomerRepository interface {
	Get(ctx context.Context, id string) (Customer, error)
}

// DeliveryValidator — внешняя проверка запроса на отгрузку против заказа покупателя.
type DeliveryValidator interface {
	CheckDelivery(ctx context.Context, req DeliveryRequest) error
}

// Mailer отправляет письмо.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository хранит события до публикации.
type OutboxRepository interface {
	OutboxWriter
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(ctx context.Context, key string) (IdempotencyRecord, error)
	MarkDone(ctx context.Context, key string, responseBody []byte, code int) error
	MarkFailed(ctx context.Context, key string, responseBody []byte, code int) error
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

const (
	// AggregateTypeDelivery — тип агрегата для событий отгрузки.
	AggregateTypeDelivery = "delivery"
	// EventTypeDeliveryShipped — отгрузка проведена и остатки списаны.
	EventTypeDeliveryShipped = "DeliveryShipped"
)
