package kafka

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// Topics для Kafka
const (
	TopicDeliveryEvents   = "fulfillment.delivery.events"
	TopicDeliveryRequests = "fulfillment.delivery.requests"
	TopicMailOutgoing     = "fulfillment.mail.outgoing"
	TopicDeadLetterQueue  = "fulfillment.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount     = "x-retry-count"
	HeaderOriginalTopic  = "x-original-topic"
	HeaderErrorMessage   = "x-error-message"
	HeaderFailedAt       = "x-failed-at"
	HeaderIdempotencyKey = "x-idempotency-key"
	HeaderEventType      = "x-event-type"
	HeaderOutboxID       = "x-outbox-id"
	HeaderFailureKind    = "x-failure-kind"
)

// Значения HeaderFailureKind. Повторно проигрывать из DLQ имеет смысл только transient.
const (
	FailureKindPermanent = "permanent"
	FailureKindTransient = "transient"
)

// FailureKind классифицирует ошибку обработки для заголовка DLQ.
func FailureKind(err error) string {
	if IsPermanent(err) {
		return FailureKindPermanent
	}
	return FailureKindTransient
}

// HeaderValue возвращает значение заголовка key или пустую строку.
func HeaderValue(message *sarama.ConsumerMessage, key string) string {
	if message == nil {
		return ""
	}
	return headerValue(message.Headers, key)
}

// OutboxEnvelope — формат события из outbox в топике доставок.
type OutboxEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// MailEnvelope — письмо, переданное во внешний почтовый сервис через Kafka.
type MailEnvelope struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	QueuedAt time.Time `json:"queued_at"`
}

// DeliveryRequestItem описывает позицию входящего запроса на отгрузку.
type DeliveryRequestItem struct {
	ProductID      string `json:"product_id"`
	WarehouseID    string `json:"warehouse_id"`
	ProductionDate string `json:"production_date"`
	Quantity       int64  `json:"quantity"`
}

// DeliveryRequestMessage — запрос на отгрузку из топика fulfillment.delivery.requests.
type DeliveryRequestMessage struct {
	SalesOrderID string                `json:"sales_order_id"`
	OperatorID   string                `json:"operator_id"`
	Items        []DeliveryRequestItem `json:"items"`
}

// ToDomain переводит сообщение в доменный запрос. Дата производства передаётся как YYYY-MM-DD.
func (m DeliveryRequestMessage) ToDomain() (domain.DeliveryRequest, error) {
	req := domain.DeliveryRequest{
		SalesOrderID: strings.TrimSpace(m.SalesOrderID),
		Items:        make([]domain.DeliveryItem, 0, len(m.Items)),
	}
	for i, item := range m.Items {
		date, err := domain.ParseProductionDate(item.ProductionDate)
		if err != nil {
			return domain.DeliveryRequest{}, fmt.Errorf("item %d: %w", i, err)
		}
		req.Items = append(req.Items, domain.DeliveryItem{
			ProductID:      item.ProductID,
			WarehouseID:    item.WarehouseID,
			ProductionDate: date,
			Quantity:       item.Quantity,
		})
	}
	return req, nil
}

// ParseDeliveryRequest парсит DeliveryRequestMessage из сообщения
func ParseDeliveryRequest(message *sarama.ConsumerMessage) (*DeliveryRequestMessage, error) {
	var request DeliveryRequestMessage
	if err := json.Unmarshal(message.Value, &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal delivery request: %w", err)
	}
	return &request, nil
}

// ParseOutboxEnvelope парсит событие outbox из сообщения
func ParseOutboxEnvelope(message *sarama.ConsumerMessage) (*OutboxEnvelope, error) {
	var envelope OutboxEnvelope
	if err := json.Unmarshal(message.Value, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outbox envelope: %w", err)
	}
	return &envelope, nil
}

func headerValue(headers []*sarama.RecordHeader, key string) string {
	for _, header := range headers {
		if header != nil && string(header.Key) == key {
			return string(header.Value)
		}
	}
	return ""
}
