package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// OutboxPublisher отправляет события outbox в один топик в виде OutboxEnvelope.
type OutboxPublisher struct {
	producer *Producer
	topic    string
	now      func() time.Time
}

var _ domain.OutboxPublisher = (*OutboxPublisher)(nil)

// NewOutboxPublisher создаёт паблишер; при пустом topic используется TopicDeliveryEvents.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxPublisher {
	if topic == "" {
		topic = TopicDeliveryEvents
	}
	return &OutboxPublisher{producer: producer, topic: topic, now: time.Now}
}

// Publish использует id отгрузки как ключ партиционирования: события одной отгрузки идут по порядку.
// Тип события и id записи outbox дублируются в заголовках для маршрутизации без разбора тела.
func (p *OutboxPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil {
		return errProducerClosed
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}
	payload := json.RawMessage(event.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	return p.producer.PublishJSON(ctx, p.topic, key, OutboxEnvelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       payload,
		PublishedAt:   p.now().UTC(),
	},
		stringHeader(HeaderEventType, event.EventType),
		stringHeader(HeaderOutboxID, event.ID),
	)
}
