package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// MailPublisher передаёт письма внешнему почтовому сервису через Kafka.
type MailPublisher struct {
	producer *Producer
	topic    string
}

// NewMailPublisher создаёт MailPublisher; при пустом topic используется TopicMailOutgoing.
func NewMailPublisher(producer *Producer, topic string) *MailPublisher {
	if topic == "" {
		topic = TopicMailOutgoing
	}
	return &MailPublisher{producer: producer, topic: topic}
}

// Send публикует письмо с ключом по адресу получателя.
func (p *MailPublisher) Send(ctx context.Context, msg domain.MailMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka mail publisher is not initialized")
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return fmt.Errorf("mail recipient is required")
	}

	return p.producer.PublishJSON(ctx, p.topic, to, MailEnvelope{
		From:     msg.From,
		To:       to,
		Subject:  msg.Subject,
		Body:     msg.Body,
		QueuedAt: time.Now().UTC(),
	})
}

var _ domain.Mailer = (*MailPublisher)(nil)
