package kafka

import (
	"context"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// producerHeaderCarrier пишет trace context в заголовки исходящего сообщения.
type producerHeaderCarrier struct {
	msg *sarama.ProducerMessage
}

func (c producerHeaderCarrier) Get(key string) string {
	for _, header := range c.msg.Headers {
		if string(header.Key) == key {
			return string(header.Value)
		}
	}
	return ""
}

func (c producerHeaderCarrier) Set(key, value string) {
	for i, header := range c.msg.Headers {
		if string(header.Key) == key {
			c.msg.Headers[i].Value = []byte(value)
			return
		}
	}
	c.msg.Headers = append(c.msg.Headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
}

func (c producerHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c.msg.Headers))
	for _, header := range c.msg.Headers {
		keys = append(keys, string(header.Key))
	}
	return keys
}

// consumerHeaderCarrier читает trace context из входящего сообщения.
type consumerHeaderCarrier struct {
	msg *sarama.ConsumerMessage
}

func (c consumerHeaderCarrier) Get(key string) string {
	return headerValue(c.msg.Headers, key)
}

func (c consumerHeaderCarrier) Set(string, string) {}

func (c consumerHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c.msg.Headers))
	for _, header := range c.msg.Headers {
		if header != nil {
			keys = append(keys, string(header.Key))
		}
	}
	return keys
}

func injectTraceContext(ctx context.Context, msg *sarama.ProducerMessage) {
	otel.GetTextMapPropagator().Inject(ctx, producerHeaderCarrier{msg: msg})
}

func extractTraceContext(ctx context.Context, msg *sarama.ConsumerMessage) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, consumerHeaderCarrier{msg: msg})
}

var (
	_ propagation.TextMapCarrier = producerHeaderCarrier{}
	_ propagation.TextMapCarrier = consumerHeaderCarrier{}
)
