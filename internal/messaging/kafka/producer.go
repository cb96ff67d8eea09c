package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

var errProducerClosed = errors.New("kafka producer is not initialized")

// ProducerOption настраивает sarama.Config до создания producer.
type ProducerOption func(*sarama.Config)

// WithCompression задаёт кодек сжатия; по умолчанию snappy.
func WithCompression(codec sarama.CompressionCodec) ProducerOption {
	return func(cfg *sarama.Config) { cfg.Producer.Compression = codec }
}

// WithSendTimeout ограничивает ожидание подтверждения брокера.
func WithSendTimeout(timeout time.Duration) ProducerOption {
	return func(cfg *sarama.Config) {
		if timeout > 0 {
			cfg.Producer.Timeout = timeout
		}
	}
}

// WithProducerMaxRetries задаёт число повторов внутри sarama.
func WithProducerMaxRetries(n int) ProducerOption {
	return func(cfg *sarama.Config) {
		if n >= 0 {
			cfg.Producer.Retry.Max = n
		}
	}
}

// Producer оборачивает синхронный idempotent-producer: Publish возвращается после подтверждения всеми ISR.
type Producer struct {
	sync   sarama.SyncProducer
	logger *log.Entry
}

// NewProducer подключается к брокерам. Пустой список брокеров считается ошибкой.
func NewProducer(brokers []string, clientID string, opts ...ProducerOption) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}
	sync, err := sarama.NewSyncProducer(brokers, newProducerConfig(clientID, opts...))
	if err != nil {
		return nil, fmt.Errorf("connect kafka producer to %s: %w", strings.Join(brokers, ","), err)
	}
	return NewProducerFromSync(sync, nil), nil
}

func newProducerConfig(clientID string, opts ...ProducerOption) *sarama.Config {
	cfg := sarama.NewConfig()
	if clientID = strings.TrimSpace(clientID); clientID != "" {
		cfg.ClientID = clientID
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Compression = sarama.CompressionSnappy
	// Idempotent producer требует ровно одного in-flight запроса на соединение.
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// NewProducerFromSync оборачивает готовый SyncProducer, например mocks.SyncProducer.
func NewProducerFromSync(sync sarama.SyncProducer, logger *log.Entry) *Producer {
	if logger == nil {
		logger = log.WithField("component", "kafka-producer")
	}
	return &Producer{sync: sync, logger: logger}
}

// PublishJSON сериализует value в JSON и публикует его.
func (p *Producer) PublishJSON(ctx context.Context, topic, key string, value any, headers ...sarama.RecordHeader) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode message for %s: %w", topic, err)
	}
	return p.Publish(ctx, topic, key, body, headers...)
}

// Publish отправляет сообщение и ждёт подтверждения. Trace context из ctx уходит в заголовки.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte, headers ...sarama.RecordHeader) error {
	if p == nil || p.sync == nil {
		return errProducerClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Headers:   append([]sarama.RecordHeader(nil), headers...),
		Timestamp: time.Now().UTC(),
	}
	injectTraceContext(ctx, msg)

	logger := p.logger.WithFields(log.Fields{"topic": topic, "key": key})
	partition, offset, err := p.sync.SendMessage(msg)
	if err != nil {
		logger.WithError(err).Warn("kafka send failed")
		return fmt.Errorf("send to %s: %w", topic, err)
	}
	logger.WithFields(log.Fields{"partition": partition, "offset": offset}).Debug("kafka message acknowledged")
	return nil
}

func (p *Producer) Close() error {
	if p == nil || p.sync == nil {
		return nil
	}
	if err := p.sync.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

func stringHeader(key, value string) sarama.RecordHeader {
	return sarama.RecordHeader{Key: []byte(key), Value: []byte(value)}
}
