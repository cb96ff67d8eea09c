package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/app"
	"github.com/vladislavdragonenkov/fulfillment/internal/messaging/kafka"
)

const (
	defaultReplayLimit = 100
	defaultIdleTimeout = 2 * time.Second
	replayClientID     = "fulfillment-dlq-reprocess"
)

type config struct {
	brokers     []string
	sourceTopic string
	targetTopic string
	limit       int
	execute     bool
	fromNewest  bool
	idleTimeout time.Duration
}

type replayMessage struct {
	key            string
	value          []byte
	idempotencyKey string
}

type offsetClient interface {
	GetOffset(topic string, partition int32, time int64) (int64, error)
	Partitions(topic string) ([]int32, error)
	Close() error
}

type partitionConsumer interface {
	Messages() <-chan *sarama.ConsumerMessage
	Errors() <-chan *sarama.ConsumerError
	Close() error
}

type partitionConsumerSource interface {
	ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error)
	Close() error
}

// replayPublisher совпадает с *kafka.Producer.
type replayPublisher interface {
	Publish(ctx context.Context, topic, key string, value []byte, headers ...sarama.RecordHeader) error
	Close() error
}

type saramaConsumerAdapter struct {
	consumer sarama.Consumer
}

func (a saramaConsumerAdapter) ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error) {
	pc, err := a.consumer.ConsumePartition(topic, partition, offset)
	if err != nil {
		return nil, err
	}
	return pc, nil
}

func (a saramaConsumerAdapter) Close() error {
	if a.consumer == nil {
		return nil
	}
	return a.consumer.Close()
}

var newReplayDependencies = func(cfg config) (offsetClient, partitionConsumerSource, replayPublisher, error) {
	consumerConfig := sarama.NewConfig()
	consumerConfig.ClientID = replayClientID
	consumerConfig.Consumer.Return.Errors = true

	client, err := sarama.NewClient(cfg.brokers, consumerConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create kafka client: %w", err)
	}

	rawConsumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	consumer := saramaConsumerAdapter{consumer: rawConsumer}

	if !cfg.execute {
		return client, consumer, nil, nil
	}

	producer, err := kafka.NewProducer(cfg.brokers, replayClientID, kafka.WithProducerMaxRetries(5))
	if err != nil {
		_ = consumer.Close()
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return client, consumer, producer, nil
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	cfg, err := readConfig(os.Args[1:], os.LookupEnv)
	if err != nil {
		fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fail("dlq replay failed: %v", err)
	}
}

func readConfig(args []string, lookup app.EnvLookup) (config, error) {
	var (
		brokersRaw string
		cfg        config
	)

	fs := flag.NewFlagSet("dlq-reprocess", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&brokersRaw, "brokers", "", "Kafka brokers as comma-separated list (fallback: "+app.EnvKafkaBrokers+")")
	fs.StringVar(&cfg.sourceTopic, "source-topic", "", "DLQ source topic (fallback: "+app.EnvKafkaDLQTopic+")")
	fs.StringVar(&cfg.targetTopic, "target-topic", "", "delivery requests topic (fallback: "+app.EnvKafkaRequestsTopic+")")
	fs.IntVar(&cfg.limit, "limit", defaultReplayLimit, "max number of messages to scan/replay")
	fs.BoolVar(&cfg.execute, "execute", false, "execute replay; default is dry-run")
	fs.BoolVar(&cfg.fromNewest, "from-newest", false, "scan latest messages first (bounded by limit)")
	fs.DurationVar(&cfg.idleTimeout, "idle-timeout", defaultIdleTimeout, "idle timeout per partition")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	brokersRaw = withFallback(brokersRaw, lookup, app.EnvKafkaBrokers, "")
	cfg.sourceTopic = withFallback(cfg.sourceTopic, lookup, app.EnvKafkaDLQTopic, kafka.TopicDeadLetterQueue)
	cfg.targetTopic = withFallback(cfg.targetTopic, lookup, app.EnvKafkaRequestsTopic, kafka.TopicDeliveryRequests)

	cfg.brokers = parseBrokers(brokersRaw)
	if len(cfg.brokers) == 0 {
		return config{}, fmt.Errorf("kafka brokers are required (-brokers or %s)", app.EnvKafkaBrokers)
	}
	if cfg.sourceTopic == cfg.targetTopic {
		return config{}, errors.New("source-topic and target-topic must differ")
	}
	if cfg.limit <= 0 {
		return config{}, errors.New("limit must be > 0")
	}
	if cfg.idleTimeout <= 0 {
		return config{}, errors.New("idle-timeout must be > 0")
	}

	return cfg, nil
}

// withFallback: флаг, затем переменная окружения, затем значение по умолчанию.
func withFallback(value string, lookup app.EnvLookup, env, def string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	if lookup != nil {
		if v, ok := lookup(env); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return def
}

func parseBrokers(raw string) []string {
	chunks := strings.Split(raw, ",")
	brokers := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		broker := strings.TrimSpace(chunk)
		if broker == "" {
			continue
		}
		brokers = append(brokers, broker)
	}
	return brokers
}

func run(ctx context.Context, cfg config) error {
	log.WithFields(log.Fields{
		"source_topic": cfg.sourceTopic,
		"target_topic": cfg.targetTopic,
		"limit":        cfg.limit,
		"execute":      cfg.execute,
		"from_newest":  cfg.fromNewest,
	}).Info("starting dlq replay")

	client, consumer, producer, err := newReplayDependencies(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if producer != nil {
			_ = producer.Close()
		}
		if consumer != nil {
			_ = consumer.Close()
		}
		if client != nil {
			_ = client.Close()
		}
	}()

	return runReplay(ctx, cfg, client, consumer, producer)
}

type partitionStats struct {
	processed int
	replayed  int
	skipped   int
}

func (s *partitionStats) add(other partitionStats) {
	s.processed += other.processed
	s.replayed += other.replayed
	s.skipped += other.skipped
}

func runReplay(ctx context.Context, cfg config, client offsetClient, consumer partitionConsumerSource, producer replayPublisher) error {
	if client == nil || consumer == nil {
		return errors.New("kafka client and consumer are required")
	}
	if cfg.execute && producer == nil {
		return errors.New("producer is required in execute mode")
	}

	partitions, err := client.Partitions(cfg.sourceTopic)
	if err != nil {
		return fmt.Errorf("get partitions for topic %s: %w", cfg.sourceTopic, err)
	}
	if len(partitions) == 0 {
		log.WithField("topic", cfg.sourceTopic).Warn("source topic has no partitions")
		return nil
	}
	sort.Slice(partitions, func(i, j int) bool { return partitions[i] < partitions[j] })

	var total partitionStats
	for _, partition := range partitions {
		if total.processed >= cfg.limit {
			break
		}
		stats, err := processPartition(ctx, consumer, client, producer, cfg, partition, cfg.limit-total.processed)
		total.add(stats)
		if err != nil {
			return err
		}
	}

	mode := "dry-run"
	if cfg.execute {
		mode = "execute"
	}
	log.WithFields(log.Fields{
		"mode":      mode,
		"processed": total.processed,
		"replayed":  total.replayed,
		"skipped":   total.skipped,
	}).Info("dlq replay finished")

	return nil
}

func processPartition(
	ctx context.Context,
	consumer partitionConsumerSource,
	client offsetClient,
	producer replayPublisher,
	cfg config,
	partition int32,
	limit int,
) (partitionStats, error) {
	var stats partitionStats
	if limit <= 0 {
		return stats, nil
	}

	oldest, err := client.GetOffset(cfg.sourceTopic, partition, sarama.OffsetOldest)
	if err != nil {
		return stats, fmt.Errorf("get oldest offset for partition %d: %w", partition, err)
	}
	newest, err := client.GetOffset(cfg.sourceTopic, partition, sarama.OffsetNewest)
	if err != nil {
		return stats, fmt.Errorf("get newest offset for partition %d: %w", partition, err)
	}
	if newest <= oldest {
		return stats, nil
	}

	startOffset := oldest
	if cfg.fromNewest {
		startOffset = max(newest-int64(limit), oldest)
	}

	pc, err := consumer.ConsumePartition(cfg.sourceTopic, partition, startOffset)
	if err != nil {
		return stats, fmt.Errorf("consume partition %d: %w", partition, err)
	}
	defer func() { _ = pc.Close() }()

	idleTimer := time.NewTimer(cfg.idleTimeout)
	defer idleTimer.Stop()

	for stats.processed < limit {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case err := <-pc.Errors():
			if err != nil {
				return stats, fmt.Errorf("partition %d consumer error: %w", partition, err)
			}
		case msg, ok := <-pc.Messages():
			if !ok || msg == nil {
				return stats, nil
			}
			idleTimer.Reset(cfg.idleTimeout)

			if msg.Offset >= newest {
				return stats, nil
			}
			stats.processed++

			entry := log.WithFields(log.Fields{"partition": msg.Partition, "offset": msg.Offset})
			replay, reason := extractReplayMessage(msg, cfg.targetTopic)
			if reason != "" {
				stats.skipped++
				entry.WithField("reason", reason).Info("skip dlq message")
			} else if cfg.execute {
				if err := publishReplay(ctx, producer, cfg.targetTopic, replay); err != nil {
					return stats, fmt.Errorf("publish replay message: %w", err)
				}
				stats.replayed++
			} else {
				entry.WithFields(log.Fields{
					"target_topic":    cfg.targetTopic,
					"key":             replay.key,
					"idempotency_key": replay.idempotencyKey,
				}).Info("dlq replay candidate")
				stats.replayed++
			}

			if msg.Offset+1 >= newest {
				return stats, nil
			}
		case <-idleTimer.C:
			return stats, nil
		}
	}

	return stats, nil
}

// extractReplayMessage отбирает запросы на отгрузку, упавшие по временной причине.
// Непустой reason означает, что сообщение проигрывать нельзя.
func extractReplayMessage(msg *sarama.ConsumerMessage, targetTopic string) (replayMessage, string) {
	if origin := kafka.HeaderValue(msg, kafka.HeaderOriginalTopic); origin != targetTopic {
		return replayMessage{}, fmt.Sprintf("original topic %q", origin)
	}
	switch kind := kafka.HeaderValue(msg, kafka.HeaderFailureKind); kind {
	case kafka.FailureKindTransient:
	case kafka.FailureKindPermanent:
		return replayMessage{}, "permanent failure"
	default:
		return replayMessage{}, fmt.Sprintf("unknown failure kind %q", kind)
	}
	if len(msg.Value) == 0 {
		return replayMessage{}, "empty payload"
	}
	if _, err := kafka.ParseDeliveryRequest(msg); err != nil {
		return replayMessage{}, err.Error()
	}

	return replayMessage{
		key:            string(msg.Key),
		value:          msg.Value,
		idempotencyKey: kafka.HeaderValue(msg, kafka.HeaderIdempotencyKey),
	}, ""
}

// publishReplay возвращает запрос в исходный топик с обнулённым счётчиком повторов.
func publishReplay(ctx context.Context, producer replayPublisher, topic string, msg replayMessage) error {
	if producer == nil {
		return errors.New("producer is nil")
	}

	headers := []sarama.RecordHeader{
		{Key: []byte(kafka.HeaderRetryCount), Value: []byte("0")},
	}
	if msg.idempotencyKey != "" {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(kafka.HeaderIdempotencyKey),
			Value: []byte(msg.idempotencyKey),
		})
	}
	return producer.Publish(ctx, topic, msg.key, msg.value, headers...)
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
