package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"

	IdempotencyDriverRedis = "redis"

	MailTransportLog   = "log"
	MailTransportSMTP  = "smtp"
	MailTransportKafka = "kafka"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Переменные окружения сервиса.
const (
	EnvGRPCAddr                    = "FULFILLMENT_GRPC_ADDR"
	EnvMetricsAddr                 = "FULFILLMENT_METRICS_ADDR"
	EnvLogFormat                   = "FULFILLMENT_LOG_FORMAT"
	EnvLogLevel                    = "FULFILLMENT_LOG_LEVEL"
	EnvStorageDriver               = "FULFILLMENT_STORAGE_DRIVER"
	EnvPostgresDSN                 = "FULFILLMENT_POSTGRES_DSN"
	EnvPostgresAutoMigrate         = "FULFILLMENT_POSTGRES_AUTO_MIGRATE"
	EnvTxMaxAttempts               = "FULFILLMENT_TX_MAX_ATTEMPTS"
	EnvKafkaBrokers                = "FULFILLMENT_KAFKA_BROKERS"
	EnvKafkaClientID               = "FULFILLMENT_KAFKA_CLIENT_ID"
	EnvKafkaEventsTopic            = "FULFILLMENT_KAFKA_EVENTS_TOPIC"
	EnvKafkaRequestsTopic          = "FULFILLMENT_KAFKA_REQUESTS_TOPIC"
	EnvKafkaMailTopic              = "FULFILLMENT_KAFKA_MAIL_TOPIC"
	EnvKafkaDLQTopic               = "FULFILLMENT_KAFKA_DLQ_TOPIC"
	EnvKafkaConsumerGroup          = "FULFILLMENT_KAFKA_CONSUMER_GROUP"
	EnvKafkaConsumerEnabled        = "FULFILLMENT_KAFKA_CONSUMER_ENABLED"
	EnvMailTransport               = "FULFILLMENT_MAIL_TRANSPORT"
	EnvMailFrom                    = "FULFILLMENT_MAIL_FROM"
	EnvSMTPHost                    = "FULFILLMENT_SMTP_HOST"
	EnvSMTPPort                    = "FULFILLMENT_SMTP_PORT"
	EnvSMTPUsername                = "FULFILLMENT_SMTP_USERNAME"
	EnvSMTPPassword                = "FULFILLMENT_SMTP_PASSWORD"
	EnvNotificationWorkers         = "FULFILLMENT_NOTIFICATION_WORKERS"
	EnvNotificationQueueSize       = "FULFILLMENT_NOTIFICATION_QUEUE_SIZE"
	EnvOutboxPollInterval          = "FULFILLMENT_OUTBOX_POLL_INTERVAL"
	EnvOutboxBatchSize             = "FULFILLMENT_OUTBOX_BATCH_SIZE"
	EnvOutboxMaxAttempts           = "FULFILLMENT_OUTBOX_MAX_ATTEMPTS"
	EnvOutboxRetryDelay            = "FULFILLMENT_OUTBOX_RETRY_DELAY"
	EnvOutboxMaxPending            = "FULFILLMENT_OUTBOX_MAX_PENDING"
	EnvIdempotencyDriver           = "FULFILLMENT_IDEMPOTENCY_DRIVER"
	EnvRedisAddr                   = "FULFILLMENT_REDIS_ADDR"
	EnvIdempotencyCleanupInterval  = "FULFILLMENT_IDEMPOTENCY_CLEANUP_INTERVAL"
	EnvIdempotencyCleanupBatchSize = "FULFILLMENT_IDEMPOTENCY_CLEANUP_BATCH_SIZE"
	EnvOTLPEndpoint                = "FULFILLMENT_OTLP_ENDPOINT"
	EnvOTLPInsecure                = "FULFILLMENT_OTLP_INSECURE"
	EnvTraceSampleRatio            = "FULFILLMENT_TRACE_SAMPLE_RATIO"
)

// Config описывает настройки запуска сервиса отгрузок.
type Config struct {
	GRPCAddr    string
	MetricsAddr string

	LogFormat string
	LogLevel  string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	// TxMaxAttempts: сколько раз проводить транзакцию отгрузки при конфликте.
	TxMaxAttempts int

	// KafkaBrokers — список брокеров через запятую; пустое значение отключает Kafka.
	KafkaBrokers         string
	KafkaClientID        string
	KafkaEventsTopic     string
	KafkaRequestsTopic   string
	KafkaMailTopic       string
	KafkaDLQTopic        string
	KafkaConsumerGroup   string
	KafkaConsumerEnabled bool

	MailTransport string
	MailFrom      string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string

	NotificationWorkers   int
	NotificationQueueSize int

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	// OutboxMaxPending задаёт порог backlog для readiness; 0 отключает проверку.
	OutboxMaxPending int

	// IdempotencyDriver — memory|postgres|redis; пустое значение совпадает со StorageDriver.
	IdempotencyDriver           string
	RedisAddr                   string
	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int

	OTLPEndpoint     string
	OTLPInsecure     bool
	TraceSampleRatio float64
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:                    ":50051",
		MetricsAddr:                 ":9090",
		LogFormat:                   LogFormatText,
		LogLevel:                    "info",
		StorageDriver:               StorageDriverMemory,
		PostgresAutoMigrate:         true,
		TxMaxAttempts:               3,
		KafkaClientID:               "fulfillment-service",
		KafkaEventsTopic:            "fulfillment.delivery.events",
		KafkaRequestsTopic:          "fulfillment.delivery.requests",
		KafkaMailTopic:              "fulfillment.mail.outgoing",
		KafkaDLQTopic:               "fulfillment.dlq",
		KafkaConsumerGroup:          "fulfillment-service",
		MailTransport:               MailTransportLog,
		MailFrom:                    "noreply@fulfillment.local",
		SMTPPort:                    25,
		NotificationWorkers:         2,
		NotificationQueueSize:       256,
		OutboxPollInterval:          time.Second,
		OutboxBatchSize:             100,
		OutboxMaxAttempts:           3,
		OutboxRetryDelay:            100 * time.Millisecond,
		OutboxMaxPending:            1000,
		IdempotencyCleanupInterval:  time.Hour,
		IdempotencyCleanupBatchSize: 500,
		TraceSampleRatio:            1,
	}
}

// idempotencyDriver возвращает фактический драйвер хранилища ключей идемпотентности.
func (c Config) idempotencyDriver() string {
	if c.IdempotencyDriver == "" {
		return c.StorageDriver
	}
	return c.IdempotencyDriver
}

// EnvLookup совместим с os.LookupEnv.
type EnvLookup func(key string) (string, bool)

// LoadConfigFromEnv читает конфигурацию из окружения процесса.
func LoadConfigFromEnv() (Config, []error) {
	return ReadConfig(os.LookupEnv)
}

// ReadConfig применяет переопределения поверх DefaultConfig.
// Некорректное значение оставляет значение по умолчанию и добавляет предупреждение.
func ReadConfig(lookup EnvLookup) (Config, []error) {
	cfg := DefaultConfig()
	r := &envReader{lookup: lookup}

	r.str(EnvGRPCAddr, &cfg.GRPCAddr)
	r.str(EnvMetricsAddr, &cfg.MetricsAddr)
	r.oneOf(EnvLogFormat, &cfg.LogFormat, LogFormatText, LogFormatJSON)
	r.str(EnvLogLevel, &cfg.LogLevel)
	r.oneOf(EnvStorageDriver, &cfg.StorageDriver, StorageDriverMemory, StorageDriverPostgres)
	r.str(EnvPostgresDSN, &cfg.PostgresDSN)
	r.boolean(EnvPostgresAutoMigrate, &cfg.PostgresAutoMigrate)
	r.integer(EnvTxMaxAttempts, &cfg.TxMaxAttempts, positiveInt, "must be > 0")

	r.str(EnvKafkaBrokers, &cfg.KafkaBrokers)
	r.str(EnvKafkaClientID, &cfg.KafkaClientID)
	r.str(EnvKafkaEventsTopic, &cfg.KafkaEventsTopic)
	r.str(EnvKafkaRequestsTopic, &cfg.KafkaRequestsTopic)
	r.str(EnvKafkaMailTopic, &cfg.KafkaMailTopic)
	r.str(EnvKafkaDLQTopic, &cfg.KafkaDLQTopic)
	r.str(EnvKafkaConsumerGroup, &cfg.KafkaConsumerGroup)
	r.boolean(EnvKafkaConsumerEnabled, &cfg.KafkaConsumerEnabled)

	r.oneOf(EnvMailTransport, &cfg.MailTransport, MailTransportLog, MailTransportSMTP, MailTransportKafka)
	r.str(EnvMailFrom, &cfg.MailFrom)
	r.str(EnvSMTPHost, &cfg.SMTPHost)
	r.integer(EnvSMTPPort, &cfg.SMTPPort, func(v int) bool { return v > 0 && v <= 65535 }, "must be a TCP port")
	r.str(EnvSMTPUsername, &cfg.SMTPUsername)
	r.str(EnvSMTPPassword, &cfg.SMTPPassword)

	r.integer(EnvNotificationWorkers, &cfg.NotificationWorkers, positiveInt, "must be > 0")
	r.integer(EnvNotificationQueueSize, &cfg.NotificationQueueSize, nonNegativeInt, "must be >= 0")

	r.duration(EnvOutboxPollInterval, &cfg.OutboxPollInterval, func(v time.Duration) bool { return v > 0 }, "must be > 0")
	r.integer(EnvOutboxBatchSize, &cfg.OutboxBatchSize, positiveInt, "must be > 0")
	r.integer(EnvOutboxMaxAttempts, &cfg.OutboxMaxAttempts, positiveInt, "must be > 0")
	r.duration(EnvOutboxRetryDelay, &cfg.OutboxRetryDelay, func(v time.Duration) bool { return v >= 0 }, "must be >= 0")
	r.integer(EnvOutboxMaxPending, &cfg.OutboxMaxPending, nonNegativeInt, "must be >= 0")

	r.oneOf(EnvIdempotencyDriver, &cfg.IdempotencyDriver, StorageDriverMemory, StorageDriverPostgres, IdempotencyDriverRedis)
	r.str(EnvRedisAddr, &cfg.RedisAddr)
	r.duration(EnvIdempotencyCleanupInterval, &cfg.IdempotencyCleanupInterval, func(v time.Duration) bool { return v > 0 }, "must be > 0")
	r.integer(EnvIdempotencyCleanupBatchSize, &cfg.IdempotencyCleanupBatchSize, positiveInt, "must be > 0")

	r.str(EnvOTLPEndpoint, &cfg.OTLPEndpoint)
	r.boolean(EnvOTLPInsecure, &cfg.OTLPInsecure)
	r.ratio(EnvTraceSampleRatio, &cfg.TraceSampleRatio)

	return cfg, r.warnings
}

func positiveInt(v int) bool    { return v > 0 }
func nonNegativeInt(v int) bool { return v >= 0 }

type envReader struct {
	lookup   EnvLookup
	warnings []error
}

func (r *envReader) value(key string) (string, bool) {
	if r.lookup == nil {
		return "", false
	}
	raw, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func (r *envReader) warn(key, raw string, err error) {
	r.warnings = append(r.warnings, fmt.Errorf("%s=%q ignored: %w", key, raw, err))
}

func (r *envReader) str(key string, dst *string) {
	if raw, ok := r.value(key); ok {
		*dst = raw
	}
}

func (r *envReader) oneOf(key string, dst *string, allowed ...string) {
	raw, ok := r.value(key)
	if !ok {
		return
	}
	normalized := strings.ToLower(raw)
	for _, candidate := range allowed {
		if normalized == candidate {
			*dst = normalized
			return
		}
	}
	r.warn(key, raw, fmt.Errorf("must be one of %s", strings.Join(allowed, "|")))
}

func (r *envReader) boolean(key string, dst *bool) {
	raw, ok := r.value(key)
	if !ok {
		return
	}
	v, err := parseBool(raw)
	if err != nil {
		r.warn(key, raw, err)
		return
	}
	*dst = v
}

func (r *envReader) integer(key string, dst *int, valid func(int) bool, rule string) {
	raw, ok := r.value(key)
	if !ok {
		return
	}
	v, err := parseInt(raw, valid, rule)
	if err != nil {
		r.warn(key, raw, err)
		return
	}
	*dst = v
}

func (r *envReader) duration(key string, dst *time.Duration, valid func(time.Duration) bool, rule string) {
	raw, ok := r.value(key)
	if !ok {
		return
	}
	v, err := parseDuration(raw, valid, rule)
	if err != nil {
		r.warn(key, raw, err)
		return
	}
	*dst = v
}

func (r *envReader) ratio(key string, dst *float64) {
	raw, ok := r.value(key)
	if !ok {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || v > 1 {
		r.warn(key, raw, fmt.Errorf("must be in (0, 1]"))
		return
	}
	*dst = v
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q: %w", raw, err)
	}
	if valid != nil && !valid(v) {
		return 0, fmt.Errorf("value %d %s", v, rule)
	}
	return v, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q: %w", raw, err)
	}
	if valid != nil && !valid(v) {
		return 0, fmt.Errorf("value %s %s", v, rule)
	}
	return v, nil
}

// brokerList разбирает список брокеров через запятую.
func brokerList(raw string) []string {
	var brokers []string
	for _, part := range strings.Split(raw, ",") {
		if broker := strings.TrimSpace(part); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}
