package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/mail"
	"github.com/vladislavdragonenkov/fulfillment/internal/messaging/kafka"
)

// initKafkaProducer создаёт producer, если заданы брокеры.
// Пустой список брокеров возвращает nil, nil.
func initKafkaProducer(brokers, clientID string, logger *log.Entry) (*kafka.Producer, error) {
	list := brokerList(brokers)
	if len(list) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(list, clientID)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", list).Info("kafka producer initialized")
	return producer, nil
}

// closeKafkaProducer закрывает producer, если он был создан.
func closeKafkaProducer(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

// newMailer выбирает транспорт писем покупателям.
func newMailer(cfg Config, producer *kafka.Producer, logger *log.Entry) (domain.Mailer, error) {
	switch cfg.MailTransport {
	case "", MailTransportLog:
		return mail.NewLogMailer(logger.WithField("component", "mailer")), nil
	case MailTransportSMTP:
		mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("configure smtp mailer: %w", err)
		}
		return mailer, nil
	case MailTransportKafka:
		if producer == nil {
			return nil, fmt.Errorf("mail transport %q requires %s", MailTransportKafka, EnvKafkaBrokers)
		}
		return kafka.NewMailPublisher(producer, cfg.KafkaMailTopic), nil
	default:
		return nil, fmt.Errorf("unsupported mail transport %q", cfg.MailTransport)
	}
}
