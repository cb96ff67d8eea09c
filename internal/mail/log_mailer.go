// Package mail содержит почтовые транспорты для уведомлений покупателей.
package mail

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// LogMailer пишет письма в лог вместо отправки. Используется в dev-окружении.
type LogMailer struct {
	logger *log.Entry
}

// NewLogMailer создаёт LogMailer.
func NewLogMailer(logger *log.Entry) *LogMailer {
	if logger == nil {
		logger = log.WithField("component", "log-mailer")
	}
	return &LogMailer{logger: logger}
}

// Send логирует письмо.
func (m *LogMailer) Send(ctx context.Context, msg domain.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Validate(msg); err != nil {
		return err
	}

	m.logger.WithFields(log.Fields{
		"from":    msg.From,
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	}).Info("mail message")
	return nil
}

var _ domain.Mailer = (*LogMailer)(nil)
