package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// ErrInvalidMessage — письмо без отправителя или получателя.
var ErrInvalidMessage = errors.New("mail message must have sender and recipient")

const defaultDialTimeout = 10 * time.Second

// SMTPConfig — параметры SMTP-сервера.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// DialTimeout ограничивает установку соединения, если у ctx нет дедлайна.
	DialTimeout time.Duration
}

// Addr возвращает host:port.
func (c SMTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// SMTPMailer отправляет письма через SMTP.
type SMTPMailer struct {
	cfg  SMTPConfig
	auth smtp.Auth
	now  func() time.Time
}

// NewSMTPMailer создаёт SMTPMailer. PLAIN-аутентификация включается, если задан Username.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 25
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}

	m := &SMTPMailer{cfg: cfg, now: time.Now}
	if cfg.Username != "" {
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return m, nil
}

// Send отправляет одно письмо в рамках одной SMTP-сессии.
func (m *SMTPMailer) Send(ctx context.Context, msg domain.MailMessage) error {
	if err := Validate(msg); err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: m.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.cfg.Addr())
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", m.cfg.Addr(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if m.auth != nil {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(nil); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
		if err := client.Auth(m.auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(BuildMessage(msg, m.now())); err != nil {
		_ = w.Close()
		return fmt.Errorf("write smtp body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish smtp body: %w", err)
	}

	return client.Quit()
}

// Validate проверяет обязательные поля письма.
func Validate(msg domain.MailMessage) error {
	if strings.TrimSpace(msg.From) == "" || strings.TrimSpace(msg.To) == "" {
		return ErrInvalidMessage
	}
	if strings.ContainsAny(msg.From+msg.To+msg.Subject, "\r\n") {
		return fmt.Errorf("%w: header contains line break", ErrInvalidMessage)
	}
	return nil
}

// BuildMessage собирает письмо в формате RFC 5322 с CRLF-переводами строк.
func BuildMessage(msg domain.MailMessage, date time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", msg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")

	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	buf.WriteString("\r\n")
	return buf.Bytes()
}

var _ domain.Mailer = (*SMTPMailer)(nil)
