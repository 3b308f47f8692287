package notifications

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/Kamey12/Apex-Inventory-System/pkg/logger"

	"github.com/jordan-wright/email"
)

// LogSender writes alerts to the log. It is used when SMTP is not configured.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(l *logger.Logger) *LogSender {
	return &LogSender{log: l}
}

// Send logs the alert.
func (s *LogSender) Send(_ context.Context, subject, body string) error {
	s.log.Warn().Str("subject", subject).Str("body", body).Msg("low stock alert")
	return nil
}

// MailConfig holds SMTP settings for alert mail.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string
}

// Mailer sends alerts over SMTP.
type Mailer struct {
	cfg  MailConfig
	addr string
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewMailer creates a Mailer.
func NewMailer(cfg MailConfig) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{
		cfg:  cfg,
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Send mails the alert to the configured recipient.
func (m *Mailer) Send(_ context.Context, subject, body string) error {
	e := email.NewEmail()
	e.From = m.cfg.User
	if e.From == "" {
		e.From = "inventory@" + m.cfg.Host
	}
	e.To = []string{m.cfg.To}
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(e, m.addr, auth); err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	return nil
}
