// Package mailer sends password-reset mail. Delivery is best effort:
// the auth flow treats a send failure as non-fatal.
package mailer

import (
	"errors"
	"fmt"
	"net/smtp"

	"kvadrat-backend/internal/config"
)

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("mailer: smtp host not configured")

// Mailer delivers password-reset messages.
type Mailer interface {
	SendPasswordReset(to, resetURL string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

// NewSMTPMailer creates a mailer from config.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendPasswordReset emails the reset link. The token inside resetURL is
// valid for one hour.
func (m *SMTPMailer) SendPasswordReset(to, resetURL string) error {
	if m.cfg.Host == "" {
		return ErrNotConfigured
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: Password recovery - KVADRAT.KG\r\n" +
		"\r\n" +
		"To reset your password, follow the link: " + resetURL + "\r\n" +
		"The token is valid for 1 hour.\r\n")
	if err := smtp.SendMail(addr, nil, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	return nil
}
