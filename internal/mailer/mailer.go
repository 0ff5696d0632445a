// Package mailer delivers account emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"
)

// Sender delivers a single email. The reset flow depends on this interface
// so tests can capture outgoing mail.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config holds SMTP delivery settings.
type Config struct {
	Addr     string
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through a single SMTP endpoint using plain auth
// when credentials are configured.
type SMTPMailer struct {
	addr   string
	auth   smtp.Auth
	from   string
	logger *slog.Logger
}

// New creates an SMTP mailer from config.
func New(cfg Config, logger *slog.Logger) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, hostOf(cfg.Addr))
	}

	return &SMTPMailer{
		addr:   cfg.Addr,
		auth:   auth,
		from:   cfg.From,
		logger: logger,
	}
}

// Send delivers one plain-text email.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := BuildMessage(m.from, to, subject, body)

	start := time.Now()
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		m.logger.Error("failed to send email",
			slog.String("smtp_addr", m.addr),
			slog.String("to", to),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info("email sent",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.Duration("elapsed", time.Since(start)),
	)

	return nil
}

// BuildMessage assembles an RFC 5322 plain-text message.
func BuildMessage(from, to, subject, body string) []byte {
	return []byte(
		"From: " + from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"Content-Type: text/plain; charset=utf-8\r\n" +
			"\r\n" + body + "\r\n")
}

// ResetEmail builds the subject and body for a password-reset mail. The
// link embeds the signed reset token.
func ResetEmail(baseURL, token string) (subject, body string) {
	link := strings.TrimRight(baseURL, "/") + "/reset-password/" + token
	subject = "Reset your password"
	body = "We received a request to reset your password.\r\n\r\n" +
		"Follow this link to choose a new one:\r\n" + link + "\r\n\r\n" +
		"The link expires in one hour. If you did not request a reset, you can ignore this email."
	return subject, body
}

func hostOf(addr string) string {
	if i := strings.Index(addr, ":"); i >= 0 {
		return addr[:i]
	}
	return addr
}
