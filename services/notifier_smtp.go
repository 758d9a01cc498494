package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPNotifier sends plain text mail through an authenticated SMTP relay (Gmail by default).
type SMTPNotifier struct {
	addr string
	auth smtp.Auth
	from string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg MailConfig) (*SMTPNotifier, error) {
	if cfg.SMTPHost == "" || cfg.SMTPEmail == "" || cfg.SMTPPassword == "" {
		return nil, errors.New("smtp notifier requires SMTP_HOST, SMTP_EMAIL and SMTP_PASSWORD")
	}
	port := cfg.SMTPPort
	if port == "" {
		port = "587"
	}
	from := cfg.From
	if from == "" {
		from = cfg.SMTPEmail
	}
	return &SMTPNotifier{
		addr:     net.JoinHostPort(cfg.SMTPHost, port),
		auth:     smtp.PlainAuth("", cfg.SMTPEmail, cfg.SMTPPassword, cfg.SMTPHost),
		from:     from,
		sendMail: smtp.SendMail,
	}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(n.from, to, subject, body)
	if err := n.sendMail(n.addr, n.auth, n.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
