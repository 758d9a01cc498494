package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Notifier delivers a message to an email address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

type MailConfig struct {
	Driver       string // smtp | resend | log
	SMTPHost     string
	SMTPPort     string
	SMTPEmail    string
	SMTPPassword string
	ResendAPIKey string
	From         string
}

// NewNotifier builds the notifier selected by cfg.Driver. Real transports are wrapped
// in an AsyncNotifier so requests never wait on the mail server.
func NewNotifier(cfg MailConfig, log *slog.Logger) (Notifier, error) {
	switch cfg.Driver {
	case "smtp":
		n, err := NewSMTPNotifier(cfg)
		if err != nil {
			return nil, err
		}
		return NewAsyncNotifier(n, log), nil
	case "resend":
		n, err := NewResendNotifier(cfg.ResendAPIKey, cfg.From)
		if err != nil {
			return nil, err
		}
		return NewAsyncNotifier(n, log), nil
	case "log", "":
		return NewLogNotifier(log), nil
	default:
		return nil, fmt.Errorf("unsupported MAIL_DRIVER %q", cfg.Driver)
	}
}

// LogNotifier writes messages to the log instead of sending them. Development only.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.log.InfoContext(ctx, "email sent (dev mode)", "to", to, "subject", subject, "body", body)
	return nil
}

const asyncSendTimeout = 30 * time.Second

// AsyncNotifier hands each message to next on its own goroutine and logs failures.
// Send always returns nil.
type AsyncNotifier struct {
	next Notifier
	log  *slog.Logger
}

func NewAsyncNotifier(next Notifier, log *slog.Logger) *AsyncNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &AsyncNotifier{next: next, log: log}
}

func (n *AsyncNotifier) Send(ctx context.Context, to, subject, body string) error {
	// detach from the request: it is usually finished before the mail server answers
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, asyncSendTimeout)
		defer cancel()
		if err := n.next.Send(ctx, to, subject, body); err != nil {
			n.log.ErrorContext(ctx, "send email failed", "to", to, "subject", subject, "error", err)
			return
		}
		n.log.InfoContext(ctx, "email sent", "to", to, "subject", subject)
	}()
	return nil
}
