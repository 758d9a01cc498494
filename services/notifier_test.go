package services

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotifier(t *testing.T) {
	n, err := NewNotifier(MailConfig{Driver: "log"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	n, err = NewNotifier(MailConfig{Driver: "smtp", SMTPHost: "smtp.gmail.com", SMTPEmail: "a@x.com", SMTPPassword: "p"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &AsyncNotifier{}, n)

	n, err = NewNotifier(MailConfig{Driver: "resend", ResendAPIKey: "re_test", From: "noreply@x.com"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &AsyncNotifier{}, n)

	_, err = NewNotifier(MailConfig{Driver: "smtp"}, nil)
	assert.Error(t, err)

	_, err = NewNotifier(MailConfig{Driver: "resend"}, nil)
	assert.Error(t, err)

	_, err = NewNotifier(MailConfig{Driver: "pigeon"}, nil)
	assert.Error(t, err)
}

func TestSMTPNotifier_Send(t *testing.T) {
	n, err := NewSMTPNotifier(MailConfig{SMTPHost: "smtp.example.com", SMTPEmail: "bot@example.com", SMTPPassword: "pw"})
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	n.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		assert.Equal(t, "bot@example.com", from)
		return nil
	}

	require.NoError(t, n.Send(context.Background(), "alice@x.com", "Hello", "body text"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"alice@x.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Hello\r\n")
	assert.Contains(t, gotMsg, "To: alice@x.com\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nbody text")

	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("535 auth failed") }
	assert.Error(t, n.Send(context.Background(), "alice@x.com", "Hello", "body"))
}

func TestAsyncNotifier_DoesNotBlockOrFail(t *testing.T) {
	inner := &recordingNotifier{err: errors.New("down")}
	n := NewAsyncNotifier(inner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, n.Send(ctx, "alice@x.com", "s", "b"))
	cancel()

	assert.Eventually(t, func() bool {
		inner.mu.Lock()
		defer inner.mu.Unlock()
		return len(inner.sent) == 1
	}, time.Second, 10*time.Millisecond)
}
