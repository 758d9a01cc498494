package services

import (
	"context"
	"errors"

	"github.com/resend/resend-go/v2"
)

// ResendNotifier sends mail through the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
}

func NewResendNotifier(apiKey, from string) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, errors.New("email service not configured (missing RESEND_API_KEY)")
	}
	return &ResendNotifier{client: resend.NewClient(apiKey), from: from}, nil
}

func (n *ResendNotifier) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	_, err := n.client.Emails.SendWithContext(ctx, params)
	return err
}
