package services

import (
	"context"
	"errors"

	"cloud.google.com/go/auth/credentials/idtoken"
)

type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// GoogleVerifier checks a Google ID token and returns the identity it asserts.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type IDTokenVerifier struct {
	clientID string
}

func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID is not set")
	}
	payload, err := idtoken.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, err
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	return &GoogleIdentity{
		Subject:       payload.Subject,
		Email:         email,
		EmailVerified: verified,
		Name:          name,
	}, nil
}
