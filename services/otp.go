package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/repositories"
)

// UserStore is the slice of the credential store the auth core needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error)
}

// Purpose selects the message a code is delivered with.
type Purpose int

const (
	PurposeActivation Purpose = iota
	PurposePasswordReset
)

const (
	codeDigits    = 6
	DefaultOTPTTL = time.Hour
)

var codeSpace = big.NewInt(1_000_000)

// GenerateCode returns a uniformly random 6 digit decimal string, left padded with zeros.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

// OTPService issues and redeems the single live one-time code of an account.
type OTPService struct {
	store    UserStore
	notifier Notifier
	ttl      time.Duration
	log      *slog.Logger

	now      func() time.Time
	generate func() (string, error)
}

func NewOTPService(store UserStore, notifier Notifier, ttl time.Duration, log *slog.Logger) *OTPService {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &OTPService{
		store:    store,
		notifier: notifier,
		ttl:      ttl,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		generate: GenerateCode,
	}
}

// Issue stores a fresh code on the account behind email, replacing any pending one,
// and hands it to the notifier. Delivery failures are logged, not returned: the code
// stays valid and the resend endpoint is the recovery path.
func (s *OTPService) Issue(ctx context.Context, email string, purpose Purpose) (string, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", infra("find user", err)
	}

	code, err := s.generate()
	if err != nil {
		return "", infra("generate code", err)
	}
	expires := s.now().Add(s.ttl)

	n, err := s.store.Update(ctx, user.ID, map[string]any{
		"otp":            code,
		"otp_expires_at": expires,
	})
	if err != nil {
		return "", infra("store code", err)
	}
	if n == 0 {
		return "", ErrNotFound
	}

	subject, body := codeMessage(purpose, code, s.ttl)
	if err := s.notifier.Send(ctx, user.Email, subject, body); err != nil {
		s.log.ErrorContext(ctx, "otp delivery failed", "user_id", user.ID, "error", err)
	}

	return code, nil
}

// Verify redeems code for the account behind email. Codes compare as strings, so
// "007" and "7" differ. On success the code and its expiry are cleared in the same
// update as the columns returned by apply, which may be nil.
func (s *OTPService) Verify(ctx context.Context, email, code string, apply func(*models.User) (map[string]any, error)) (*models.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, infra("find user", err)
	}

	if !user.HasPendingCode() || *user.OTP != code {
		return nil, ErrInvalidCode
	}
	if !s.now().Before(*user.OTPExpiresAt) {
		return nil, ErrExpiredCode
	}

	fields := map[string]any{}
	if apply != nil {
		extra, err := apply(user)
		if err != nil {
			return nil, err
		}
		for k, v := range extra {
			fields[k] = v
		}
	}
	fields["otp"] = nil
	fields["otp_expires_at"] = nil

	if _, err := s.store.Update(ctx, user.ID, fields); err != nil {
		return nil, infra("redeem code", err)
	}

	user.OTP = nil
	user.OTPExpiresAt = nil
	return user, nil
}

func codeMessage(purpose Purpose, code string, ttl time.Duration) (subject, body string) {
	switch purpose {
	case PurposePasswordReset:
		subject = "Password Reset OTP"
		body = fmt.Sprintf("You are receiving this because you (or someone else) requested a password reset for your account.\n\n"+
			"Use the following OTP to reset your password:\n\n"+
			"OTP: %s\n\n"+
			"The code expires in %s. If you did not request this, ignore this email and your password will remain unchanged.\n",
			code, ttl)
	default:
		subject = "Verify your email address"
		body = fmt.Sprintf("Welcome! Use the following OTP to verify your email address:\n\n"+
			"OTP: %s\n\n"+
			"The code expires in %s. If you did not create an account, ignore this email.\n",
			code, ttl)
	}
	return subject, body
}
