package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/repositories"
)

type AuthConfig struct {
	AllowAdminSignup bool
}

// AuthService runs the account flows: registration and activation, login,
// password recovery, profile edits and the student to instructor promotion.
type AuthService struct {
	store    UserStore
	hasher   *PasswordHasher
	otp      *OTPService
	sessions *SessionService
	google   GoogleVerifier
	cfg      AuthConfig
	log      *slog.Logger
}

func NewAuthService(store UserStore, hasher *PasswordHasher, otp *OTPService, sessions *SessionService, google GoogleVerifier, cfg AuthConfig, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		store:    store,
		hasher:   hasher,
		otp:      otp,
		sessions: sessions,
		google:   google,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     models.UserRole
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an inactive account and sends it an activation code.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (uuid.UUID, error) {
	email := NormalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !role.Valid() {
		return uuid.Nil, validation("invalid role")
	}
	if role == models.RoleAdmin && !s.cfg.AllowAdminSignup {
		return uuid.Nil, validation("admin accounts cannot be self-registered")
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return uuid.Nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return uuid.Nil, infra("find user", err)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := s.store.Create(ctx, &models.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     false,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, infra("create user", err)
	}

	if _, err := s.otp.Issue(ctx, email, PurposeActivation); err != nil {
		return id, err
	}

	s.log.InfoContext(ctx, "user registered", "user_id", id, "role", role)
	return id, nil
}

// Login checks the password before the activation flag, so an inactive account
// with a wrong password still reads as invalid credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, infra("find user", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		return "", nil, infra("issue token", err)
	}
	return token, user, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	_, err := s.otp.Verify(ctx, NormalizeEmail(email), code, func(*models.User) (map[string]any, error) {
		return map[string]any{"is_active": true}, nil
	})
	return err
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	_, err := s.otp.Issue(ctx, NormalizeEmail(email), PurposeActivation)
	return err
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.otp.Issue(ctx, NormalizeEmail(email), PurposePasswordReset)
	return err
}

// ResetPassword replaces the password hash if code is the pending, unexpired code.
// A wrong or expired code leaves the pending code in place.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	_, err := s.otp.Verify(ctx, NormalizeEmail(email), code, func(*models.User) (map[string]any, error) {
		hash, err := s.hash(newPassword)
		if err != nil {
			return nil, err
		}
		return map[string]any{"password_hash": hash}, nil
	})
	return err
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	if _, err := s.store.Update(ctx, userID, map[string]any{"password_hash": hash}); err != nil {
		return infra("update password", err)
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.findByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, email string) (*models.User, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if fullName == "" || email == "" {
		return nil, validation("full_name and email are required")
	}

	if email != user.Email {
		other, err := s.store.FindByEmail(ctx, email)
		switch {
		case err == nil && other.ID != user.ID:
			return nil, ErrEmailTaken
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return nil, infra("find user", err)
		}
	}

	_, err = s.store.Update(ctx, userID, map[string]any{"full_name": fullName, "email": email})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, infra("update profile", err)
	}
	user.FullName = fullName
	user.Email = email
	return user, nil
}

// BecomeInstructor promotes a student and returns a token carrying the new role.
func (s *AuthService) BecomeInstructor(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return "", err
	}
	switch user.Role {
	case models.RoleInstructor:
		return "", ErrAlreadyInstructor
	case models.RoleStudent:
	default:
		return "", ErrRoleTransition
	}

	if _, err := s.store.Update(ctx, userID, map[string]any{"role": models.RoleInstructor}); err != nil {
		return "", infra("update role", err)
	}
	user.Role = models.RoleInstructor

	token, err := s.sessions.Issue(user)
	if err != nil {
		return "", infra("issue token", err)
	}
	s.log.InfoContext(ctx, "user promoted to instructor", "user_id", userID)
	return token, nil
}

// GoogleLogin signs in with a Google ID token. First sign-in creates an active
// student account without a usable password.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (string, *models.User, error) {
	if s.google == nil {
		return "", nil, validation("google sign-in is not configured")
	}
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return "", nil, errors.Join(ErrInvalidCredentials, err)
	}
	email := NormalizeEmail(identity.Email)
	if email == "" || !identity.EmailVerified {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.store.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		user = &models.User{
			FullName: identity.Name,
			Email:    email,
			Role:     models.RoleStudent,
			IsActive: true,
		}
		if _, err := s.store.Create(ctx, user); err != nil {
			return "", nil, infra("create user", err)
		}
	case err != nil:
		return "", nil, infra("find user", err)
	case !user.IsActive:
		// Google already proved control of the address
		if _, err := s.store.Update(ctx, user.ID, map[string]any{"is_active": true, "otp": nil, "otp_expires_at": nil}); err != nil {
			return "", nil, infra("activate user", err)
		}
		user.IsActive = true
		user.OTP = nil
		user.OTPExpiresAt = nil
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		return "", nil, infra("issue token", err)
	}
	return token, user, nil
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	switch {
	case errors.Is(err, ErrEmptyPassword):
		return "", validation("password is required")
	case errors.Is(err, ErrPasswordTooLong):
		return "", validation("password must be at most 72 bytes")
	case err != nil:
		return "", infra("hash password", err)
	}
	return hash, nil
}

func (s *AuthService) findByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, infra("find user", err)
	}
	return user, nil
}
