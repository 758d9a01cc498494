package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = fmt.Errorf("email not verified: %w", ErrInvalidCredentials)
	ErrInvalidCode        = errors.New("invalid OTP")
	ErrExpiredCode        = errors.New("expired OTP")
	ErrUnauthenticated    = errors.New("missing credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthorized       = errors.New("insufficient role")
	ErrConflict           = errors.New("conflict")
	ErrEmailTaken         = fmt.Errorf("user already registered: %w", ErrConflict)
	ErrAlreadyInstructor  = fmt.Errorf("you are already an instructor: %w", ErrConflict)
	ErrRoleTransition     = fmt.Errorf("role cannot be changed to instructor: %w", ErrConflict)
	ErrValidation         = errors.New("validation error")
	ErrInfrastructure     = errors.New("infrastructure error")
)

// infra marks err as a store or transport failure so the HTTP layer logs it and answers 500.
func infra(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInfrastructure, err)
}

func validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
