package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInstructor UserRole = "instructor"
	RoleStudent    UserRole = "student"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

// User is the credential record. OTP and OTPExpiresAt are set and cleared together.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName     string     `gorm:"size:150;not null" json:"full_name"`
	Email        string     `gorm:"size:150;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:text;not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	IsActive     bool       `gorm:"not null;default:false" json:"is_active"`
	OTP          *string    `gorm:"column:otp;size:6" json:"-"`
	OTPExpiresAt *time.Time `gorm:"column:otp_expires_at" json:"-"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// HasPendingCode reports whether a one-time code is currently stored.
func (u *User) HasPendingCode() bool {
	return u.OTP != nil && u.OTPExpiresAt != nil
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
