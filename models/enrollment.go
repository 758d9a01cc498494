package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment links a student to a course. Progress is a percentage.
type Enrollment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"enrollment_id"`

	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_course" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_course" json:"course_id"`

	Progress    float64    `gorm:"not null;default:0" json:"progress"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	EnrolledAt  time.Time  `gorm:"autoCreateTime" json:"enrolled_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	assignID(&e.ID)
	return nil
}
