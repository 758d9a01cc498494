package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContentVideo    = "video"
	ContentAudio    = "audio"
	ContentDocument = "document"
	ContentText     = "text"
)

type CourseContent struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"content_id"`
	CourseID     uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	ContentType  string    `gorm:"size:20;not null" json:"content_type"` // video | audio | document | text
	ContentURL   string    `gorm:"type:text" json:"content_url"`
	ContentText  string    `gorm:"type:text" json:"content_text"`
	Duration     int       `json:"duration"` // seconds
	ContentOrder int       `gorm:"not null;default:0" json:"content_order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Course *Course `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (c *CourseContent) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
