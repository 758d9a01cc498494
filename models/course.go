package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CourseDraft     = "draft"
	CoursePublished = "published"
	CourseArchived  = "archived"
)

type Course struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"course_id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Slug          string     `gorm:"size:255;index" json:"slug"`
	Description   string     `gorm:"type:text" json:"description"`
	Price         float64    `gorm:"not null;default:0" json:"price"`
	DiscountPrice *float64   `json:"discount_price"`
	ImageURL      string     `gorm:"type:text" json:"image_url"`
	CategoryID    *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	InstructorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Level         string     `gorm:"size:30" json:"level"`
	Language      string     `gorm:"size:50" json:"language"`
	Status        string     `gorm:"type:varchar(20);default:'draft'" json:"status"` // draft | published | archived
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Category   *Category `gorm:"constraint:OnDelete:SET NULL;" json:"category,omitempty"`
	Instructor *User     `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE;" json:"instructor,omitempty"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
