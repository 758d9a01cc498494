package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WishlistItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"wishlist_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_course" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_course" json:"course_id"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"added_at"`

	User   *User   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Course *Course `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (WishlistItem) TableName() string {
	return "wishlist"
}

func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&w.ID)
	return nil
}
