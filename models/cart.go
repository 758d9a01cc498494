package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is created lazily on the first add and holds at most one row per user.
type Cart struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"cart_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Items []CartItem `gorm:"constraint:OnDelete:CASCADE;" json:"items,omitempty"`
}

func (Cart) TableName() string {
	return "cart"
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type CartItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"cart_item_id"`
	CartID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_course" json:"cart_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_course" json:"course_id"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"added_at"`

	Course *Course `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
