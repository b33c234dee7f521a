package model

import (
	"time"

	"gorm.io/gorm"
)

// CartItem is one cart line. At most one line exists per (user, menu item)
// pair; the store layer enforces this by merging quantities on add rather
// than relying on a database constraint.
type CartItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	MenuItemID uint           `gorm:"not null;index" json:"menu_item_id"`
	Quantity   int            `gorm:"not null;default:1" json:"quantity"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User     User     `gorm:"foreignKey:UserID" json:"-"`
	MenuItem MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
