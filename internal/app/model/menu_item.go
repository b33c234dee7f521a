package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type MenuCategory string

const (
	CategoryStarter MenuCategory = "starter"
	CategoryMain    MenuCategory = "main"
	CategoryDessert MenuCategory = "dessert"
	CategoryDrink   MenuCategory = "drink"
)

type MenuItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	ImageURL    string         `json:"image_url"`
	IsFeatured  bool           `gorm:"default:false;index" json:"is_featured"`
	Available   bool           `gorm:"default:true" json:"available"`
	Position    int            `gorm:"default:0" json:"position"`
	Category    MenuCategory   `gorm:"type:varchar(50)" json:"category"`
	Allergens   pq.StringArray `gorm:"type:text[]" json:"allergens,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	CartItems  []CartItem  `gorm:"foreignKey:MenuItemID" json:"-"`
	OrderItems []OrderItem `gorm:"foreignKey:MenuItemID" json:"-"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}
