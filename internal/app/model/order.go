package model

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Order records one successful (or attempted) checkout along with the
// billing details submitted with it. The storefront itself only reads
// these back for the admin export; the cart is the live working set.
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	TotalAmount     float64        `gorm:"not null" json:"total_amount"`
	PaymentStatus   PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	PaymentIntentID string         `gorm:"index" json:"payment_intent_id"`
	BillingName     string         `json:"billing_name"`
	BillingEmail    string         `json:"billing_email"`
	BillingAddress  string         `json:"billing_address"`
	BillingCity     string         `json:"billing_city"`
	BillingPostal   string         `json:"billing_postal"`
	BillingCountry  string         `gorm:"type:varchar(10)" json:"billing_country"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User       User        `gorm:"foreignKey:UserID" json:"-"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a denormalized snapshot of a cart line at checkout time.
// Name and price are copied so later menu edits do not rewrite history.
type OrderItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	MenuItemID uint      `gorm:"not null" json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      float64   `gorm:"not null" json:"price"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`

	MenuItem MenuItem `gorm:"foreignKey:MenuItemID" json:"-"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
