package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // placed, awaiting payment
	OrderStatusPaid      OrderStatus = "paid"      // payment confirmed
	OrderStatusShipped   OrderStatus = "shipped"   // handed to the carrier
	OrderStatusDelivered OrderStatus = "delivered" // customer received it
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type Order struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"not null;index"`
	User       User            `gorm:"constraint:OnDelete:CASCADE"`
	FirstName  string          `gorm:"size:100;not null"`
	LastName   string          `gorm:"size:100;not null"`
	Email      string          `gorm:"size:254;not null"`
	Address    string          `gorm:"size:255;not null"`
	City       string          `gorm:"size:100;not null"`
	State      string          `gorm:"size:100"`
	PostalCode string          `gorm:"size:20;not null"`
	Country    string          `gorm:"size:100;not null"`
	Phone      string          `gorm:"size:20;not null"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status     OrderStatus     `gorm:"type:VARCHAR(20);not null;default:'pending'"`
	PaymentID  *string         `gorm:"size:100"`
	Items      []OrderItem     `gorm:"constraint:OnDelete:CASCADE"`
	Payment    *Payment        `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"index"`
	UpdatedAt  time.Time
}

// OrderItem keeps the product price as it was when the order was placed.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;index"`
	ProductID uint            `gorm:"not null;index"`
	Product   Product         `gorm:"constraint:OnDelete:RESTRICT"`
	VariantID *uint           `gorm:"index"`
	Variant   *ProductVariant `gorm:"constraint:OnDelete:SET NULL"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity  int             `gorm:"not null;check:quantity >= 1"`
	Color     string          `gorm:"size:50"`
	Size      string          `gorm:"size:20"`
}

type Payment struct {
	ID            uint            `gorm:"primaryKey"`
	OrderID       uint            `gorm:"unique;not null"`
	PaymentMethod string          `gorm:"size:50;not null"`
	TransactionID *string         `gorm:"size:100"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status        PaymentStatus   `gorm:"type:VARCHAR(20);not null;default:'pending'"`
	CreatedAt     time.Time
}
