package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	UserID           uint            `gorm:"not null;index" json:"user_id"`
	Status           OrderStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentStatus    PaymentStatus   `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	PaymentProvider  string          `gorm:"type:varchar(50)" json:"payment_provider,omitempty"`
	PaymentReference string          `gorm:"type:varchar(64);index" json:"payment_reference,omitempty"`
	CardLast4        string          `gorm:"type:varchar(4)" json:"card_last4,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	Subtotal         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DiscountTotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount_total"`
	Tax              decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Total            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	GiftCardTotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"gift_card_total"`
	FinalTotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"final_total"`
	ContactName      string          `gorm:"not null" json:"contact_name"`
	ContactEmail     string          `gorm:"not null" json:"contact_email"`
	ContactPhone     string          `json:"contact_phone"`
	AddressLine      string          `gorm:"type:text;not null" json:"address_line"`
	City             string          `gorm:"not null" json:"city"`
	PostalCode       string          `gorm:"not null" json:"postal_code"`
	Country          string          `gorm:"not null" json:"country"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
	GiftCards  []GiftCard  `gorm:"foreignKey:OrderID" json:"gift_cards,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID                 uint            `gorm:"primarykey" json:"id"`
	OrderID            uint            `gorm:"not null;index" json:"order_id"`
	ProductID          uint            `gorm:"not null;index" json:"product_id"`
	ProductName        string          `gorm:"not null" json:"product_name"` // snapshot at purchase time
	ProductCode        string          `json:"product_code,omitempty"`
	Size               string          `json:"size,omitempty"`
	Color              string          `json:"color,omitempty"`
	Quantity           int             `gorm:"not null" json:"quantity"`
	UnitPrice          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percentage"`
	DiscountCode       string          `json:"discount_code,omitempty"`
	LineTotal          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	CreatedAt          time.Time       `json:"created_at"`

	Order   *Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
