package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GiftCard struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	Code           string          `gorm:"uniqueIndex;not null" json:"code"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Used           bool            `gorm:"default:false;index" json:"used"`
	UsedAt         *time.Time      `json:"used_at,omitempty"`
	Expired        bool            `gorm:"default:false" json:"expired"` // set by the expiry sweep
	ExpiresAt      time.Time       `gorm:"not null;index" json:"expires_at"`
	RecipientEmail string          `gorm:"not null;index" json:"recipient_email"`
	Message        string          `gorm:"type:text" json:"message,omitempty"`
	SenderID       uint            `gorm:"not null;index" json:"sender_id"`
	OrderID        *uint           `gorm:"index" json:"order_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (GiftCard) TableName() string {
	return "gift_cards"
}

func (g *GiftCard) IsExpired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
