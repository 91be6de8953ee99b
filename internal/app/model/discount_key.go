package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountTier string

const (
	TierStandard  DiscountTier = "standard"
	TierPremium   DiscountTier = "premium"
	TierExclusive DiscountTier = "exclusive"
)

var tierPercentages = map[DiscountTier]int64{
	TierStandard:  10,
	TierPremium:   20,
	TierExclusive: 30,
}

func (t DiscountTier) Valid() bool {
	_, ok := tierPercentages[t]
	return ok
}

// Percentage is the fixed reduction granted by the tier.
func (t DiscountTier) Percentage() decimal.Decimal {
	return decimal.NewFromInt(tierPercentages[t])
}

// DiscountKey is a redeemable code granting a tiered percentage off one product.
type DiscountKey struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	Code       string          `gorm:"uniqueIndex;not null" json:"code"`
	Tier       DiscountTier    `gorm:"type:varchar(20);not null" json:"tier"`
	Percentage decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"percentage"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Active     bool            `gorm:"default:true" json:"active"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (DiscountKey) TableName() string {
	return "discount_keys"
}

func (k *DiscountKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}

// Redeemable reports whether the key is active and not expired at now.
func (k *DiscountKey) Redeemable(now time.Time) bool {
	return k.Active && !k.IsExpired(now)
}
