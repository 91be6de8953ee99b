package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	Name          string              `gorm:"not null" json:"name"`
	Description   string              `gorm:"type:text" json:"description"`
	SKU           string              `gorm:"uniqueIndex;not null" json:"sku"` // base for variant SKUs
	Code          string              `gorm:"type:varchar(64);index" json:"code"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	SalePrice     decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"sale_price"`
	StockQuantity int                 `gorm:"default:0" json:"stock_quantity"`
	CategoryID    uint                `gorm:"not null;index" json:"category_id"`
	ImageURL      string              `json:"image_url"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`

	Category   *Category          `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Variants   []ProductVariant   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Attributes []ProductAttribute `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"attributes,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice is the sale price when one is set.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}
