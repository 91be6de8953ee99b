package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductVariant struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	ProductID     uint                `gorm:"not null;index" json:"product_id"`
	SKU           string              `gorm:"uniqueIndex;not null" json:"sku"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	SalePrice     decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"sale_price"`
	StockQuantity int                 `gorm:"default:0" json:"stock_quantity"`
	Attributes    datatypes.JSONMap   `json:"attributes"` // attribute name -> chosen value
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`

	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

func (v *ProductVariant) EffectivePrice() decimal.Decimal {
	if v.SalePrice.Valid {
		return v.SalePrice.Decimal
	}
	return v.Price
}

// Attribute returns the variant's value for name, matched case-insensitively.
func (v *ProductVariant) Attribute(name string) string {
	for k, val := range v.Attributes {
		if strings.EqualFold(k, name) {
			if s, ok := val.(string); ok {
				return s
			}
		}
	}
	return ""
}
