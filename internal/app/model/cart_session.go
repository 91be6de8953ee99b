package model

import (
	"time"

	"github.com/storefront/storefront-backend/pkg/cart"
	"gorm.io/datatypes"
)

// CartSession persists a cart.Session as one JSON document per session id.
type CartSession struct {
	ID        string                           `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID    *uint                            `gorm:"index" json:"user_id,omitempty"`
	Data      datatypes.JSONType[cart.Session] `json:"data"`
	CreatedAt time.Time                        `json:"created_at"`
	UpdatedAt time.Time                        `gorm:"index" json:"updated_at"`
}

func (CartSession) TableName() string {
	return "cart_sessions"
}
