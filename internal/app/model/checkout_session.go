package model

import "time"

type CheckoutStep string

const (
	StepForm         CheckoutStep = "form"
	StepPayment      CheckoutStep = "payment"
	StepConfirmation CheckoutStep = "confirmation"
)

var checkoutTransitions = map[CheckoutStep][]CheckoutStep{
	StepForm:    {StepPayment},
	StepPayment: {StepForm, StepConfirmation},
}

// CanTransition reports whether the checkout flow allows moving from s to next.
// Confirmation is terminal.
func (s CheckoutStep) CanTransition(next CheckoutStep) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CheckoutSession tracks one cart session's progress through checkout.
type CheckoutSession struct {
	ID            string       `gorm:"primaryKey;type:varchar(64)" json:"id"` // cart session id
	UserID        uint         `gorm:"not null;index" json:"user_id"`
	Step          CheckoutStep `gorm:"type:varchar(20);not null;default:'form'" json:"step"`
	ContactName   string       `json:"contact_name"`
	ContactEmail  string       `json:"contact_email"`
	ContactPhone  string       `json:"contact_phone"`
	AddressLine   string       `json:"address_line"`
	City          string       `json:"city"`
	PostalCode    string       `json:"postal_code"`
	Country       string       `json:"country"`
	GiftCardCodes string       `gorm:"type:text" json:"gift_card_codes,omitempty"` // comma separated
	LastError     string       `gorm:"type:text" json:"last_error,omitempty"`
	OrderID       *uint        `json:"order_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}
