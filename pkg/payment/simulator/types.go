package simulator

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card is the payment form as typed by the shopper.
type Card struct {
	Holder string `json:"holder"`
	Number string `json:"number"`
	Expiry string `json:"expiry"` // MM/YY
	CVC    string `json:"cvc"`
}

// ChargeRequest asks for amount to be taken from card.
type ChargeRequest struct {
	OrderRef string
	Amount   decimal.Decimal
	Card     Card
}

// ChargeResponse is an approved charge.
type ChargeResponse struct {
	Reference  string          `json:"reference"`
	Provider   string          `json:"provider"`
	Last4      string          `json:"last4,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	ApprovedAt time.Time       `json:"approved_at"`
}
