package simulator

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid payment configuration")

	ErrCardHolderRequired = errors.New("card holder name is required")
	ErrInvalidCardNumber  = errors.New("invalid card number")
	ErrInvalidExpiry      = errors.New("expiry must be MM/YY")
	ErrCardExpired        = errors.New("card has expired")
	ErrInvalidCVC         = errors.New("invalid security code")

	// ErrInvalidAmount is returned for negative charges.
	ErrInvalidAmount = errors.New("invalid payment amount")

	// ErrPaymentDeclined is returned when the processor refuses the card.
	ErrPaymentDeclined = errors.New("payment declined")
)

// CardError ties a card validation failure to the form field it concerns.
type CardError struct {
	Field string
	Err   error
}

func (e *CardError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *CardError) Unwrap() error { return e.Err }
