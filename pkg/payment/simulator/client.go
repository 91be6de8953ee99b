// Package simulator is a stand-in card processor: it validates card input the
// way a gateway would and approves every charge except configured declines.
package simulator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Client approves or declines simulated card charges.
type Client struct {
	config   Config
	declines map[string]struct{}
	now      func() time.Time
}

// NewClient creates a client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	declines := make(map[string]struct{}, len(config.DeclineNumbers))
	for _, n := range config.DeclineNumbers {
		declines[digitsOnly(n)] = struct{}{}
	}
	return &Client{config: config, declines: declines, now: time.Now}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// Charge validates the card and approves the charge. A zero amount needs no
// card and is approved as is.
func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	resp := &ChargeResponse{
		Reference:  "sim_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Provider:   c.config.Provider,
		Amount:     req.Amount,
		ApprovedAt: c.now(),
	}
	if req.Amount.IsZero() {
		resp.Provider = "gift_card"
		return resp, nil
	}

	if err := ValidateCard(req.Card, c.now()); err != nil {
		return nil, err
	}
	number := digitsOnly(req.Card.Number)
	if _, declined := c.declines[number]; declined {
		return nil, fmt.Errorf("%w: order %s", ErrPaymentDeclined, req.OrderRef)
	}
	resp.Last4 = number[len(number)-4:]
	return resp, nil
}

// ValidateCard checks every field of card and returns the first failure as a
// *CardError.
func ValidateCard(card Card, now time.Time) error {
	if strings.TrimSpace(card.Holder) == "" {
		return &CardError{Field: "holder", Err: ErrCardHolderRequired}
	}

	number := digitsOnly(card.Number)
	if len(number) < 13 || len(number) > 19 || !onlyDigitsAndSpaces(card.Number) || !Luhn(number) {
		return &CardError{Field: "number", Err: ErrInvalidCardNumber}
	}

	month, year, err := parseExpiry(card.Expiry)
	if err != nil {
		return &CardError{Field: "expiry", Err: err}
	}
	// valid through the last day of the expiry month
	endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	if !now.Before(endOfMonth) {
		return &CardError{Field: "expiry", Err: ErrCardExpired}
	}

	cvc := strings.TrimSpace(card.CVC)
	if len(cvc) < 3 || len(cvc) > 4 || digitsOnly(cvc) != cvc {
		return &CardError{Field: "cvc", Err: ErrInvalidCVC}
	}
	return nil
}

// Luhn reports whether a string of digits passes the mod-10 checksum.
func Luhn(digits string) bool {
	if digits == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func parseExpiry(s string) (month, year int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, ErrInvalidExpiry
	}
	month, err = strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, ErrInvalidExpiry
	}
	yy, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, ErrInvalidExpiry
	}
	return month, 2000 + yy, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func onlyDigitsAndSpaces(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}
