package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func validCard() Card {
	return Card{Holder: "Ada Lovelace", Number: "4242 4242 4242 4242", Expiry: "12/28", CVC: "123"}
}

func newTestClient(t *testing.T) *Client {
	c, err := NewClient(DefaultConfig())
	require.NoError(t, err)
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestLuhn(t *testing.T) {
	assert.True(t, Luhn("4242424242424242"))
	assert.True(t, Luhn("79927398713"))
	assert.False(t, Luhn("4242424242424241"))
	assert.False(t, Luhn(""))
	assert.False(t, Luhn("42a2"))
}

func TestValidateCard(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Card)
		field   string
		wantErr error
	}{
		{name: "valid", mutate: func(*Card) {}},
		{name: "missing holder", mutate: func(c *Card) { c.Holder = " " }, field: "holder", wantErr: ErrCardHolderRequired},
		{name: "too short", mutate: func(c *Card) { c.Number = "4242 4242" }, field: "number", wantErr: ErrInvalidCardNumber},
		{name: "bad checksum", mutate: func(c *Card) { c.Number = "4242424242424241" }, field: "number", wantErr: ErrInvalidCardNumber},
		{name: "letters", mutate: func(c *Card) { c.Number = "4242x42424242424" }, field: "number", wantErr: ErrInvalidCardNumber},
		{name: "bad expiry format", mutate: func(c *Card) { c.Expiry = "2028-12" }, field: "expiry", wantErr: ErrInvalidExpiry},
		{name: "month out of range", mutate: func(c *Card) { c.Expiry = "13/28" }, field: "expiry", wantErr: ErrInvalidExpiry},
		{name: "expired", mutate: func(c *Card) { c.Expiry = "02/26" }, field: "expiry", wantErr: ErrCardExpired},
		{name: "current month still valid", mutate: func(c *Card) { c.Expiry = "03/26" }},
		{name: "short cvc", mutate: func(c *Card) { c.CVC = "12" }, field: "cvc", wantErr: ErrInvalidCVC},
		{name: "four digit cvc", mutate: func(c *Card) { c.CVC = "1234" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validCard()
			tt.mutate(&card)

			err := ValidateCard(card, fixedNow)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			var cardErr *CardError
			require.ErrorAs(t, err, &cardErr)
			assert.Equal(t, tt.field, cardErr.Field)
		})
	}
}

func TestCharge(t *testing.T) {
	c := newTestClient(t)

	resp, err := c.Charge(context.Background(), ChargeRequest{OrderRef: "o1", Amount: decimal.NewFromInt(96), Card: validCard()})
	require.NoError(t, err)
	assert.Equal(t, "4242", resp.Last4)
	assert.Equal(t, "card", resp.Provider)
	assert.NotEmpty(t, resp.Reference)

	declined := validCard()
	declined.Number = "4000 0000 0000 0002"
	_, err = c.Charge(context.Background(), ChargeRequest{OrderRef: "o2", Amount: decimal.NewFromInt(10), Card: declined})
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	_, err = c.Charge(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCharge_ZeroAmountSkipsCard(t *testing.T) {
	c := newTestClient(t)

	resp, err := c.Charge(context.Background(), ChargeRequest{Amount: decimal.Zero})
	require.NoError(t, err)
	assert.Equal(t, "gift_card", resp.Provider)
	assert.Empty(t, resp.Last4)
}

func TestNewClient_RequiresProvider(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
