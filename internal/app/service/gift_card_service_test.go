package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckGiftCard(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	valid := func() *model.GiftCard {
		return &model.GiftCard{
			Code:           "GC-AAAA",
			Amount:         decimal.NewFromInt(50),
			ExpiresAt:      now.Add(24 * time.Hour),
			RecipientEmail: "friend@example.com",
		}
	}

	tests := []struct {
		name    string
		mutate  func(g *model.GiftCard)
		email   string
		wantErr error
	}{
		{name: "valid", mutate: func(*model.GiftCard) {}, email: "Friend@Example.com"},
		{name: "used", mutate: func(g *model.GiftCard) { g.Used = true }, email: "friend@example.com", wantErr: ErrGiftCardUsed},
		{name: "past expiry", mutate: func(g *model.GiftCard) { g.ExpiresAt = now }, email: "friend@example.com", wantErr: ErrGiftCardExpired},
		{name: "swept", mutate: func(g *model.GiftCard) { g.Expired = true }, email: "friend@example.com", wantErr: ErrGiftCardExpired},
		{name: "other recipient", mutate: func(*model.GiftCard) {}, email: "me@example.com", wantErr: ErrGiftCardNotOwned},
		{
			name:    "used wins over expired",
			mutate:  func(g *model.GiftCard) { g.Used = true; g.ExpiresAt = now.Add(-time.Hour) },
			email:   "me@example.com",
			wantErr: ErrGiftCardUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid()
			tt.mutate(g)
			err := CheckGiftCard(g, tt.email, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGiftCardService_Purchase(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "sender@example.com")

	card, err := env.giftCards.Purchase(sender.ID, PurchaseGiftCardInput{
		Amount:         decimal.NewFromInt(50),
		RecipientEmail: " Friend@Example.com ",
		Message:        "Happy birthday",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^GC-[0-9A-Z]{4}-[0-9A-Z]{4}-[0-9A-Z]{4}$`, card.Code)
	assert.Equal(t, "friend@example.com", card.RecipientEmail)
	assert.WithinDuration(t, time.Now().Add(365*24*time.Hour), card.ExpiresAt, time.Minute)

	_, err = env.giftCards.Purchase(sender.ID, PurchaseGiftCardInput{Amount: decimal.NewFromInt(1), RecipientEmail: "a@example.com"})
	assert.ErrorIs(t, err, ErrInvalidGiftCardAmount)

	_, err = env.giftCards.Purchase(sender.ID, PurchaseGiftCardInput{Amount: decimal.NewFromInt(5000), RecipientEmail: "a@example.com"})
	assert.ErrorIs(t, err, ErrInvalidGiftCardAmount)

	_, err = env.giftCards.Purchase(sender.ID, PurchaseGiftCardInput{Amount: decimal.NewFromInt(50), RecipientEmail: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	sent, err := env.giftCards.ListSent(sender.ID)
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	received, err := env.giftCards.ListReceived("FRIEND@example.com")
	require.NoError(t, err)
	assert.Len(t, received, 1)
}

func TestGiftCardService_ApplyAndUnapply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sender := env.createUser(t, "sender@example.com")
	cat := env.createCategory(t, "Shirts")
	shirt := env.createProduct(t, cat.ID, "Linen Shirt", "LS-01", "50.00", 5)

	card, err := env.giftCards.Purchase(sender.ID, PurchaseGiftCardInput{Amount: decimal.NewFromInt(50), RecipientEmail: "friend@example.com"})
	require.NoError(t, err)

	_, err = env.carts.AddItem(ctx, "s1", nil, AddItemInput{ProductID: shirt.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = env.giftCards.Apply(ctx, "s1", card.Code, "someone@example.com")
	assert.ErrorIs(t, err, ErrGiftCardNotOwned)

	view, err := env.giftCards.Apply(ctx, "s1", " "+card.Code+" ", "friend@example.com")
	require.NoError(t, err)
	assert.Equal(t, "120.00", view.Display().Total)
	assert.Equal(t, "70.00", view.Checkout.Display().FinalTotal)

	_, err = env.giftCards.Apply(ctx, "s1", card.Code, "friend@example.com")
	assert.ErrorIs(t, err, cart.ErrGiftCardAlreadyApplied)

	view, err = env.giftCards.Unapply(ctx, "s1", card.Code)
	require.NoError(t, err)
	assert.Empty(t, view.Session.GiftCards)

	_, err = env.giftCards.Validate("GC-NONE", "friend@example.com")
	assert.ErrorIs(t, err, ErrGiftCardNotFound)
}

func TestGiftCardService_ExpireCards(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "sender@example.com")

	expired := &model.GiftCard{
		Code: "GC-OLD", Amount: decimal.NewFromInt(10), ExpiresAt: time.Now().Add(-time.Hour),
		RecipientEmail: "friend@example.com", SenderID: sender.ID,
	}
	live := &model.GiftCard{
		Code: "GC-NEW", Amount: decimal.NewFromInt(10), ExpiresAt: time.Now().Add(time.Hour),
		RecipientEmail: "friend@example.com", SenderID: sender.ID,
	}
	require.NoError(t, env.db.Create(expired).Error)
	require.NoError(t, env.db.Create(live).Error)

	n, err := env.giftCards.ExpireCards(time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = env.giftCards.Validate("GC-OLD", "friend@example.com")
	assert.ErrorIs(t, err, ErrGiftCardExpired)
	_, err = env.giftCards.Validate("gc-new", "friend@example.com")
	assert.NoError(t, err)
}
