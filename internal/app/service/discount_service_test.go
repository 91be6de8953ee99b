package service

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountService_CreateKey(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory(t, "Shirts")
	shirt := env.createProduct(t, cat.ID, "Linen Shirt", "LS-01", "50.00", 5)

	key, err := env.discounts.CreateKey(DiscountKeyInput{Tier: model.TierPremium, ProductID: shirt.ID})
	require.NoError(t, err)
	assert.Regexp(t, `^DK-[0-9A-Z]{4}-[0-9A-Z]{4}$`, key.Code)
	assert.Equal(t, "20", key.Percentage.String())
	assert.True(t, key.Active)

	named, err := env.discounts.CreateKey(DiscountKeyInput{Code: "summer10", Tier: model.TierStandard, ProductID: shirt.ID})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", named.Code)

	_, err = env.discounts.CreateKey(DiscountKeyInput{Code: "SUMMER10", Tier: model.TierStandard, ProductID: shirt.ID})
	assert.ErrorIs(t, err, ErrDiscountCodeExists)

	_, err = env.discounts.CreateKey(DiscountKeyInput{Tier: "gold", ProductID: shirt.ID})
	assert.ErrorIs(t, err, ErrInvalidDiscountTier)

	_, err = env.discounts.CreateKey(DiscountKeyInput{Tier: model.TierStandard, ProductID: 999})
	assert.ErrorIs(t, err, ErrProductNotFound)

	keys, err := env.discounts.ListKeysForProduct(shirt.ID)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestDiscountService_Redeem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cat := env.createCategory(t, "Shirts")
	shirt := env.createProduct(t, cat.ID, "Linen Shirt", "LS-01", "50.00", 5)
	hat := env.createProduct(t, cat.ID, "Bucket Hat", "BH-01", "30.00", 5)

	_, err := env.carts.AddItem(ctx, "s1", nil, AddItemInput{ProductID: shirt.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, "s1", nil, AddItemInput{ProductID: hat.ID, Quantity: 1})
	require.NoError(t, err)

	key, err := env.discounts.CreateKey(DiscountKeyInput{Code: "TEN", Tier: model.TierStandard, ProductID: shirt.ID})
	require.NoError(t, err)

	view, err := env.discounts.Redeem(ctx, "s1", "ten")
	require.NoError(t, err)
	disp := view.Display()
	assert.Equal(t, "130.00", disp.Subtotal)
	assert.Equal(t, "26.00", disp.Tax, "tax is charged on the pre-discount subtotal")
	assert.Equal(t, "10.00", disp.DiscountTotal)
	assert.Equal(t, "146.00", disp.Total)

	_, err = env.discounts.Redeem(ctx, "s1", "TEN")
	assert.ErrorIs(t, err, cart.ErrDiscountAlreadyApplied)

	view, err = env.discounts.RemoveDiscount(ctx, "s1", shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, "156.00", view.Display().Total)

	require.NoError(t, env.discounts.DeactivateKey(key.ID))
	_, err = env.discounts.Redeem(ctx, "s1", "TEN")
	assert.ErrorIs(t, err, ErrDiscountInactive)

	_, err = env.discounts.Redeem(ctx, "s1", "NOPE")
	assert.ErrorIs(t, err, ErrDiscountNotFound)
}

func TestDiscountService_Redeem_ProductNotInCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cat := env.createCategory(t, "Shirts")
	shirt := env.createProduct(t, cat.ID, "Linen Shirt", "LS-01", "50.00", 5)

	_, err := env.discounts.CreateKey(DiscountKeyInput{Code: "TEN", Tier: model.TierStandard, ProductID: shirt.ID})
	require.NoError(t, err)

	_, err = env.discounts.Redeem(ctx, "empty", "TEN")
	assert.ErrorIs(t, err, cart.ErrProductNotInCart)
}

func TestDiscountService_ExpireKeys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cat := env.createCategory(t, "Shirts")
	shirt := env.createProduct(t, cat.ID, "Linen Shirt", "LS-01", "50.00", 5)
	_, err := env.carts.AddItem(ctx, "s1", nil, AddItemInput{ProductID: shirt.ID, Quantity: 1})
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	_, err = env.discounts.CreateKey(DiscountKeyInput{Code: "OLD", Tier: model.TierStandard, ProductID: shirt.ID, ExpiresAt: &past})
	require.NoError(t, err)
	_, err = env.discounts.CreateKey(DiscountKeyInput{Code: "NEW", Tier: model.TierExclusive, ProductID: shirt.ID, ExpiresAt: &future})
	require.NoError(t, err)

	_, err = env.discounts.Redeem(ctx, "s1", "OLD")
	assert.ErrorIs(t, err, ErrDiscountExpired)

	n, err := env.discounts.ExpireKeys(time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	view, err := env.discounts.Redeem(ctx, "s1", "NEW")
	require.NoError(t, err)
	assert.Equal(t, "15.00", view.Display().DiscountTotal)
}
