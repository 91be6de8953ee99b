package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shirt(size string, qty int) Item {
	return Item{
		ProductID:   1,
		Name:        "Shirt",
		UnitPrice:   decimal.NewFromInt(50),
		Quantity:    qty,
		Size:        size,
		Color:       "Red",
		ProductCode: "SHIRT-" + size,
	}
}

func TestAddItem_MergesSameKey(t *testing.T) {
	s := New("sess")

	s, err := s.AddItem(shirt("M", 1))
	require.NoError(t, err)
	s, err = s.AddItem(shirt("M", 2))
	require.NoError(t, err)
	s, err = s.AddItem(shirt("L", 1))
	require.NoError(t, err)

	require.Len(t, s.Items, 2)
	assert.Equal(t, 3, s.Items[0].Quantity)
	assert.Equal(t, 1, s.Items[1].Quantity)
	assert.Equal(t, 4, s.QuantityOf(1))
	assert.Equal(t, 4, s.ItemCount())
}

func TestUnitsOf(t *testing.T) {
	s := New("sess")
	for _, it := range []Item{
		shirt("M", 2),
		{ProductID: 1, Quantity: 1, Size: "m", ProductCode: "SHIRT-M"},
		shirt("L", 4),
		{ProductID: 1, Quantity: 3, Size: "XL"},
		{ProductID: 1, Quantity: 1, Size: "S"},
		{ProductID: 2, Quantity: 7, ProductCode: "SHIRT-M"},
	} {
		var err error
		s, err = s.AddItem(it)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, s.UnitsOf(1, "SHIRT-M"))
	assert.Equal(t, 4, s.UnitsOf(1, " SHIRT-L "))
	assert.Equal(t, 4, s.UnitsOf(1, ""))
	assert.Equal(t, 7, s.UnitsOf(2, "SHIRT-M"))
	assert.Zero(t, s.UnitsOf(3, ""))
}

func TestAddItem_InvalidQuantityLeavesStateUntouched(t *testing.T) {
	s, _ := New("sess").AddItem(shirt("M", 1))

	next, err := s.AddItem(shirt("M", 0))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, s, next)
	assert.Equal(t, 1, s.Items[0].Quantity)
}

func TestMutationsDoNotAliasReceiver(t *testing.T) {
	original, _ := New("sess").AddItem(shirt("M", 1))

	updated, err := original.UpdateQuantity(shirt("M", 1).Key(), 5)
	require.NoError(t, err)

	assert.Equal(t, 1, original.Items[0].Quantity)
	assert.Equal(t, 5, updated.Items[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	s, _ := New("sess").AddItem(shirt("M", 1))

	_, err := s.UpdateQuantity(shirt("M", 1).Key(), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.UpdateQuantity(shirt("XL", 1).Key(), 2)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItem_DropsOrphanedDiscount(t *testing.T) {
	s, _ := New("sess").AddItem(shirt("M", 1))
	s, _ = s.AddItem(shirt("L", 1))
	s, err := s.ApplyDiscount(Discount{Tier: "standard", Percentage: decimal.NewFromInt(10), Code: "K1", ProductID: 1})
	require.NoError(t, err)

	s, err = s.RemoveItem(shirt("M", 1).Key())
	require.NoError(t, err)
	assert.Len(t, s.Discounts, 1, "another line for the product remains")

	s, err = s.RemoveItem(shirt("L", 1).Key())
	require.NoError(t, err)
	assert.Empty(t, s.Discounts)
	assert.True(t, s.IsEmpty())

	_, err = s.RemoveItem(shirt("L", 1).Key())
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestApplyDiscount(t *testing.T) {
	s, _ := New("sess").AddItem(shirt("M", 2))
	d := Discount{Tier: "standard", Percentage: decimal.NewFromInt(10), Code: "K1", ProductID: 1}

	_, err := s.ApplyDiscount(Discount{ProductID: 99, Percentage: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrProductNotInCart)

	s, err = s.ApplyDiscount(d)
	require.NoError(t, err)

	_, err = s.ApplyDiscount(d)
	assert.ErrorIs(t, err, ErrDiscountAlreadyApplied)

	s = s.RemoveDiscount(1)
	assert.Empty(t, s.Discounts)
}

func TestGiftCards(t *testing.T) {
	s := New("sess")
	g := GiftCard{Code: "GC-AAAA", Amount: decimal.NewFromInt(50)}

	s, err := s.ApplyGiftCard(g)
	require.NoError(t, err)

	_, err = s.ApplyGiftCard(GiftCard{Code: "gc-aaaa"})
	assert.ErrorIs(t, err, ErrGiftCardAlreadyApplied)

	s, err = s.RemoveGiftCard("GC-AAAA")
	require.NoError(t, err)
	assert.Empty(t, s.GiftCards)

	_, err = s.RemoveGiftCard("GC-AAAA")
	assert.ErrorIs(t, err, ErrGiftCardNotApplied)
}

func TestQuote(t *testing.T) {
	s, _ := New("sess").AddItem(shirt("M", 2))
	s, _ = s.AddItem(Item{ProductID: 2, Name: "Cap", UnitPrice: decimal.NewFromInt(30), Quantity: 1})
	s, _ = s.ApplyDiscount(Discount{Percentage: decimal.NewFromInt(10), Code: "K1", ProductID: 1})
	s, _ = s.ApplyGiftCard(GiftCard{Code: "G1", Amount: decimal.NewFromInt(50)})

	quote := s.Quote(pricing.Default())
	assert.Equal(t, "146.00", pricing.Format(quote.Total))
	assert.Equal(t, "146.00", pricing.Format(quote.FinalTotal))

	checkout := s.CheckoutQuote(pricing.Default())
	assert.Equal(t, "96.00", pricing.Format(checkout.FinalTotal))
}

func TestClear(t *testing.T) {
	uid := uint(7)
	s, _ := New("sess").AddItem(shirt("M", 1))
	s.UserID = &uid

	cleared := s.Clear()
	assert.True(t, cleared.IsEmpty())
	assert.Equal(t, "sess", cleared.ID)
	assert.Equal(t, &uid, cleared.UserID)
	assert.False(t, s.IsEmpty())
}
