// Package cart holds a shopping session as a plain value. Every mutation
// returns a new Session and leaves the receiver untouched, so a failed
// operation never corrupts the state it started from.
package cart

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/pkg/pricing"
)

var (
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrItemNotFound           = errors.New("item not in cart")
	ErrProductNotInCart       = errors.New("discounted product is not in the cart")
	ErrDiscountAlreadyApplied = errors.New("discount already applied to this product")
	ErrGiftCardAlreadyApplied = errors.New("gift card already applied")
	ErrGiftCardNotApplied     = errors.New("gift card not applied")
	ErrSessionNotFound        = errors.New("cart session not found")
)

// Key identifies a line: the same product in a different size, color or
// variant is a different line.
type Key struct {
	ProductID   uint   `json:"product_id"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	ProductCode string `json:"product_code"`
}

type Item struct {
	ProductID   uint            `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Quantity    int             `json:"quantity"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	ProductCode string          `json:"product_code,omitempty"`
}

func (i Item) Key() Key {
	return Key{
		ProductID:   i.ProductID,
		Size:        strings.TrimSpace(i.Size),
		Color:       strings.TrimSpace(i.Color),
		ProductCode: strings.TrimSpace(i.ProductCode),
	}
}

// Discount is an active discount key redeemed against one product.
type Discount struct {
	Tier       string          `json:"tier"`
	Percentage decimal.Decimal `json:"percentage"`
	Code       string          `json:"code"`
	ProductID  uint            `json:"product_id"`
}

type GiftCard struct {
	Code      string          `json:"code"`
	Amount    decimal.Decimal `json:"amount"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type Session struct {
	ID        string     `json:"id"`
	UserID    *uint      `json:"user_id,omitempty"`
	Items     []Item     `json:"items"`
	Discounts []Discount `json:"discounts"`
	GiftCards []GiftCard `json:"gift_cards"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func New(id string) Session {
	return Session{
		ID:        id,
		Items:     []Item{},
		Discounts: []Discount{},
		GiftCards: []GiftCard{},
	}
}

func (s Session) clone() Session {
	c := s
	c.Items = append([]Item{}, s.Items...)
	c.Discounts = append([]Discount{}, s.Discounts...)
	c.GiftCards = append([]GiftCard{}, s.GiftCards...)
	return c
}

func (s Session) IsEmpty() bool {
	return len(s.Items) == 0
}

// ItemCount is the number of units across all lines.
func (s Session) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// QuantityOf sums the units of a product across its lines.
func (s Session) QuantityOf(productID uint) int {
	n := 0
	for _, it := range s.Items {
		if it.ProductID == productID {
			n += it.Quantity
		}
	}
	return n
}

// UnitsOf sums the units drawing on one stock: the variant with SKU code,
// or the product's own stock when code is empty. Lines that differ only in
// free-form size or color share that stock.
func (s Session) UnitsOf(productID uint, code string) int {
	code = strings.TrimSpace(code)
	n := 0
	for _, it := range s.Items {
		if it.ProductID == productID && strings.TrimSpace(it.ProductCode) == code {
			n += it.Quantity
		}
	}
	return n
}

func (s Session) HasProduct(productID uint) bool {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (s Session) indexOf(key Key) int {
	for i, it := range s.Items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

// Find returns the line for key.
func (s Session) Find(key Key) (Item, bool) {
	if i := s.indexOf(key); i >= 0 {
		return s.Items[i], true
	}
	return Item{}, false
}

// AddItem merges into an existing line with the same key or appends one.
func (s Session) AddItem(item Item) (Session, error) {
	if item.Quantity < 1 {
		return s, ErrInvalidQuantity
	}
	next := s.clone()
	if i := next.indexOf(item.Key()); i >= 0 {
		next.Items[i].Quantity += item.Quantity
		return next, nil
	}
	next.Items = append(next.Items, item)
	return next, nil
}

func (s Session) UpdateQuantity(key Key, quantity int) (Session, error) {
	if quantity < 1 {
		return s, ErrInvalidQuantity
	}
	i := s.indexOf(key)
	if i < 0 {
		return s, ErrItemNotFound
	}
	next := s.clone()
	next.Items[i].Quantity = quantity
	return next, nil
}

// RemoveItem drops a line, and the product's discounts once no line for the
// product remains.
func (s Session) RemoveItem(key Key) (Session, error) {
	i := s.indexOf(key)
	if i < 0 {
		return s, ErrItemNotFound
	}
	next := s.clone()
	next.Items = append(next.Items[:i], next.Items[i+1:]...)
	if !next.HasProduct(key.ProductID) {
		next = next.RemoveDiscount(key.ProductID)
	}
	return next, nil
}

func (s Session) ApplyDiscount(d Discount) (Session, error) {
	if !s.HasProduct(d.ProductID) {
		return s, ErrProductNotInCart
	}
	for _, existing := range s.Discounts {
		if existing.ProductID == d.ProductID {
			return s, ErrDiscountAlreadyApplied
		}
	}
	next := s.clone()
	next.Discounts = append(next.Discounts, d)
	return next, nil
}

func (s Session) RemoveDiscount(productID uint) Session {
	next := s.clone()
	kept := next.Discounts[:0]
	for _, d := range next.Discounts {
		if d.ProductID != productID {
			kept = append(kept, d)
		}
	}
	next.Discounts = kept
	return next
}

func (s Session) ApplyGiftCard(g GiftCard) (Session, error) {
	for _, existing := range s.GiftCards {
		if strings.EqualFold(existing.Code, g.Code) {
			return s, ErrGiftCardAlreadyApplied
		}
	}
	next := s.clone()
	next.GiftCards = append(next.GiftCards, g)
	return next, nil
}

func (s Session) RemoveGiftCard(code string) (Session, error) {
	next := s.clone()
	for i, g := range next.GiftCards {
		if strings.EqualFold(g.Code, code) {
			next.GiftCards = append(next.GiftCards[:i], next.GiftCards[i+1:]...)
			return next, nil
		}
	}
	return s, ErrGiftCardNotApplied
}

// Clear empties items, discounts and gift cards, keeping identity.
func (s Session) Clear() Session {
	c := New(s.ID)
	c.UserID = s.UserID
	return c
}

// PricingItems converts lines for the pricing calculator.
func (s Session) PricingItems() []pricing.Item {
	items := make([]pricing.Item, len(s.Items))
	for i, it := range s.Items {
		items[i] = pricing.Item{ProductID: it.ProductID, UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}
	return items
}

func (s Session) PricingDiscounts() []pricing.Discount {
	ds := make([]pricing.Discount, len(s.Discounts))
	for i, d := range s.Discounts {
		ds[i] = pricing.Discount{ProductID: d.ProductID, Percentage: d.Percentage, Code: d.Code}
	}
	return ds
}

func (s Session) PricingGiftCards() []pricing.GiftCard {
	gs := make([]pricing.GiftCard, len(s.GiftCards))
	for i, g := range s.GiftCards {
		gs[i] = pricing.GiftCard{Code: g.Code, Amount: g.Amount}
	}
	return gs
}

// Quote prices the cart without gift cards.
func (s Session) Quote(calc pricing.Calculator) pricing.Summary {
	return calc.Cart(s.PricingItems(), s.PricingDiscounts())
}

// CheckoutQuote prices the cart with the applied gift cards deducted.
func (s Session) CheckoutQuote(calc pricing.Calculator) pricing.Summary {
	return calc.Checkout(s.PricingItems(), s.PricingDiscounts(), s.PricingGiftCards())
}
