// Package pricing computes cart and checkout totals. All arithmetic is exact
// decimal; values are rounded to cents only by Display.
package pricing

import (
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is applied to the pre-discount subtotal.
var DefaultTaxRate = decimal.RequireFromString("0.20")

var hundred = decimal.NewFromInt(100)

// Item is one cart line.
type Item struct {
	ProductID uint
	UnitPrice decimal.Decimal
	Quantity  int
}

// Discount is a percentage reduction on every line of one product.
type Discount struct {
	ProductID  uint
	Percentage decimal.Decimal
	Code       string
}

// GiftCard is a fixed amount deducted from the checkout total.
type GiftCard struct {
	Code   string
	Amount decimal.Decimal
}

// Line is the priced form of an Item.
type Line struct {
	ProductID    uint            `json:"product_id"`
	Quantity     int             `json:"quantity"`
	Gross        decimal.Decimal `json:"gross"`
	Discount     decimal.Decimal `json:"discount"`
	Net          decimal.Decimal `json:"net"`
	DiscountCode string          `json:"discount_code,omitempty"`
}

// Summary holds unrounded totals.
type Summary struct {
	Lines         []Line          `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	GiftCardTotal decimal.Decimal `json:"gift_card_total"`
	FinalTotal    decimal.Decimal `json:"final_total"`
}

// Calculator carries the tax policy.
type Calculator struct {
	TaxRate decimal.Decimal
}

func NewCalculator(taxRate float64) Calculator {
	return Calculator{TaxRate: decimal.NewFromFloat(taxRate)}
}

// Default returns a Calculator using DefaultTaxRate.
func Default() Calculator {
	return Calculator{TaxRate: DefaultTaxRate}
}

// Cart prices items with their discounts. FinalTotal equals Total.
func (c Calculator) Cart(items []Item, discounts []Discount) Summary {
	return c.Checkout(items, discounts, nil)
}

// Checkout prices items, then deducts gift cards from the total, flooring
// the final amount at zero. Inputs are not modified.
func (c Calculator) Checkout(items []Item, discounts []Discount, cards []GiftCard) Summary {
	s := Summary{
		Lines:         make([]Line, 0, len(items)),
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		GiftCardTotal: decimal.Zero,
	}

	for _, it := range items {
		gross := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		line := Line{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Gross:     gross,
			Discount:  decimal.Zero,
			Net:       gross,
		}
		if d, ok := discountFor(it.ProductID, discounts); ok {
			line.Discount = gross.Mul(d.Percentage).Div(hundred)
			line.Net = gross.Sub(line.Discount)
			line.DiscountCode = d.Code
		}

		s.Lines = append(s.Lines, line)
		s.Subtotal = s.Subtotal.Add(gross)
		s.DiscountTotal = s.DiscountTotal.Add(line.Discount)
	}

	s.Tax = s.Subtotal.Mul(c.TaxRate)
	s.Total = s.Subtotal.Add(s.Tax).Sub(s.DiscountTotal)

	for _, g := range cards {
		s.GiftCardTotal = s.GiftCardTotal.Add(g.Amount)
	}
	s.FinalTotal = decimal.Max(decimal.Zero, s.Total.Sub(s.GiftCardTotal))
	return s
}

// discountFor returns the first discount targeting productID.
func discountFor(productID uint, discounts []Discount) (Discount, bool) {
	for _, d := range discounts {
		if d.ProductID == productID {
			return d, true
		}
	}
	return Discount{}, false
}

// Display is a Summary rounded to cents for presentation.
type Display struct {
	Subtotal      string `json:"subtotal"`
	DiscountTotal string `json:"discount_total"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
	GiftCardTotal string `json:"gift_card_total"`
	FinalTotal    string `json:"final_total"`
}

func (s Summary) Display() Display {
	return Display{
		Subtotal:      Format(s.Subtotal),
		DiscountTotal: Format(s.DiscountTotal),
		Tax:           Format(s.Tax),
		Total:         Format(s.Total),
		GiftCardTotal: Format(s.GiftCardTotal),
		FinalTotal:    Format(s.FinalTotal),
	}
}

// Format rounds half away from zero to two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Round returns d rounded to cents, for persisting amounts.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
