package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/storefront/storefront-backend/pkg/pricing"
)

// parseItem reads "price:qty[:pct]". Each item is its own product, so a
// percentage applies to that line only.
func parseItem(productID uint, raw string) (pricing.Item, *pricing.Discount, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return pricing.Item{}, nil, fmt.Errorf("item %q must look like price:qty[:pct]", raw)
	}
	price, err := decimal.NewFromString(parts[0])
	if err != nil || price.IsNegative() {
		return pricing.Item{}, nil, fmt.Errorf("item %q: invalid price", raw)
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil || qty < 1 {
		return pricing.Item{}, nil, fmt.Errorf("item %q: quantity must be at least 1", raw)
	}
	item := pricing.Item{ProductID: productID, UnitPrice: price, Quantity: qty}

	if len(parts) == 2 {
		return item, nil, nil
	}
	pct, err := decimal.NewFromString(parts[2])
	if err != nil || pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return pricing.Item{}, nil, fmt.Errorf("item %q: percentage must be 0-100", raw)
	}
	return item, &pricing.Discount{ProductID: productID, Percentage: pct}, nil
}

// storefrontctl quote --item 50:2:10 --item 30:1 --gift 50
func newQuoteCmd() *cobra.Command {
	var (
		items   []string
		gifts   []string
		taxRate float64
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a cart the way checkout does",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				lines     []pricing.Item
				discounts []pricing.Discount
				cards     []pricing.GiftCard
			)
			for i, raw := range items {
				item, d, err := parseItem(uint(i+1), raw)
				if err != nil {
					return err
				}
				lines = append(lines, item)
				if d != nil {
					discounts = append(discounts, *d)
				}
			}
			for _, raw := range gifts {
				amount, err := decimal.NewFromString(raw)
				if err != nil || !amount.IsPositive() {
					return fmt.Errorf("gift card %q: amount must be positive", raw)
				}
				cards = append(cards, pricing.GiftCard{Amount: amount})
			}

			d := pricing.NewCalculator(taxRate).Checkout(lines, discounts, cards).Display()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(w, "Subtotal\t%s\t\n", d.Subtotal)
			fmt.Fprintf(w, "Tax\t%s\t\n", d.Tax)
			fmt.Fprintf(w, "Discounts\t-%s\t\n", d.DiscountTotal)
			fmt.Fprintf(w, "Total\t%s\t\n", d.Total)
			fmt.Fprintf(w, "Gift cards\t-%s\t\n", d.GiftCardTotal)
			fmt.Fprintf(w, "To pay\t%s\t\n", d.FinalTotal)
			return w.Flush()
		},
	}

	cmd.Flags().StringArrayVar(&items, "item", nil, "cart line price:qty[:pct] (repeatable)")
	cmd.Flags().StringArrayVar(&gifts, "gift", nil, "gift card amount (repeatable)")
	cmd.Flags().Float64Var(&taxRate, "tax", pricing.DefaultTaxRate.InexactFloat64(), "tax rate on the pre-discount subtotal")
	return cmd
}
