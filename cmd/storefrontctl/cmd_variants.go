package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"github.com/storefront/storefront-backend/pkg/variant"
)

// storefrontctl variants --base LS-01 --price 50 --attr Size=S,M --attr Color=Red,Blue
func newVariantsCmd() *cobra.Command {
	var (
		base  string
		price string
		stock int
		attrs []string
		count bool
		limit int
	)

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "Preview the variants a set of attribute selections produces",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseAttrs(attrs)
			if err != nil {
				return err
			}
			input := make([]variant.Attribute, len(parsed))
			for i, a := range parsed {
				input[i] = variant.Attribute{Name: a.Name, Values: a.Values}
			}

			if count {
				n, err := variant.CountWithin(input, limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			}

			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid --price: %w", err)
			}
			variants, err := variant.GenerateWithin(variant.Base{SKU: base, Price: p, Stock: stock}, input, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SKU\tPRICE\tSTOCK\tATTRIBUTES")
			for _, v := range variants {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", v.SKU, pricing.Format(v.Price), v.Stock, formatAttributes(v.Attributes, parsed))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&base, "base", "SKU", "base SKU the variant SKUs extend")
	cmd.Flags().StringVar(&price, "price", "0", "base price copied to every variant")
	cmd.Flags().IntVar(&stock, "stock", 0, "stock copied to every variant")
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "attribute selection Name=v1,v2 (repeatable, outermost first)")
	cmd.Flags().BoolVar(&count, "count", false, "print only the number of variants")
	cmd.Flags().IntVar(&limit, "max", variant.DefaultMaxCombinations, "refuse selections with more combinations than this")
	return cmd
}

func formatAttributes(m map[string]string, order []namedValues) string {
	parts := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, a := range order {
		if v, ok := m[a.Name]; ok {
			parts = append(parts, a.Name+"="+v)
			seen[a.Name] = true
		}
	}
	var rest []string
	for k, v := range m {
		if !seen[k] {
			rest = append(rest, k+"="+v)
		}
	}
	sort.Strings(rest)
	return strings.Join(append(parts, rest...), " ")
}
