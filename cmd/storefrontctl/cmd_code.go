package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront/storefront-backend/pkg/productcode"
)

// storefrontctl code --name "Linen Shirt" --category 3 --attr Size=M
func newCodeCmd() *cobra.Command {
	var (
		name     string
		category string
		attrs    []string
	)

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Generate a product code",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseAttrs(attrs)
			if err != nil {
				return err
			}
			input := make([]productcode.Attribute, len(parsed))
			for i, a := range parsed {
				input[i] = productcode.Attribute{Name: a.Name, Values: a.Values}
			}

			code, err := productcode.New().Generate(name, category, input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&category, "category", "", "category id")
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "attribute Name=value[,value] (repeatable)")
	return cmd
}
