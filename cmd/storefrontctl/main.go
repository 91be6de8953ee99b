package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "storefrontctl",
	Short:         "Storefront admin CLI",
	Long:          "storefrontctl previews variants, product codes and cart totals offline, and runs maintenance sweeps against the database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Catalog
	rootCmd.AddCommand(newVariantsCmd())
	rootCmd.AddCommand(newCodeCmd())

	// Pricing
	rootCmd.AddCommand(newQuoteCmd())

	// Maintenance
	rootCmd.AddCommand(newSweepCmd())
}
