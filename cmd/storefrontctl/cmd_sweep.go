package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/internal/scheduler"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"github.com/storefront/storefront-backend/pkg/redis"
)

// storefrontctl sweep gift_card_expiry discount_expiry stale_cart_purge
func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "sweep [job...]",
		Short:     "Run maintenance jobs once, outside the server's schedule",
		ValidArgs: []string{scheduler.JobGiftCardExpiry, scheduler.JobDiscountExpiry, scheduler.JobStaleCartPurge},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := db.Initialize(&cfg.Database); err != nil {
				return err
			}
			defer db.Close()
			if err := redis.Init(&cfg.Redis); err != nil {
				return err
			}
			defer redis.Close()

			jobs := args
			if len(jobs) == 0 {
				jobs = []string{scheduler.JobGiftCardExpiry, scheduler.JobDiscountExpiry, scheduler.JobStaleCartPurge}
			}

			database := db.GetDB()
			var sessions repository.CartSessionRepository = repository.NewCartSessionRepository(database)
			if client := redis.GetClient(); client != nil {
				sessions = redis.NewCartStore(client, cfg.Checkout.CartTTL)
			}
			productRepo := repository.NewProductRepository(database)
			calc := pricing.NewCalculator(cfg.Checkout.TaxRate)

			s := scheduler.NewMaintenanceScheduler(
				cfg.Scheduler,
				cfg.Checkout.CartTTL,
				service.NewGiftCardService(repository.NewGiftCardRepository(database), sessions, calc, service.GiftCardPolicy{
					MinAmount: decimal.NewFromFloat(cfg.Checkout.MinGiftCard),
					MaxAmount: decimal.NewFromFloat(cfg.Checkout.MaxGiftCard),
					Validity:  cfg.Checkout.GiftCardValidity,
				}),
				service.NewDiscountService(repository.NewDiscountRepository(database), productRepo, sessions, calc),
				service.NewCartService(sessions, productRepo, repository.NewVariantRepository(database), calc),
			)

			for _, job := range jobs {
				n, err := s.Run(job)
				if err != nil {
					return fmt.Errorf("%s: %w", job, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d affected\n", job, n)
			}
			return nil
		},
	}
}
