package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/metrics"
)

const (
	JobGiftCardExpiry = "gift_card_expiry"
	JobDiscountExpiry = "discount_expiry"
	JobStaleCartPurge = "stale_cart_purge"
)

// MaintenanceScheduler runs the periodic sweeps that keep gift cards,
// discount keys and cart sessions tidy.
type MaintenanceScheduler struct {
	cron            *cron.Cron
	cfg             config.SchedulerConfig
	cartTTL         time.Duration
	giftCardService service.GiftCardService
	discountService service.DiscountService
	cartService     service.CartService
	now             func() time.Time
}

func NewMaintenanceScheduler(
	cfg config.SchedulerConfig,
	cartTTL time.Duration,
	giftCardService service.GiftCardService,
	discountService service.DiscountService,
	cartService service.CartService,
) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:            cron.New(),
		cfg:             cfg,
		cartTTL:         cartTTL,
		giftCardService: giftCardService,
		discountService: discountService,
		cartService:     cartService,
		now:             time.Now,
	}
}

// Start registers every job and starts the cron loop.
func (s *MaintenanceScheduler) Start() error {
	jobs := []struct {
		name string
		spec string
	}{
		{JobGiftCardExpiry, s.cfg.GiftCardSweep},
		{JobDiscountExpiry, s.cfg.DiscountSweep},
		{JobStaleCartPurge, s.cfg.StaleCartPurge},
	}

	for _, job := range jobs {
		name := job.name
		if _, err := s.cron.AddFunc(job.spec, func() { s.Run(name) }); err != nil {
			logger.Error("Failed to add cron job", err, map[string]interface{}{
				"job":  name,
				"spec": job.spec,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"gift_card_sweep":  s.cfg.GiftCardSweep,
		"discount_sweep":   s.cfg.DiscountSweep,
		"stale_cart_purge": s.cfg.StaleCartPurge,
	})
	return nil
}

// Stop waits for running jobs to finish.
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Maintenance scheduler stopped", nil)
}

// Run executes one job immediately and records its outcome.
func (s *MaintenanceScheduler) Run(job string) (int64, error) {
	var (
		n   int64
		err error
	)

	switch job {
	case JobGiftCardExpiry:
		n, err = s.giftCardService.ExpireCards(s.now())
	case JobDiscountExpiry:
		n, err = s.discountService.ExpireKeys(s.now())
	case JobStaleCartPurge:
		n, err = s.cartService.PurgeStale(context.Background(), s.cartTTL)
	default:
		logger.Warn("Unknown scheduler job", map[string]interface{}{"job": job})
		return 0, nil
	}

	if err != nil {
		metrics.SchedulerRuns.WithLabelValues(job, "failed").Inc()
		logger.Error("Scheduled job failed", err, map[string]interface{}{"job": job})
		return 0, err
	}

	metrics.SchedulerRuns.WithLabelValues(job, "success").Inc()
	logger.Info("Scheduled job finished", map[string]interface{}{
		"job":      job,
		"affected": n,
	})
	return n, nil
}
