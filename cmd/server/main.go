package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/internal/app/controller"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/internal/router"
	"github.com/storefront/storefront-backend/internal/scheduler"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/payment/simulator"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"github.com/storefront/storefront-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	format := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		format = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      format,
		EnableColor: true,
	})

	logger.Info("Starting storefront backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis is optional; without it cart sessions and token revocation stay in
	// the database and in-process respectively.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Initialize repositories
	database := db.GetDB()
	userRepo := repository.NewUserRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	productRepo := repository.NewProductRepository(database)
	attributeRepo := repository.NewAttributeRepository(database)
	variantRepo := repository.NewVariantRepository(database)
	discountRepo := repository.NewDiscountRepository(database)
	giftCardRepo := repository.NewGiftCardRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	checkoutRepo := repository.NewCheckoutRepository(database)

	var sessions repository.CartSessionRepository = repository.NewCartSessionRepository(database)
	if client := redis.GetClient(); client != nil {
		sessions = redis.NewCartStore(client, cfg.Checkout.CartTTL)
		logger.Info("Cart sessions stored in Redis", nil)
	}

	payments, err := simulator.NewClient(simulator.DefaultConfig())
	if err != nil {
		logger.Fatal("Failed to initialize payment client", err)
	}

	calc := pricing.NewCalculator(cfg.Checkout.TaxRate)
	policy := service.GiftCardPolicy{
		MinAmount: decimal.NewFromFloat(cfg.Checkout.MinGiftCard),
		MaxAmount: decimal.NewFromFloat(cfg.Checkout.MaxGiftCard),
		Validity:  cfg.Checkout.GiftCardValidity,
	}

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, attributeRepo, variantRepo, nil)
	attributeService := service.NewAttributeService(attributeRepo, productRepo, productService)
	variantService := service.NewVariantService(variantRepo, productRepo, attributeRepo, cfg.Variants.MaxCombinations)
	cartService := service.NewCartService(sessions, productRepo, variantRepo, calc)
	discountService := service.NewDiscountService(discountRepo, productRepo, sessions, calc)
	giftCardService := service.NewGiftCardService(giftCardRepo, sessions, calc, policy)
	checkoutService := service.NewCheckoutService(
		database,
		checkoutRepo,
		userRepo,
		orderRepo,
		sessions,
		giftCardService,
		payments,
		calc,
	)
	orderService := service.NewOrderService(orderRepo)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewCategoryController(categoryService),
		controller.NewProductController(productService),
		controller.NewAttributeController(attributeService),
		controller.NewVariantController(variantService),
		controller.NewCartController(cartService),
		controller.NewDiscountController(discountService),
		controller.NewGiftCardController(giftCardService),
		controller.NewCheckoutController(checkoutService),
		controller.NewOrderController(orderService),
		authMiddleware,
		cfg,
	)

	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Scheduler.Enabled {
		maintenance = scheduler.NewMaintenanceScheduler(
			cfg.Scheduler,
			cfg.Checkout.CartTTL,
			giftCardService,
			discountService,
			cartService,
		)
		if err := maintenance.Start(); err != nil {
			logger.Fatal("Failed to start maintenance scheduler", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	if maintenance != nil {
		maintenance.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", err)
	}
	logger.Info("Server stopped successfully")
}
