package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/cart"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"github.com/storefront/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrDiscountNotFound    = errors.New("discount key not found")
	ErrDiscountInactive    = errors.New("discount key is not active")
	ErrDiscountExpired     = errors.New("discount key has expired")
	ErrInvalidDiscountTier = errors.New("invalid discount tier")
	ErrDiscountCodeExists  = errors.New("discount code already exists")
)

type DiscountKeyInput struct {
	Code      string
	Tier      model.DiscountTier
	ProductID uint
	ExpiresAt *time.Time
}

type DiscountService interface {
	CreateKey(input DiscountKeyInput) (*model.DiscountKey, error)
	ListKeys() ([]model.DiscountKey, error)
	ListKeysForProduct(productID uint) ([]model.DiscountKey, error)
	DeactivateKey(id uint) error
	// Redeem applies the key's tier percentage to its product in the cart.
	Redeem(ctx context.Context, sessionID, code string) (*CartView, error)
	RemoveDiscount(ctx context.Context, sessionID string, productID uint) (*CartView, error)
	ExpireKeys(now time.Time) (int64, error)
}

type discountService struct {
	sessionStore
	discountRepo repository.DiscountRepository
	productRepo  repository.ProductRepository
}

func NewDiscountService(
	discountRepo repository.DiscountRepository,
	productRepo repository.ProductRepository,
	sessions repository.CartSessionRepository,
	calc pricing.Calculator,
) DiscountService {
	return &discountService{
		sessionStore: sessionStore{repo: sessions, calc: calc},
		discountRepo: discountRepo,
		productRepo:  productRepo,
	}
}

func (s *discountService) CreateKey(input DiscountKeyInput) (*model.DiscountKey, error) {
	if !input.Tier.Valid() {
		return nil, ErrInvalidDiscountTier
	}
	if _, err := s.productRepo.FindByID(input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		code = util.GenerateCode("DK", 2, 4)
	}
	if _, err := s.discountRepo.FindByCode(code); err == nil {
		return nil, ErrDiscountCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	key := &model.DiscountKey{
		Code:       code,
		Tier:       input.Tier,
		Percentage: input.Tier.Percentage(),
		ProductID:  input.ProductID,
		Active:     true,
		ExpiresAt:  input.ExpiresAt,
	}
	if err := s.discountRepo.Create(key); err != nil {
		logger.Error("Failed to create discount key", err, map[string]interface{}{
			"product_id": input.ProductID,
		})
		return nil, err
	}

	logger.Info("Discount key created", map[string]interface{}{
		"discount_key_id": key.ID,
		"tier":            key.Tier,
		"product_id":      key.ProductID,
	})
	return key, nil
}

func (s *discountService) ListKeys() ([]model.DiscountKey, error) {
	return s.discountRepo.FindAll()
}

func (s *discountService) ListKeysForProduct(productID uint) ([]model.DiscountKey, error) {
	return s.discountRepo.FindByProductID(productID)
}

func (s *discountService) DeactivateKey(id uint) error {
	if err := s.discountRepo.Deactivate(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDiscountNotFound
		}
		return err
	}
	return nil
}

func (s *discountService) Redeem(ctx context.Context, sessionID, code string) (*CartView, error) {
	logger.Info("Redeeming discount key", map[string]interface{}{
		"session_id": sessionID,
	})

	key, err := s.discountRepo.FindByCode(strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscountNotFound
		}
		return nil, err
	}
	if !key.Active {
		return nil, ErrDiscountInactive
	}
	if key.IsExpired(time.Now()) {
		return nil, ErrDiscountExpired
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next, err := session.ApplyDiscount(cart.Discount{
		Tier:       string(key.Tier),
		Percentage: key.Percentage,
		Code:       key.Code,
		ProductID:  key.ProductID,
	})
	if err != nil {
		logger.Warn("Discount key rejected", map[string]interface{}{
			"session_id": sessionID,
			"product_id": key.ProductID,
			"error":      err.Error(),
		})
		return nil, err
	}
	return s.save(ctx, next)
}

func (s *discountService) RemoveDiscount(ctx context.Context, sessionID string, productID uint) (*CartView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, session.RemoveDiscount(productID))
}

func (s *discountService) ExpireKeys(now time.Time) (int64, error) {
	return s.discountRepo.DeactivateExpired(now)
}
