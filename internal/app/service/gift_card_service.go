package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/cart"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"github.com/storefront/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrGiftCardNotFound      = errors.New("gift card not found")
	ErrGiftCardUsed          = errors.New("gift card already used")
	ErrGiftCardExpired       = errors.New("gift card has expired")
	ErrGiftCardNotOwned      = errors.New("gift card belongs to another recipient")
	ErrInvalidGiftCardAmount = errors.New("gift card amount out of range")
	ErrInvalidRecipient      = errors.New("invalid recipient email")
)

// GiftCardPolicy bounds purchases.
type GiftCardPolicy struct {
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	Validity  time.Duration
}

func DefaultGiftCardPolicy() GiftCardPolicy {
	return GiftCardPolicy{
		MinAmount: decimal.NewFromInt(5),
		MaxAmount: decimal.NewFromInt(1000),
		Validity:  365 * 24 * time.Hour,
	}
}

type PurchaseGiftCardInput struct {
	Amount         decimal.Decimal
	RecipientEmail string
	Message        string
}

type GiftCardService interface {
	Purchase(senderID uint, input PurchaseGiftCardInput) (*model.GiftCard, error)
	ListSent(senderID uint) ([]model.GiftCard, error)
	ListReceived(email string) ([]model.GiftCard, error)
	// Validate loads the card and checks it can be redeemed by email now.
	Validate(code, email string) (*model.GiftCard, error)
	Apply(ctx context.Context, sessionID, code, email string) (*CartView, error)
	Unapply(ctx context.Context, sessionID, code string) (*CartView, error)
	ExpireCards(now time.Time) (int64, error)
}

type giftCardService struct {
	sessionStore
	giftCardRepo repository.GiftCardRepository
	policy       GiftCardPolicy
}

func NewGiftCardService(
	giftCardRepo repository.GiftCardRepository,
	sessions repository.CartSessionRepository,
	calc pricing.Calculator,
	policy GiftCardPolicy,
) GiftCardService {
	return &giftCardService{
		sessionStore: sessionStore{repo: sessions, calc: calc},
		giftCardRepo: giftCardRepo,
		policy:       policy,
	}
}

// CheckGiftCard reports why card cannot be redeemed by email at now.
func CheckGiftCard(card *model.GiftCard, email string, now time.Time) error {
	if card.Used {
		return ErrGiftCardUsed
	}
	if card.Expired || card.IsExpired(now) {
		return ErrGiftCardExpired
	}
	if !strings.EqualFold(strings.TrimSpace(card.RecipientEmail), strings.TrimSpace(email)) {
		return ErrGiftCardNotOwned
	}
	return nil
}

func normalizeGiftCardCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *giftCardService) Purchase(senderID uint, input PurchaseGiftCardInput) (*model.GiftCard, error) {
	logger.Info("Purchasing gift card", map[string]interface{}{
		"sender_id": senderID,
		"amount":    input.Amount.String(),
	})

	if input.Amount.LessThan(s.policy.MinAmount) || input.Amount.GreaterThan(s.policy.MaxAmount) {
		return nil, fmt.Errorf("%w: must be between %s and %s", ErrInvalidGiftCardAmount,
			s.policy.MinAmount.StringFixed(2), s.policy.MaxAmount.StringFixed(2))
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(input.RecipientEmail))
	if err != nil {
		return nil, ErrInvalidRecipient
	}

	card := &model.GiftCard{
		Code:           util.GenerateCode("GC", 3, 4),
		Amount:         input.Amount,
		ExpiresAt:      time.Now().Add(s.policy.Validity),
		RecipientEmail: strings.ToLower(addr.Address),
		Message:        input.Message,
		SenderID:       senderID,
	}
	if err := s.giftCardRepo.Create(card); err != nil {
		logger.Error("Failed to create gift card", err, map[string]interface{}{
			"sender_id": senderID,
		})
		return nil, err
	}

	logger.Info("Gift card purchased", map[string]interface{}{
		"gift_card_id": card.ID,
		"sender_id":    senderID,
	})
	return card, nil
}

func (s *giftCardService) ListSent(senderID uint) ([]model.GiftCard, error) {
	return s.giftCardRepo.FindBySender(senderID)
}

func (s *giftCardService) ListReceived(email string) ([]model.GiftCard, error) {
	return s.giftCardRepo.FindByRecipient(email)
}

func (s *giftCardService) Validate(code, email string) (*model.GiftCard, error) {
	card, err := s.giftCardRepo.FindByCode(normalizeGiftCardCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGiftCardNotFound
		}
		return nil, err
	}
	if err := CheckGiftCard(card, email, time.Now()); err != nil {
		logger.Warn("Gift card rejected", map[string]interface{}{
			"gift_card_id": card.ID,
			"error":        err.Error(),
		})
		return nil, err
	}
	return card, nil
}

func (s *giftCardService) Apply(ctx context.Context, sessionID, code, email string) (*CartView, error) {
	card, err := s.Validate(code, email)
	if err != nil {
		return nil, err
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, err := session.ApplyGiftCard(cart.GiftCard{
		Code:      card.Code,
		Amount:    card.Amount,
		ExpiresAt: card.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	return s.save(ctx, next)
}

func (s *giftCardService) Unapply(ctx context.Context, sessionID, code string) (*CartView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, err := session.RemoveGiftCard(normalizeGiftCardCode(code))
	if err != nil {
		return nil, err
	}
	return s.save(ctx, next)
}

func (s *giftCardService) ExpireCards(now time.Time) (int64, error) {
	return s.giftCardRepo.MarkExpired(now)
}
