package repository

import (
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type GiftCardRepository interface {
	Create(card *model.GiftCard) error
	FindByCode(code string) (*model.GiftCard, error)
	FindBySender(senderID uint) ([]model.GiftCard, error)
	FindByRecipient(email string) ([]model.GiftCard, error)
	// MarkExpired flags unused cards whose expiry has passed.
	MarkExpired(now time.Time) (int64, error)
}

type giftCardRepository struct {
	db *gorm.DB
}

func NewGiftCardRepository(db *gorm.DB) GiftCardRepository {
	return &giftCardRepository{db: db}
}

func (r *giftCardRepository) Create(card *model.GiftCard) error {
	logger.Debug("Creating gift card in database", map[string]interface{}{
		"sender_id": card.SenderID,
		"amount":    card.Amount.String(),
	})

	if err := r.db.Create(card).Error; err != nil {
		logger.Error("Failed to create gift card in database", err, map[string]interface{}{
			"sender_id": card.SenderID,
		})
		return err
	}

	logger.Debug("Gift card created in database", map[string]interface{}{
		"gift_card_id": card.ID,
	})
	return nil
}

func (r *giftCardRepository) FindByCode(code string) (*model.GiftCard, error) {
	var card model.GiftCard
	if err := r.db.Where("code = ?", code).First(&card).Error; err != nil {
		logger.Error("Failed to find gift card by code in database", err)
		return nil, err
	}
	return &card, nil
}

func (r *giftCardRepository) FindBySender(senderID uint) ([]model.GiftCard, error) {
	var cards []model.GiftCard
	if err := r.db.Where("sender_id = ?", senderID).Order("created_at DESC").Find(&cards).Error; err != nil {
		logger.Error("Failed to find gift cards by sender", err, map[string]interface{}{
			"sender_id": senderID,
		})
		return nil, err
	}
	return cards, nil
}

func (r *giftCardRepository) FindByRecipient(email string) ([]model.GiftCard, error) {
	var cards []model.GiftCard
	if err := r.db.Where("LOWER(recipient_email) = LOWER(?)", email).Order("created_at DESC").Find(&cards).Error; err != nil {
		logger.Error("Failed to find gift cards by recipient", err, map[string]interface{}{
			"recipient_email": email,
		})
		return nil, err
	}
	return cards, nil
}

func (r *giftCardRepository) MarkExpired(now time.Time) (int64, error) {
	result := r.db.Model(&model.GiftCard{}).
		Where("used = ? AND expired = ? AND expires_at <= ?", false, false, now).
		Update("expired", true)
	if result.Error != nil {
		logger.Error("Failed to mark expired gift cards", result.Error)
		return 0, result.Error
	}

	logger.Debug("Expired gift cards marked", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
