package repository

import (
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CheckoutRepository interface {
	FindByID(id string) (*model.CheckoutSession, error)
	Save(session *model.CheckoutSession) error
	Delete(id string) error
}

type checkoutRepository struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) FindByID(id string) (*model.CheckoutSession, error) {
	var session model.CheckoutSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		logger.Error("Failed to find checkout session in database", err, map[string]interface{}{
			"session_id": id,
		})
		return nil, err
	}
	return &session, nil
}

func (r *checkoutRepository) Save(session *model.CheckoutSession) error {
	logger.Debug("Saving checkout session to database", map[string]interface{}{
		"session_id": session.ID,
		"step":       session.Step,
	})

	if err := r.db.Save(session).Error; err != nil {
		logger.Error("Failed to save checkout session to database", err, map[string]interface{}{
			"session_id": session.ID,
		})
		return err
	}
	return nil
}

func (r *checkoutRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.CheckoutSession{}).Error; err != nil {
		logger.Error("Failed to delete checkout session from database", err, map[string]interface{}{
			"session_id": id,
		})
		return err
	}
	return nil
}
