package repository

import (
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type DiscountRepository interface {
	Create(key *model.DiscountKey) error
	FindAll() ([]model.DiscountKey, error)
	FindByProductID(productID uint) ([]model.DiscountKey, error)
	FindByCode(code string) (*model.DiscountKey, error)
	Deactivate(id uint) error
	// DeactivateExpired switches off active keys whose expiry is at or before now.
	DeactivateExpired(now time.Time) (int64, error)
}

type discountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) Create(key *model.DiscountKey) error {
	logger.Debug("Creating discount key in database", map[string]interface{}{
		"code":       key.Code,
		"tier":       key.Tier,
		"product_id": key.ProductID,
	})

	if err := r.db.Create(key).Error; err != nil {
		logger.Error("Failed to create discount key in database", err, map[string]interface{}{
			"code": key.Code,
		})
		return err
	}

	logger.Debug("Discount key created in database", map[string]interface{}{
		"discount_key_id": key.ID,
	})
	return nil
}

func (r *discountRepository) FindAll() ([]model.DiscountKey, error) {
	var keys []model.DiscountKey
	if err := r.db.Order("created_at DESC").Find(&keys).Error; err != nil {
		logger.Error("Failed to list discount keys", err)
		return nil, err
	}
	return keys, nil
}

func (r *discountRepository) FindByProductID(productID uint) ([]model.DiscountKey, error) {
	var keys []model.DiscountKey
	if err := r.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&keys).Error; err != nil {
		logger.Error("Failed to list discount keys by product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return keys, nil
}

func (r *discountRepository) FindByCode(code string) (*model.DiscountKey, error) {
	logger.Debug("Finding discount key by code in database", map[string]interface{}{
		"code": code,
	})

	var key model.DiscountKey
	if err := r.db.Where("UPPER(code) = UPPER(?)", code).First(&key).Error; err != nil {
		logger.Error("Failed to find discount key by code in database", err, map[string]interface{}{
			"code": code,
		})
		return nil, err
	}
	return &key, nil
}

func (r *discountRepository) Deactivate(id uint) error {
	result := r.db.Model(&model.DiscountKey{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate discount key", result.Error, map[string]interface{}{
			"discount_key_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *discountRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&model.DiscountKey{}).
		Where("active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Update("active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate expired discount keys", result.Error)
		return 0, result.Error
	}

	logger.Debug("Expired discount keys deactivated", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
