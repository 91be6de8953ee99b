package repository

import (
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type VariantRepository interface {
	FindByProductID(productID uint) ([]model.ProductVariant, error)
	FindByID(id uint) (*model.ProductVariant, error)
	FindBySKU(sku string) (*model.ProductVariant, error)
	// ReplaceForProduct deletes every variant of the product and inserts
	// variants in one transaction.
	ReplaceForProduct(productID uint, variants []model.ProductVariant) error
	Update(variant *model.ProductVariant) error
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) FindByProductID(productID uint) ([]model.ProductVariant, error) {
	logger.Debug("Finding variants by product ID in database", map[string]interface{}{
		"product_id": productID,
	})

	var variants []model.ProductVariant
	if err := r.db.Where("product_id = ?", productID).Order("id ASC").Find(&variants).Error; err != nil {
		logger.Error("Failed to find variants by product ID in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	logger.Debug("Variants found by product ID in database", map[string]interface{}{
		"product_id": productID,
		"count":      len(variants),
	})
	return variants, nil
}

func (r *variantRepository) FindByID(id uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		logger.Error("Failed to find variant by ID in database", err, map[string]interface{}{
			"variant_id": id,
		})
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) FindBySKU(sku string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := r.db.Where("sku = ?", sku).First(&variant).Error; err != nil {
		logger.Error("Failed to find variant by SKU in database", err, map[string]interface{}{
			"sku": sku,
		})
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) ReplaceForProduct(productID uint, variants []model.ProductVariant) error {
	logger.Debug("Replacing product variants in database", map[string]interface{}{
		"product_id": productID,
		"count":      len(variants),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// hard delete so regenerated SKUs can reuse the unique index
		if err := tx.Unscoped().Where("product_id = ?", productID).Delete(&model.ProductVariant{}).Error; err != nil {
			return err
		}
		if len(variants) == 0 {
			return nil
		}
		for i := range variants {
			variants[i].ProductID = productID
		}
		return tx.Create(&variants).Error
	})
	if err != nil {
		logger.Error("Failed to replace product variants in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	logger.Debug("Product variants replaced in database", map[string]interface{}{
		"product_id": productID,
		"count":      len(variants),
	})
	return nil
}

func (r *variantRepository) Update(variant *model.ProductVariant) error {
	logger.Debug("Updating variant in database", map[string]interface{}{
		"variant_id": variant.ID,
	})

	if err := r.db.Omit("Product").Save(variant).Error; err != nil {
		logger.Error("Failed to update variant in database", err, map[string]interface{}{
			"variant_id": variant.ID,
		})
		return err
	}
	return nil
}
