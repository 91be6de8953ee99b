package repository

import (
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type AttributeRepository interface {
	CreateDefinition(def *model.AttributeDefinition) error
	FindDefinitions() ([]model.AttributeDefinition, error)
	FindDefinitionByID(id uint) (*model.AttributeDefinition, error)
	DeleteDefinition(id uint) error

	FindByProduct(productID uint) ([]model.ProductAttribute, error)
	FindByProductAndGroup(productID uint, group model.AttributeGroup) ([]model.ProductAttribute, error)
	FindByID(id uint) (*model.ProductAttribute, error)
	Create(attr *model.ProductAttribute) error
	Update(attr *model.ProductAttribute) error
	// SavePositions writes the Position of every attribute in one transaction.
	SavePositions(attrs []model.ProductAttribute) error
	// DeleteAndReorder removes an attribute and rewrites the positions of the
	// rest of its group in one transaction.
	DeleteAndReorder(id uint, remaining []model.ProductAttribute) error
}

type attributeRepository struct {
	db *gorm.DB
}

func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &attributeRepository{db: db}
}

func (r *attributeRepository) CreateDefinition(def *model.AttributeDefinition) error {
	logger.Debug("Creating attribute definition in database", map[string]interface{}{
		"name": def.Name,
		"kind": def.Kind,
	})

	if err := r.db.Create(def).Error; err != nil {
		logger.Error("Failed to create attribute definition in database", err, map[string]interface{}{
			"name": def.Name,
		})
		return err
	}

	logger.Debug("Attribute definition created in database", map[string]interface{}{
		"definition_id": def.ID,
	})
	return nil
}

func (r *attributeRepository) FindDefinitions() ([]model.AttributeDefinition, error) {
	var defs []model.AttributeDefinition
	if err := r.db.Order("name ASC").Find(&defs).Error; err != nil {
		logger.Error("Failed to list attribute definitions", err)
		return nil, err
	}

	logger.Debug("Attribute definitions listed from database", map[string]interface{}{
		"count": len(defs),
	})
	return defs, nil
}

func (r *attributeRepository) FindDefinitionByID(id uint) (*model.AttributeDefinition, error) {
	var def model.AttributeDefinition
	if err := r.db.First(&def, id).Error; err != nil {
		logger.Error("Failed to find attribute definition by ID in database", err, map[string]interface{}{
			"definition_id": id,
		})
		return nil, err
	}
	return &def, nil
}

func (r *attributeRepository) DeleteDefinition(id uint) error {
	logger.Debug("Deleting attribute definition from database", map[string]interface{}{
		"definition_id": id,
	})

	result := r.db.Delete(&model.AttributeDefinition{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete attribute definition from database", result.Error, map[string]interface{}{
			"definition_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attributeRepository) FindByProduct(productID uint) ([]model.ProductAttribute, error) {
	logger.Debug("Finding attributes by product ID in database", map[string]interface{}{
		"product_id": productID,
	})

	var attrs []model.ProductAttribute
	if err := r.db.Where("product_id = ?", productID).
		Order("attribute_group ASC, position ASC").
		Find(&attrs).Error; err != nil {
		logger.Error("Failed to find attributes by product ID in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	logger.Debug("Attributes found by product ID in database", map[string]interface{}{
		"product_id": productID,
		"count":      len(attrs),
	})
	return attrs, nil
}

func (r *attributeRepository) FindByProductAndGroup(productID uint, group model.AttributeGroup) ([]model.ProductAttribute, error) {
	var attrs []model.ProductAttribute
	if err := r.db.Where("product_id = ? AND attribute_group = ?", productID, group).
		Order("position ASC").
		Find(&attrs).Error; err != nil {
		logger.Error("Failed to find attribute group in database", err, map[string]interface{}{
			"product_id": productID,
			"group":      group,
		})
		return nil, err
	}
	return attrs, nil
}

func (r *attributeRepository) FindByID(id uint) (*model.ProductAttribute, error) {
	var attr model.ProductAttribute
	if err := r.db.First(&attr, id).Error; err != nil {
		logger.Error("Failed to find attribute by ID in database", err, map[string]interface{}{
			"attribute_id": id,
		})
		return nil, err
	}
	return &attr, nil
}

func (r *attributeRepository) Create(attr *model.ProductAttribute) error {
	logger.Debug("Creating product attribute in database", map[string]interface{}{
		"product_id": attr.ProductID,
		"group":      attr.Group,
		"name":       attr.Name,
		"position":   attr.Position,
	})

	if err := r.db.Create(attr).Error; err != nil {
		logger.Error("Failed to create product attribute in database", err, map[string]interface{}{
			"product_id": attr.ProductID,
			"name":       attr.Name,
		})
		return err
	}
	return nil
}

func (r *attributeRepository) Update(attr *model.ProductAttribute) error {
	logger.Debug("Updating product attribute in database", map[string]interface{}{
		"attribute_id": attr.ID,
	})

	if err := r.db.Save(attr).Error; err != nil {
		logger.Error("Failed to update product attribute in database", err, map[string]interface{}{
			"attribute_id": attr.ID,
		})
		return err
	}
	return nil
}

func (r *attributeRepository) SavePositions(attrs []model.ProductAttribute) error {
	logger.Debug("Saving attribute positions in database", map[string]interface{}{
		"count": len(attrs),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return savePositions(tx, attrs)
	})
	if err != nil {
		logger.Error("Failed to save attribute positions in database", err)
		return err
	}
	return nil
}

func (r *attributeRepository) DeleteAndReorder(id uint, remaining []model.ProductAttribute) error {
	logger.Debug("Deleting product attribute from database", map[string]interface{}{
		"attribute_id": id,
		"remaining":    len(remaining),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.ProductAttribute{}, id).Error; err != nil {
			return err
		}
		return savePositions(tx, remaining)
	})
	if err != nil {
		logger.Error("Failed to delete product attribute from database", err, map[string]interface{}{
			"attribute_id": id,
		})
		return err
	}
	return nil
}

func savePositions(tx *gorm.DB, attrs []model.ProductAttribute) error {
	for _, a := range attrs {
		if err := tx.Model(&model.ProductAttribute{}).
			Where("id = ?", a.ID).
			Update("position", a.Position).Error; err != nil {
			return err
		}
	}
	return nil
}
