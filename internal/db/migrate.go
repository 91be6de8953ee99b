package db

import (
	"github.com/lib/pq"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.ProductVariant{},
		&model.AttributeDefinition{},
		&model.ProductAttribute{},
		&model.DiscountKey{},
		&model.GiftCard{},
		&model.Order{},
		&model.OrderItem{},
		&model.CartSession{},
		&model.CheckoutSession{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData(DB)
}

func seedInitialData(db *gorm.DB) error {
	logger.Info("Seeding initial data...")

	if err := seedCategories(db); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}
	if err := seedAttributeDefinitions(db); err != nil {
		logger.Error("Failed to seed attribute definitions", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	names := []string{"Clothing", "Shoes", "Accessories", "Home"}
	for _, name := range names {
		category := model.Category{Name: name, Slug: util.Slugify(name)}
		if err := db.Create(&category).Error; err != nil {
			logger.Error("Failed to create category", err, map[string]interface{}{
				"category": name,
			})
			return err
		}
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total_categories": len(names),
	})
	return nil
}

// seedAttributeDefinitions installs the definitions every catalog needs.
func seedAttributeDefinitions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.AttributeDefinition{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Attribute definitions already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	defs := []model.AttributeDefinition{
		{Name: "Size", Kind: model.KindSelect, Options: pq.StringArray{"XS", "S", "M", "L", "XL"}, Required: true},
		{Name: "Color", Kind: model.KindColor, Options: pq.StringArray{"Black", "White", "Red", "Blue", "Green"}},
		{Name: "Material", Kind: model.KindSelect, Options: pq.StringArray{"Cotton", "Linen", "Wool", "Silk", "Leather"}},
		{Name: "Weight", Kind: model.KindNumber, Description: "Grams"},
		{Name: "Care instructions", Kind: model.KindText},
		{Name: "Waterproof", Kind: model.KindBoolean},
	}
	for i := range defs {
		if err := db.Create(&defs[i]).Error; err != nil {
			logger.Error("Failed to create attribute definition", err, map[string]interface{}{
				"attribute": defs[i].Name,
			})
			return err
		}
	}

	logger.Info("Attribute definitions seeded successfully", map[string]interface{}{
		"total_definitions": len(defs),
	})
	return nil
}
