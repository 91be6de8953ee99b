package repository

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func seedUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "hashedpassword", Name: "Test User", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func seedCategory(t *testing.T, testDB *gorm.DB, name string) *model.Category {
	t.Helper()
	cat := &model.Category{Name: name, Slug: strings.ToLower(name)}
	require.NoError(t, testDB.Create(cat).Error)
	return cat
}

func seedProduct(t *testing.T, testDB *gorm.DB, categoryID uint, name, sku string, price int64) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:          name,
		SKU:           sku,
		Price:         decimal.NewFromInt(price),
		StockQuantity: 10,
		CategoryID:    categoryID,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}
