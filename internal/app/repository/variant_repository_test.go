package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestVariantRepository_ReplaceForProduct(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewVariantRepository(testDB)
	cat := seedCategory(t, testDB, "Shirts")
	product := seedProduct(t, testDB, cat.ID, "Linen Shirt", "LS-01", 50)

	first := []model.ProductVariant{
		{SKU: "LS-01-1", Price: decimal.NewFromInt(50), Attributes: datatypes.JSONMap{"Size": "S"}},
		{SKU: "LS-01-2", Price: decimal.NewFromInt(50), Attributes: datatypes.JSONMap{"Size": "M"}},
	}
	require.NoError(t, repo.ReplaceForProduct(product.ID, first))

	// regenerating reuses the same SKUs
	second := []model.ProductVariant{
		{SKU: "LS-01-1", Price: decimal.NewFromInt(55), Attributes: datatypes.JSONMap{"Size": "L"}},
	}
	require.NoError(t, repo.ReplaceForProduct(product.ID, second))

	variants, err := repo.FindByProductID(product.ID)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "L", variants[0].Attributes["Size"])

	found, err := repo.FindBySKU("LS-01-1")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ProductID)

	found.StockQuantity = 7
	require.NoError(t, repo.Update(found))
	found, err = repo.FindByID(found.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, found.StockQuantity)

	_, err = repo.FindBySKU("LS-01-2")
	assert.Error(t, err)
}
