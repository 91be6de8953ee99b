package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProductRepository_Create(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewProductRepository(testDB)
	cat := seedCategory(t, testDB, "Shirts")

	product := &model.Product{
		Name:          "Linen Shirt",
		Description:   "Breathable summer shirt",
		SKU:           "LS-01",
		Price:         decimal.RequireFromString("49.90"),
		StockQuantity: 10,
		CategoryID:    cat.ID,
	}
	require.NoError(t, repo.Create(product))
	assert.NotZero(t, product.ID)

	dup := &model.Product{Name: "Copy", SKU: "LS-01", Price: decimal.NewFromInt(1), CategoryID: cat.ID}
	assert.Error(t, repo.Create(dup), "sku is unique")
}

func TestProductRepository_FindWithFilter(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewProductRepository(testDB)
	shirts := seedCategory(t, testDB, "Shirts")
	hats := seedCategory(t, testDB, "Hats")
	seedProduct(t, testDB, shirts.ID, "Linen Shirt", "LS-01", 50)
	seedProduct(t, testDB, shirts.ID, "Oxford Shirt", "OS-01", 70)
	seedProduct(t, testDB, hats.ID, "Wool Hat", "WH-01", 20)

	tests := []struct {
		name      string
		filter    ProductFilter
		wantNames []string
		wantTotal int64
	}{
		{
			name:      "price ascending",
			filter:    ProductFilter{SortBy: ProductSortPrice, SortAscending: true},
			wantNames: []string{"Wool Hat", "Linen Shirt", "Oxford Shirt"},
			wantTotal: 3,
		},
		{
			name:      "by category",
			filter:    ProductFilter{CategoryID: &shirts.ID, SortBy: ProductSortName, SortAscending: true},
			wantNames: []string{"Linen Shirt", "Oxford Shirt"},
			wantTotal: 2,
		},
		{
			name:      "search matches sku",
			filter:    ProductFilter{Search: "WH-"},
			wantNames: []string{"Wool Hat"},
			wantTotal: 1,
		},
		{
			name:      "paged",
			filter:    ProductFilter{SortBy: ProductSortPrice, Limit: 1, Offset: 1},
			wantNames: []string{"Linen Shirt"},
			wantTotal: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, total, err := repo.FindWithFilter(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)

			names := make([]string, len(products))
			for i, p := range products {
				names[i] = p.Name
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestProductRepository_FindByIDWithDetails(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewProductRepository(testDB)
	cat := seedCategory(t, testDB, "Shirts")
	product := seedProduct(t, testDB, cat.ID, "Linen Shirt", "LS-01", 50)

	attrs := []model.ProductAttribute{
		{ProductID: product.ID, Group: model.GroupSpecific, Name: "Color", Kind: model.KindText, Position: 1},
		{ProductID: product.ID, Group: model.GroupSpecific, Name: "Size", Kind: model.KindText, Position: 0},
		{ProductID: product.ID, Group: model.GroupCommon, Name: "Care", Kind: model.KindText, Position: 0},
	}
	require.NoError(t, testDB.Create(&attrs).Error)
	require.NoError(t, NewVariantRepository(testDB).ReplaceForProduct(product.ID, []model.ProductVariant{
		{SKU: "LS-01-1", Price: decimal.NewFromInt(50)},
	}))

	found, err := repo.FindByIDWithDetails(product.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Category)
	assert.Equal(t, "Shirts", found.Category.Name)
	assert.Len(t, found.Variants, 1)

	names := make([]string, len(found.Attributes))
	for i, a := range found.Attributes {
		names[i] = a.Name
	}
	assert.Equal(t, []string{"Care", "Size", "Color"}, names, "grouped then positioned")
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewProductRepository(testDB)
	cat := seedCategory(t, testDB, "Shirts")
	product := seedProduct(t, testDB, cat.ID, "Linen Shirt", "LS-01", 50)

	product.StockQuantity = 3
	product.SalePrice = decimal.NewNullDecimal(decimal.NewFromInt(40))
	require.NoError(t, repo.Update(product))
	require.NoError(t, repo.UpdateCode(product.ID, "LINEN-SHIR-ab12"))

	found, err := repo.FindBySKU("LS-01")
	require.NoError(t, err)
	assert.Equal(t, 3, found.StockQuantity)
	assert.Equal(t, "LINEN-SHIR-ab12", found.Code)
	assert.True(t, found.SalePrice.Valid)

	require.NoError(t, repo.Delete(product.ID))
	_, err = repo.FindByID(product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(product.ID), gorm.ErrRecordNotFound)
}
