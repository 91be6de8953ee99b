package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"github.com/storefront/storefront-backend/pkg/productcode"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires every repository and service against one in-memory database.
type testEnv struct {
	db *gorm.DB

	userRepo      repository.UserRepository
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	variantRepo   repository.VariantRepository
	attributeRepo repository.AttributeRepository
	discountRepo  repository.DiscountRepository
	giftCardRepo  repository.GiftCardRepository
	orderRepo     repository.OrderRepository
	sessions      repository.CartSessionRepository
	checkoutRepo  repository.CheckoutRepository

	products   ProductService
	attributes AttributeService
	variants   VariantService
	carts      CartService
	discounts  DiscountService
	giftCards  GiftCardService
	orders     OrderService
}

func fixedCodes() *productcode.Generator {
	return &productcode.Generator{Suffix: func(n int) string { return strings.Repeat("z", n) }}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	calc := pricing.Default()
	env := &testEnv{
		db:            testDB,
		userRepo:      repository.NewUserRepository(testDB),
		categoryRepo:  repository.NewCategoryRepository(testDB),
		productRepo:   repository.NewProductRepository(testDB),
		variantRepo:   repository.NewVariantRepository(testDB),
		attributeRepo: repository.NewAttributeRepository(testDB),
		discountRepo:  repository.NewDiscountRepository(testDB),
		giftCardRepo:  repository.NewGiftCardRepository(testDB),
		orderRepo:     repository.NewOrderRepository(testDB),
		sessions:      repository.NewCartSessionRepository(testDB),
		checkoutRepo:  repository.NewCheckoutRepository(testDB),
	}
	env.products = NewProductService(env.productRepo, env.categoryRepo, env.attributeRepo, env.variantRepo, fixedCodes())
	env.attributes = NewAttributeService(env.attributeRepo, env.productRepo, env.products)
	env.variants = NewVariantService(env.variantRepo, env.productRepo, env.attributeRepo, 0)
	env.carts = NewCartService(env.sessions, env.productRepo, env.variantRepo, calc)
	env.discounts = NewDiscountService(env.discountRepo, env.productRepo, env.sessions, calc)
	env.giftCards = NewGiftCardService(env.giftCardRepo, env.sessions, calc, DefaultGiftCardPolicy())
	env.orders = NewOrderService(env.orderRepo)
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createCategory(t *testing.T, name string) *model.Category {
	t.Helper()
	cat := &model.Category{Name: name, Slug: strings.ToLower(name)}
	require.NoError(t, e.db.Create(cat).Error)
	return cat
}

func (e *testEnv) createProduct(t *testing.T, categoryID uint, name, sku, price string, stock int) *model.Product {
	t.Helper()
	product, err := e.products.CreateProduct(ProductInput{
		Name:          name,
		SKU:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CategoryID:    categoryID,
	})
	require.NoError(t, err)
	return product
}

func (e *testEnv) createDefinition(t *testing.T, name string, kind model.AttributeKind, options ...string) *model.AttributeDefinition {
	t.Helper()
	def := &model.AttributeDefinition{Name: name, Kind: kind, Options: options}
	require.NoError(t, e.attributes.CreateDefinition(def))
	return def
}

// setAttribute adds the definition to the product's specific group and
// stores value as its JSON encoding.
func (e *testEnv) setAttribute(t *testing.T, productID uint, def *model.AttributeDefinition, value interface{}) *model.ProductAttribute {
	t.Helper()
	attr, err := e.attributes.AddAttribute(productID, model.GroupSpecific, def.ID)
	require.NoError(t, err)
	raw, err := json.Marshal(value)
	require.NoError(t, err)
	attr, err = e.attributes.UpdateAttributeValue(productID, attr.ID, raw)
	require.NoError(t, err)
	return attr
}
