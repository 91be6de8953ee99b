package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/pkg/payment/simulator"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"github.com/storefront/storefront-backend/pkg/productcode"
	"github.com/storefront/storefront-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type harness struct {
	db       *gorm.DB
	router   *gin.Engine
	auth     service.AuthService
	products service.ProductService
	giftCard service.GiftCardService
}

// setupControllerTest wires every controller against an in-memory database
// using the same routes the server exposes.
func setupControllerTest(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	attributeRepo := repository.NewAttributeRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)
	sessions := repository.NewCartSessionRepository(testDB)
	calc := pricing.Default()

	payments, err := simulator.NewClient(simulator.DefaultConfig())
	require.NoError(t, err)

	codes := &productcode.Generator{Suffix: func(n int) string { return strings.Repeat("z", n) }}

	authService := service.NewAuthService(userRepo, testSecret, 15*time.Minute, 24*time.Hour)
	productService := service.NewProductService(productRepo, categoryRepo, attributeRepo, variantRepo, codes)
	giftCardService := service.NewGiftCardService(repository.NewGiftCardRepository(testDB), sessions, calc, service.DefaultGiftCardPolicy())
	orderRepo := repository.NewOrderRepository(testDB)

	authCtrl := NewAuthController(authService)
	categoryCtrl := NewCategoryController(service.NewCategoryService(categoryRepo))
	productCtrl := NewProductController(productService)
	attributeCtrl := NewAttributeController(service.NewAttributeService(attributeRepo, productRepo, productService))
	variantCtrl := NewVariantController(service.NewVariantService(variantRepo, productRepo, attributeRepo, 0))
	cartCtrl := NewCartController(service.NewCartService(sessions, productRepo, variantRepo, calc))
	discountCtrl := NewDiscountController(service.NewDiscountService(repository.NewDiscountRepository(testDB), productRepo, sessions, calc))
	giftCardCtrl := NewGiftCardController(giftCardService)
	checkoutCtrl := NewCheckoutController(service.NewCheckoutService(
		testDB,
		repository.NewCheckoutRepository(testDB),
		userRepo,
		orderRepo,
		sessions,
		giftCardService,
		payments,
		calc,
	))
	orderCtrl := NewOrderController(service.NewOrderService(orderRepo))

	authMW := middleware.NewAuthMiddleware(testSecret)
	admin := authMW.RequireRole("admin")

	router := gin.New()
	v1 := router.Group("/api/v1")

	v1.POST("/auth/register", authCtrl.Register)
	v1.POST("/auth/login", authCtrl.Login)
	v1.POST("/auth/refresh", authCtrl.RefreshToken)
	v1.POST("/auth/logout", authMW.Authenticate(), authCtrl.Logout)
	v1.GET("/auth/me", authMW.Authenticate(), authCtrl.GetMe)
	v1.PUT("/auth/me", authMW.Authenticate(), authCtrl.UpdateMe)

	v1.GET("/categories", categoryCtrl.ListCategories)
	v1.GET("/categories/:id", categoryCtrl.GetCategory)
	v1.POST("/categories", authMW.Authenticate(), admin, categoryCtrl.CreateCategory)

	v1.GET("/attributes", attributeCtrl.ListDefinitions)
	v1.POST("/attributes", authMW.Authenticate(), admin, attributeCtrl.CreateDefinition)
	v1.DELETE("/attributes/:id", authMW.Authenticate(), admin, attributeCtrl.DeleteDefinition)

	v1.GET("/products", productCtrl.ListProducts)
	v1.GET("/products/:id", productCtrl.GetProductByID)
	v1.GET("/products/:id/attributes", attributeCtrl.ListGroups)
	v1.GET("/products/:id/variants", variantCtrl.ListVariants)
	v1.GET("/products/:id/discounts", discountCtrl.ListKeysForProduct)
	manage := v1.Group("/products", authMW.Authenticate(), admin)
	manage.POST("", productCtrl.CreateProduct)
	manage.PUT("/:id", productCtrl.UpdateProduct)
	manage.DELETE("/:id", productCtrl.DeleteProduct)
	manage.POST("/:id/code", productCtrl.RegenerateCode)
	manage.POST("/:id/attributes", attributeCtrl.AddAttribute)
	manage.PUT("/:id/attributes/:attributeId", attributeCtrl.UpdateAttributeValue)
	manage.DELETE("/:id/attributes/:attributeId", attributeCtrl.RemoveAttribute)
	manage.PUT("/:id/attribute-order", attributeCtrl.ReorderGroup)
	manage.GET("/:id/attribute-check", attributeCtrl.ValidateRequired)
	manage.POST("/:id/variants", variantCtrl.GenerateVariants)
	manage.POST("/:id/variants/preview", variantCtrl.PreviewVariants)
	manage.PUT("/:id/variants/:variantId", variantCtrl.UpdateVariant)
	manage.GET("/:id/variants/export", variantCtrl.ExportVariants)

	cart := v1.Group("/cart", authMW.OptionalAuthenticate())
	cart.GET("", cartCtrl.GetCart)
	cart.DELETE("", cartCtrl.ClearCart)
	cart.POST("/items", cartCtrl.AddToCart)
	cart.PUT("/items", cartCtrl.UpdateCartItem)
	cart.DELETE("/items", cartCtrl.RemoveFromCart)
	cart.POST("/discounts", discountCtrl.Redeem)
	cart.DELETE("/discounts/:productId", discountCtrl.RemoveDiscount)
	cart.POST("/gift-cards", giftCardCtrl.Apply)
	cart.DELETE("/gift-cards/:code", giftCardCtrl.Unapply)

	giftCards := v1.Group("/gift-cards", authMW.Authenticate())
	giftCards.POST("", giftCardCtrl.Purchase)
	giftCards.GET("/sent", giftCardCtrl.ListSent)
	giftCards.GET("/received", giftCardCtrl.ListReceived)

	checkout := v1.Group("/checkout", authMW.Authenticate())
	checkout.POST("", checkoutCtrl.Start)
	checkout.GET("", checkoutCtrl.Get)
	checkout.POST("/form", checkoutCtrl.SubmitForm)
	checkout.POST("/back", checkoutCtrl.Back)
	checkout.POST("/pay", checkoutCtrl.Pay)

	v1.GET("/orders", authMW.Authenticate(), orderCtrl.GetOrders)
	v1.GET("/orders/:id", authMW.Authenticate(), orderCtrl.GetOrderByID)

	adminGroup := v1.Group("/admin", authMW.Authenticate(), admin)
	adminGroup.GET("/orders", orderCtrl.ListOrders)
	adminGroup.PUT("/orders/:id/status", orderCtrl.UpdateOrderStatus)
	adminGroup.PUT("/orders/:id/payment", orderCtrl.UpdatePaymentStatus)
	adminGroup.GET("/discounts", discountCtrl.ListKeys)
	adminGroup.POST("/discounts", discountCtrl.CreateKey)
	adminGroup.DELETE("/discounts/:id", discountCtrl.DeactivateKey)

	return &harness{
		db:       testDB,
		router:   router,
		auth:     authService,
		products: productService,
		giftCard: giftCardService,
	}
}

type request struct {
	token   string
	cart    string
	rawBody []byte
}

type option func(*request)

func withToken(token string) option { return func(r *request) { r.token = token } }

func withCart(session string) option { return func(r *request) { r.cart = session } }

// do sends body as JSON and returns the recorder.
func (h *harness) do(t *testing.T, method, path string, body interface{}, opts ...option) *httptest.ResponseRecorder {
	t.Helper()
	var r request
	for _, o := range opts {
		o(&r)
	}

	var buf *bytes.Buffer
	switch {
	case body == nil:
		buf = &bytes.Buffer{}
	default:
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.cart != "" {
		req.Header.Set(CartSessionHeader, r.cart)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// createUser stores a user and returns an access token for it.
func (h *harness) createUser(t *testing.T, email string, role model.UserRole) (*model.User, string) {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "hash", Name: "Test User", Role: role}
	require.NoError(t, h.db.Create(user).Error)
	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), testSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func (h *harness) createCategory(t *testing.T, name string) *model.Category {
	t.Helper()
	cat := &model.Category{Name: name, Slug: strings.ToLower(name)}
	require.NoError(t, h.db.Create(cat).Error)
	return cat
}

func (h *harness) createProduct(t *testing.T, categoryID uint, name, sku, price string, stock int) *model.Product {
	t.Helper()
	p, err := h.products.CreateProduct(service.ProductInput{
		Name:          name,
		SKU:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CategoryID:    categoryID,
	})
	require.NoError(t, err)
	return p
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	code, _ := decode(t, w)["error"].(string)
	return code
}

func statusOK(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
