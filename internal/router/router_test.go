package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/internal/app/controller"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/pkg/payment/simulator"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"github.com/storefront/storefront-backend/pkg/productcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	products service.ProductService
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cfg := &config.Config{
		Server:  config.ServerConfig{GinMode: gin.TestMode},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://shop.local"}},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	attributeRepo := repository.NewAttributeRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	sessions := repository.NewCartSessionRepository(testDB)
	calc := pricing.Default()

	payments, err := simulator.NewClient(simulator.DefaultConfig())
	require.NoError(t, err)

	authService := service.NewAuthService(userRepo, "test-secret", 15*time.Minute, 7*24*time.Hour)
	productService := service.NewProductService(productRepo, categoryRepo, attributeRepo, variantRepo, productcode.New())
	giftCardService := service.NewGiftCardService(repository.NewGiftCardRepository(testDB), sessions, calc, service.DefaultGiftCardPolicy())

	r := NewRouter(
		controller.NewAuthController(authService),
		controller.NewCategoryController(service.NewCategoryService(categoryRepo)),
		controller.NewProductController(productService),
		controller.NewAttributeController(service.NewAttributeService(attributeRepo, productRepo, productService)),
		controller.NewVariantController(service.NewVariantService(variantRepo, productRepo, attributeRepo, 0)),
		controller.NewCartController(service.NewCartService(sessions, productRepo, variantRepo, calc)),
		controller.NewDiscountController(service.NewDiscountService(repository.NewDiscountRepository(testDB), productRepo, sessions, calc)),
		controller.NewGiftCardController(giftCardService),
		controller.NewCheckoutController(service.NewCheckoutService(
			testDB, repository.NewCheckoutRepository(testDB), userRepo, orderRepo,
			sessions, giftCardService, payments, calc,
		)),
		controller.NewOrderController(service.NewOrderService(orderRepo)),
		middleware.NewAuthMiddleware("test-secret"),
		cfg,
	)

	return &testServer{router: r.Setup(), db: testDB, products: productService}
}

func (s *testServer) send(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func parse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestCompleteShopperJourney(t *testing.T) {
	s := setupServer(t)

	cat := &model.Category{Name: "Shirts", Slug: "shirts"}
	require.NoError(t, s.db.Create(cat).Error)
	product, err := s.products.CreateProduct(service.ProductInput{
		Name:          "Linen Shirt",
		SKU:           "LS-01",
		Price:         decimal.NewFromInt(50),
		StockQuantity: 10,
		CategoryID:    cat.ID,
	})
	require.NoError(t, err)

	t.Log("Step 1: Browse products as a guest")
	w := s.send(t, http.MethodGet, "/api/v1/products", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, parse(t, w)["total"])

	t.Log("Step 2: Guest cart")
	w = s.send(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   1,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(controller.CartSessionHeader))

	t.Log("Step 3: Register")
	w = s.send(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "buyer@example.com",
		"password": "password123",
		"name":     "Test Buyer",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := parse(t, w)["tokens"].(map[string]interface{})["access_token"].(string)

	t.Log("Step 4: Fill the user's cart")
	w = s.send(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	totals := parse(t, w)["cart"].(map[string]interface{})["totals"].(map[string]interface{})
	assert.Equal(t, "120.00", totals["total"])

	t.Log("Step 5: Checkout")
	w = s.send(t, http.MethodPost, "/api/v1/checkout", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.send(t, http.MethodPost, "/api/v1/checkout/form", map[string]string{
		"name":         "Test Buyer",
		"email":        "buyer@example.com",
		"phone":        "+44 20 7946 0000",
		"address_line": "1 Market Street",
		"city":         "London",
		"postal_code":  "EC1A 1BB",
		"country":      "UK",
	}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.send(t, http.MethodPost, "/api/v1/checkout/pay", map[string]string{
		"holder": "Test Buyer",
		"number": "4242 4242 4242 4242",
		"expiry": "12/30",
		"cvc":    "123",
	}, bearer(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := parse(t, w)["order"].(map[string]interface{})
	finalTotal, err := decimal.NewFromString(order["final_total"].(string))
	require.NoError(t, err)
	assert.True(t, finalTotal.Equal(decimal.NewFromInt(120)), finalTotal.String())

	t.Log("Step 6: Order history and stock")
	w = s.send(t, http.MethodGet, "/api/v1/orders", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, parse(t, w)["count"])

	var updated model.Product
	require.NoError(t, s.db.First(&updated, product.ID).Error)
	assert.Equal(t, 8, updated.StockQuantity)
}

func TestUnauthorizedAccess(t *testing.T) {
	s := setupServer(t)

	protectedRoutes := []string{
		"/api/v1/auth/me",
		"/api/v1/checkout",
		"/api/v1/orders",
		"/api/v1/gift-cards/sent",
		"/api/v1/admin/orders",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			w := s.send(t, http.MethodGet, route, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	// the cart is open to guests
	w := s.send(t, http.MethodGet, "/api/v1/cart", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInfrastructureRoutes(t *testing.T) {
	s := setupServer(t)

	w := s.send(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", parse(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = s.send(t, http.MethodOptions, "/api/v1/cart", nil, map[string]string{"Origin": "http://shop.local"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://shop.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), controller.CartSessionHeader)
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), controller.CartSessionHeader)

	w = s.send(t, http.MethodOptions, "/api/v1/cart", nil, map[string]string{"Origin": "http://evil.local"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = s.send(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"), "request metrics are exported")
}
