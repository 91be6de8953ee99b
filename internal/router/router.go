package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/internal/app/controller"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/pkg/metrics"
)

type Router struct {
	authController      *controller.AuthController
	categoryController  *controller.CategoryController
	productController   *controller.ProductController
	attributeController *controller.AttributeController
	variantController   *controller.VariantController
	cartController      *controller.CartController
	discountController  *controller.DiscountController
	giftCardController  *controller.GiftCardController
	checkoutController  *controller.CheckoutController
	orderController     *controller.OrderController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	categoryController *controller.CategoryController,
	productController *controller.ProductController,
	attributeController *controller.AttributeController,
	variantController *controller.VariantController,
	cartController *controller.CartController,
	discountController *controller.DiscountController,
	giftCardController *controller.GiftCardController,
	checkoutController *controller.CheckoutController,
	orderController *controller.OrderController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		categoryController:  categoryController,
		productController:   productController,
		attributeController: attributeController,
		variantController:   variantController,
		cartController:      cartController,
		discountController:  discountController,
		giftCardController:  giftCardController,
		checkoutController:  checkoutController,
		orderController:     orderController,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware("/health", r.config.Metrics.Path))
	if r.config.Metrics.Enabled {
		router.Use(middleware.MetricsMiddleware())
		router.GET(r.config.Metrics.Path, gin.WrapH(metrics.Handler()))
	}
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	admin := r.authMiddleware.RequireRole("admin")

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", r.categoryController.ListCategories)
			categories.GET("/:id", r.categoryController.GetCategory)
			categories.POST("", r.authMiddleware.Authenticate(), admin, r.categoryController.CreateCategory)
		}

		attributes := v1.Group("/attributes")
		{
			attributes.GET("", r.attributeController.ListDefinitions)
			attributes.POST("", r.authMiddleware.Authenticate(), admin, r.attributeController.CreateDefinition)
			attributes.DELETE("/:id", r.authMiddleware.Authenticate(), admin, r.attributeController.DeleteDefinition)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProductByID)
			products.GET("/:id/attributes", r.attributeController.ListGroups)
			products.GET("/:id/variants", r.variantController.ListVariants)
			products.GET("/:id/discounts", r.discountController.ListKeysForProduct)

			manage := products.Group("")
			manage.Use(r.authMiddleware.Authenticate(), admin)
			{
				manage.POST("", r.productController.CreateProduct)
				manage.PUT("/:id", r.productController.UpdateProduct)
				manage.DELETE("/:id", r.productController.DeleteProduct)
				manage.POST("/:id/code", r.productController.RegenerateCode)

				manage.POST("/:id/attributes", r.attributeController.AddAttribute)
				manage.PUT("/:id/attributes/:attributeId", r.attributeController.UpdateAttributeValue)
				manage.DELETE("/:id/attributes/:attributeId", r.attributeController.RemoveAttribute)
				manage.PUT("/:id/attribute-order", r.attributeController.ReorderGroup)
				manage.GET("/:id/attribute-check", r.attributeController.ValidateRequired)

				manage.POST("/:id/variants", r.variantController.GenerateVariants)
				manage.POST("/:id/variants/preview", r.variantController.PreviewVariants)
				manage.PUT("/:id/variants/:variantId", r.variantController.UpdateVariant)
				manage.GET("/:id/variants/export", r.variantController.ExportVariants)
			}
		}

		// Guests shop with an X-Cart-Session token; signed-in users get their own cart.
		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.OptionalAuthenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PUT("/items", r.cartController.UpdateCartItem)
			cart.DELETE("/items", r.cartController.RemoveFromCart)
			cart.POST("/discounts", r.discountController.Redeem)
			cart.DELETE("/discounts/:productId", r.discountController.RemoveDiscount)
			cart.POST("/gift-cards", r.giftCardController.Apply)
			cart.DELETE("/gift-cards/:code", r.giftCardController.Unapply)
		}

		giftCards := v1.Group("/gift-cards")
		giftCards.Use(r.authMiddleware.Authenticate())
		{
			giftCards.POST("", r.giftCardController.Purchase)
			giftCards.GET("/sent", r.giftCardController.ListSent)
			giftCards.GET("/received", r.giftCardController.ListReceived)
		}

		checkout := v1.Group("/checkout")
		checkout.Use(r.authMiddleware.Authenticate())
		{
			checkout.POST("", r.checkoutController.Start)
			checkout.GET("", r.checkoutController.Get)
			checkout.POST("/form", r.checkoutController.SubmitForm)
			checkout.POST("/back", r.checkoutController.Back)
			checkout.POST("/pay", r.checkoutController.Pay)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
		}

		adminGroup := v1.Group("/admin")
		adminGroup.Use(r.authMiddleware.Authenticate(), admin)
		{
			adminGroup.GET("/orders", r.orderController.ListOrders)
			adminGroup.PUT("/orders/:id/status", r.orderController.UpdateOrderStatus)
			adminGroup.PUT("/orders/:id/payment", r.orderController.UpdatePaymentStatus)

			adminGroup.GET("/discounts", r.discountController.ListKeys)
			adminGroup.POST("/discounts", r.discountController.CreateKey)
			adminGroup.DELETE("/discounts/:id", r.discountController.DeactivateKey)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, "+controller.CartSessionHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", controller.CartSessionHeader+", "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
