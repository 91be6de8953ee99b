package controller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/storefront-backend/internal/app/service"
	apperrors "github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/pkg/cart"
)

// CartSessionHeader carries a guest's cart token. Responses echo it so a
// client without one learns the token it was issued.
const CartSessionHeader = "X-Cart-Session"

const maxGuestTokenLength = 48

// cartSessionID resolves the cart session of the request. Signed-in users
// always use their own session; guests are namespaced so a token can never
// name a user's cart.
func cartSessionID(c *gin.Context) (string, *uint) {
	if userID, ok := middleware.GetUserID(c); ok {
		return fmt.Sprintf("user:%d", userID), &userID
	}

	token := strings.TrimSpace(c.GetHeader(CartSessionHeader))
	if token == "" || len(token) > maxGuestTokenLength {
		token = uuid.NewString()
	}
	c.Header(CartSessionHeader, token)
	return "guest:" + token, nil
}

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	VariantSKU string `json:"variant_sku"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	Quantity   int    `json:"quantity" binding:"required"`
}

// CartItemKey names one cart line.
type CartItemKey struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	ProductCode string `json:"product_code"`
}

func (k CartItemKey) key() cart.Key {
	return cart.Item{ProductID: k.ProductID, Size: k.Size, Color: k.Color, ProductCode: k.ProductCode}.Key()
}

type UpdateCartItemRequest struct {
	CartItemKey
	Quantity int `json:"quantity" binding:"required"`
}

func cartResponse(view *service.CartView) gin.H {
	return gin.H{
		"id":              view.Session.ID,
		"items":           view.Session.Items,
		"discounts":       view.Session.Discounts,
		"gift_cards":      view.Session.GiftCards,
		"item_count":      view.Session.ItemCount(),
		"lines":           view.Summary.Lines,
		"totals":          view.Display(),
		"checkout_totals": view.Checkout.Display(),
	}
}

// GetCart returns the current cart with its totals
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	sessionID, _ := cartSessionID(c)

	view, err := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err, "get cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cartResponse(view)})
}

// AddToCart adds a product, or one of its variants, to the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, userID := cartSessionID(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id and quantity are required")
		return
	}

	view, err := ctrl.cartService.AddItem(c.Request.Context(), sessionID, userID, service.AddItemInput{
		ProductID:  req.ProductID,
		VariantSKU: req.VariantSKU,
		Size:       req.Size,
		Color:      req.Color,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondServiceError(c, err, "add to cart")
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{"cart": cartResponse(view)})
}

// UpdateCartItem sets the quantity of one line
// PUT /api/v1/cart/items
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	sessionID, _ := cartSessionID(c)

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id and quantity are required")
		return
	}

	view, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), sessionID, req.key(), req.Quantity)
	if err != nil {
		respondServiceError(c, err, "update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cartResponse(view)})
}

// RemoveFromCart drops one line
// DELETE /api/v1/cart/items
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	sessionID, _ := cartSessionID(c)

	var req CartItemKey
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id is required")
		return
	}

	view, err := ctrl.cartService.RemoveItem(c.Request.Context(), sessionID, req.key())
	if err != nil {
		respondServiceError(c, err, "remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cartResponse(view)})
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sessionID, _ := cartSessionID(c)

	view, err := ctrl.cartService.ClearCart(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err, "clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cartResponse(view)})
}
