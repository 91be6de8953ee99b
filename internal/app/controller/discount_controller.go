package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/service"
	apperrors "github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
)

type DiscountController struct {
	discountService service.DiscountService
}

func NewDiscountController(discountService service.DiscountService) *DiscountController {
	return &DiscountController{discountService: discountService}
}

type CreateDiscountKeyRequest struct {
	Code      string             `json:"code"`
	Tier      model.DiscountTier `json:"tier" binding:"required"`
	ProductID uint               `json:"product_id" binding:"required"`
	ExpiresAt *time.Time         `json:"expires_at"`
}

type RedeemDiscountRequest struct {
	Code string `json:"code" binding:"required"`
}

// CreateKey issues a discount key for one product
// POST /api/v1/admin/discounts
func (ctrl *DiscountController) CreateKey(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateDiscountKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "tier and product_id are required")
		return
	}

	key, err := ctrl.discountService.CreateKey(service.DiscountKeyInput{
		Code:      req.Code,
		Tier:      req.Tier,
		ProductID: req.ProductID,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		respondServiceError(c, err, "create discount key")
		return
	}

	log.Info("Discount key created", map[string]interface{}{
		"discount_id": key.ID,
		"product_id":  key.ProductID,
		"tier":        key.Tier,
	})

	c.JSON(http.StatusCreated, gin.H{"discount": key})
}

// ListKeys returns every discount key
// GET /api/v1/admin/discounts
func (ctrl *DiscountController) ListKeys(c *gin.Context) {
	keys, err := ctrl.discountService.ListKeys()
	if err != nil {
		respondServiceError(c, err, "list discount keys")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"discounts": keys,
		"count":     len(keys),
	})
}

// ListKeysForProduct returns the active keys of one product
// GET /api/v1/products/:id/discounts
func (ctrl *DiscountController) ListKeysForProduct(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	keys, err := ctrl.discountService.ListKeysForProduct(productID)
	if err != nil {
		respondServiceError(c, err, "list product discount keys")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"discounts": keys,
		"count":     len(keys),
	})
}

// DeactivateKey switches a key off
// DELETE /api/v1/admin/discounts/:id
func (ctrl *DiscountController) DeactivateKey(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.discountService.DeactivateKey(id); err != nil {
		respondServiceError(c, err, "deactivate discount key")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Discount key deactivated"})
}

// Redeem applies a discount key to the cart
// POST /api/v1/cart/discounts
func (ctrl *DiscountController) Redeem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, _ := cartSessionID(c)

	var req RedeemDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "code is required")
		return
	}

	view, err := ctrl.discountService.Redeem(c.Request.Context(), sessionID, req.Code)
	if err != nil {
		respondServiceError(c, err, "redeem discount")
		return
	}

	log.Info("Discount redeemed", map[string]interface{}{
		"session_id": sessionID,
	})

	c.JSON(http.StatusOK, gin.H{"cart": cartResponse(view)})
}

// RemoveDiscount drops the discount applied to a product
// DELETE /api/v1/cart/discounts/:productId
func (ctrl *DiscountController) RemoveDiscount(c *gin.Context) {
	sessionID, _ := cartSessionID(c)

	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}

	view, err := ctrl.discountService.RemoveDiscount(c.Request.Context(), sessionID, productID)
	if err != nil {
		respondServiceError(c, err, "remove discount")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cartResponse(view)})
}
