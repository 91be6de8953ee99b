package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/service"
	apperrors "github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
)

type GiftCardController struct {
	giftCardService service.GiftCardService
}

func NewGiftCardController(giftCardService service.GiftCardService) *GiftCardController {
	return &GiftCardController{giftCardService: giftCardService}
}

type PurchaseGiftCardRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	RecipientEmail string          `json:"recipient_email" binding:"required,email"`
	Message        string          `json:"message" binding:"max=500"`
}

type ApplyGiftCardRequest struct {
	Code string `json:"code" binding:"required"`
	// Email identifies a guest; signed-in users are matched by their account.
	Email string `json:"email"`
}

// Purchase buys a gift card for a recipient
// POST /api/v1/gift-cards
func (ctrl *GiftCardController) Purchase(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req PurchaseGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid gift card purchase request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "amount and recipient_email are required")
		return
	}

	card, err := ctrl.giftCardService.Purchase(userID, service.PurchaseGiftCardInput{
		Amount:         req.Amount,
		RecipientEmail: req.RecipientEmail,
		Message:        req.Message,
	})
	if err != nil {
		respondServiceError(c, err, "purchase gift card")
		return
	}

	log.Info("Gift card purchased", map[string]interface{}{
		"gift_card_id": card.ID,
		"sender_id":    userID,
	})

	c.JSON(http.StatusCreated, gin.H{"gift_card": card})
}

// ListSent returns the gift cards the user bought
// GET /api/v1/gift-cards/sent
func (ctrl *GiftCardController) ListSent(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	cards, err := ctrl.giftCardService.ListSent(userID)
	if err != nil {
		respondServiceError(c, err, "list sent gift cards")
		return
	}

	c.JSON(http.StatusOK, gin.H{"gift_cards": cards, "count": len(cards)})
}

// ListReceived returns the gift cards addressed to the user's email
// GET /api/v1/gift-cards/received
func (ctrl *GiftCardController) ListReceived(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	cards, err := ctrl.giftCardService.ListReceived(email)
	if err != nil {
		respondServiceError(c, err, "list received gift cards")
		return
	}

	c.JSON(http.StatusOK, gin.H{"gift_cards": cards, "count": len(cards)})
}

// Apply adds a gift card to the cart
// POST /api/v1/cart/gift-cards
func (ctrl *GiftCardController) Apply(c *gin.Context) {
	sessionID, _ := cartSessionID(c)

	var req ApplyGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "code is required")
		return
	}

	email, signedIn := middleware.GetUserEmail(c)
	if !signedIn {
		email = req.Email
	}
	if email == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "email is required to redeem a gift card")
		return
	}

	view, err := ctrl.giftCardService.Apply(c.Request.Context(), sessionID, req.Code, email)
	if err != nil {
		respondServiceError(c, err, "apply gift card")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cartResponse(view)})
}

// Unapply removes a gift card from the cart
// DELETE /api/v1/cart/gift-cards/:code
func (ctrl *GiftCardController) Unapply(c *gin.Context) {
	sessionID, _ := cartSessionID(c)

	view, err := ctrl.giftCardService.Unapply(c.Request.Context(), sessionID, c.Param("code"))
	if err != nil {
		respondServiceError(c, err, "remove gift card")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cartResponse(view)})
}
