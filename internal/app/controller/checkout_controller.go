package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/service"
	apperrors "github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/pkg/payment/simulator"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService}
}

type CheckoutFormRequest struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	AddressLine   string   `json:"address_line"`
	City          string   `json:"city"`
	PostalCode    string   `json:"postal_code"`
	Country       string   `json:"country"`
	GiftCardCodes []string `json:"gift_card_codes"`
}

type PaymentRequest struct {
	Holder string `json:"holder"`
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

func checkoutResponse(view *service.CheckoutView) gin.H {
	body := gin.H{"checkout": view.Session}
	if view.Cart != nil {
		body["cart"] = cartResponse(view.Cart)
	}
	if view.Order != nil {
		body["order"] = view.Order
	}
	return body
}

// checkoutUser returns the session and user of a signed-in request.
func checkoutUser(c *gin.Context) (string, uint, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return "", 0, false
	}
	sessionID, _ := cartSessionID(c)
	return sessionID, userID, true
}

// Start opens the checkout form for the current cart
// POST /api/v1/checkout
func (ctrl *CheckoutController) Start(c *gin.Context) {
	sessionID, userID, ok := checkoutUser(c)
	if !ok {
		return
	}

	view, err := ctrl.checkoutService.Start(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondServiceError(c, err, "start checkout")
		return
	}

	c.JSON(http.StatusOK, checkoutResponse(view))
}

// Get returns the current checkout step
// GET /api/v1/checkout
func (ctrl *CheckoutController) Get(c *gin.Context) {
	sessionID, userID, ok := checkoutUser(c)
	if !ok {
		return
	}

	view, err := ctrl.checkoutService.Get(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondServiceError(c, err, "get checkout")
		return
	}

	c.JSON(http.StatusOK, checkoutResponse(view))
}

// SubmitForm stores contact and shipping details and moves to payment
// POST /api/v1/checkout/form
func (ctrl *CheckoutController) SubmitForm(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, userID, ok := checkoutUser(c)
	if !ok {
		return
	}

	var req CheckoutFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid checkout form")
		return
	}

	view, err := ctrl.checkoutService.SubmitForm(c.Request.Context(), sessionID, userID, service.CheckoutForm{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		AddressLine:   req.AddressLine,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		GiftCardCodes: req.GiftCardCodes,
	})
	if err != nil {
		respondServiceError(c, err, "submit checkout form")
		return
	}

	log.Info("Checkout form accepted", map[string]interface{}{
		"session_id": sessionID,
		"gift_cards": len(req.GiftCardCodes),
	})

	c.JSON(http.StatusOK, checkoutResponse(view))
}

// Back returns from payment to the form
// POST /api/v1/checkout/back
func (ctrl *CheckoutController) Back(c *gin.Context) {
	sessionID, userID, ok := checkoutUser(c)
	if !ok {
		return
	}

	view, err := ctrl.checkoutService.Back(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondServiceError(c, err, "leave payment step")
		return
	}

	c.JSON(http.StatusOK, checkoutResponse(view))
}

// Pay charges the card and places the order
// POST /api/v1/checkout/pay
func (ctrl *CheckoutController) Pay(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, userID, ok := checkoutUser(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid payment details")
		return
	}

	view, err := ctrl.checkoutService.Pay(c.Request.Context(), sessionID, userID, simulator.Card{
		Holder: req.Holder,
		Number: req.Number,
		Expiry: req.Expiry,
		CVC:    req.CVC,
	})
	if err != nil {
		respondServiceError(c, err, "checkout payment")
		return
	}

	log.Info("Order placed", map[string]interface{}{
		"session_id": sessionID,
		"order_id":   view.Order.ID,
	})

	c.JSON(http.StatusCreated, checkoutResponse(view))
}
