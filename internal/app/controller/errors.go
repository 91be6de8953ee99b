package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/service"
	apperrors "github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/pkg/cart"
	"github.com/storefront/storefront-backend/pkg/payment/simulator"
	"github.com/storefront/storefront-backend/pkg/productcode"
	"github.com/storefront/storefront-backend/pkg/util"
	"github.com/storefront/storefront-backend/pkg/variant"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// serviceErrors is checked in order; the first errors.Is match wins.
var serviceErrors = []errorMapping{
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.ResourceNotFound},
	{service.ErrEmailAlreadyExists, http.StatusConflict, apperrors.AuthEmailAlreadyExists},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials},
	{util.ErrPasswordTooShort, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{util.ErrPasswordTooLong, http.StatusBadRequest, apperrors.ValidationInvalidInput},

	{service.ErrCategoryNotFound, http.StatusNotFound, apperrors.CategoryNotFound},
	{service.ErrCategoryExists, http.StatusConflict, apperrors.ResourceAlreadyExists},
	{service.ErrCategoryNameRequired, http.StatusBadRequest, apperrors.ValidationRequired},

	{service.ErrProductNotFound, http.StatusNotFound, apperrors.ProductNotFound},
	{service.ErrProductSKUExists, http.StatusConflict, apperrors.ProductSKUExists},
	{service.ErrProductCodeInvalid, http.StatusUnprocessableEntity, apperrors.ProductCodeInvalid},
	{productcode.ErrNameRequired, http.StatusUnprocessableEntity, apperrors.ProductCodeInvalid},
	{productcode.ErrCategoryRequired, http.StatusUnprocessableEntity, apperrors.ProductCodeInvalid},
	{service.ErrProductNameRequired, http.StatusBadRequest, apperrors.ValidationRequired},
	{service.ErrProductPriceNegative, http.StatusBadRequest, apperrors.ValidationInvalidRange},
	{service.ErrSalePriceTooHigh, http.StatusBadRequest, apperrors.ValidationInvalidRange},
	{service.ErrInvalidProduct, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrInsufficientStock, http.StatusConflict, apperrors.CartInsufficientStock},

	{service.ErrAttributeNotFound, http.StatusNotFound, apperrors.AttributeNotFound},
	{service.ErrDefinitionNotFound, http.StatusNotFound, apperrors.AttributeNotFound},
	{service.ErrDefinitionExists, http.StatusConflict, apperrors.AttributeDuplicate},
	{service.ErrDuplicateAttribute, http.StatusConflict, apperrors.AttributeDuplicate},
	{service.ErrDefinitionNotApplicable, http.StatusBadRequest, apperrors.AttributeInvalidDefinition},
	{service.ErrInvalidAttributeDefinition, http.StatusBadRequest, apperrors.AttributeInvalidDefinition},
	{model.ErrDefinitionNameRequired, http.StatusBadRequest, apperrors.AttributeInvalidDefinition},
	{model.ErrInvalidAttributeKind, http.StatusBadRequest, apperrors.AttributeInvalidDefinition},
	{model.ErrOptionsRequired, http.StatusBadRequest, apperrors.AttributeInvalidDefinition},
	{model.ErrDuplicateOption, http.StatusBadRequest, apperrors.AttributeInvalidDefinition},
	{service.ErrInvalidAttributeGroup, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrInvalidAttributeOrder, http.StatusBadRequest, apperrors.AttributeInvalidOrder},
	{model.ErrInvalidAttributeValue, http.StatusBadRequest, apperrors.AttributeInvalidValue},
	{model.ErrValueNotInOptions, http.StatusBadRequest, apperrors.AttributeInvalidValue},

	{variant.ErrNoAttributes, http.StatusUnprocessableEntity, apperrors.VariantNoAttributes},
	{variant.ErrMissingSelection, http.StatusUnprocessableEntity, apperrors.VariantMissingSelection},
	{variant.ErrDuplicateAttribute, http.StatusUnprocessableEntity, apperrors.VariantDuplicateAttrName},
	{variant.ErrTooManyCombinations, http.StatusUnprocessableEntity, apperrors.VariantTooMany},
	{service.ErrAttributeNotVariantable, http.StatusBadRequest, apperrors.VariantNotVariantable},
	{service.ErrVariantNotFound, http.StatusNotFound, apperrors.VariantNotFound},
	{service.ErrVariantMismatch, http.StatusBadRequest, apperrors.CartVariantMismatch},
	{service.ErrInvalidVariant, http.StatusBadRequest, apperrors.ValidationInvalidInput},

	{cart.ErrInvalidQuantity, http.StatusBadRequest, apperrors.CartInvalidQuantity},
	{cart.ErrItemNotFound, http.StatusNotFound, apperrors.CartItemNotFound},
	{cart.ErrProductNotInCart, http.StatusBadRequest, apperrors.DiscountProductMissing},
	{cart.ErrDiscountAlreadyApplied, http.StatusConflict, apperrors.DiscountAlreadyApplied},
	{cart.ErrGiftCardAlreadyApplied, http.StatusConflict, apperrors.GiftCardAlreadyApplied},
	{cart.ErrGiftCardNotApplied, http.StatusNotFound, apperrors.GiftCardNotApplied},

	{service.ErrDiscountNotFound, http.StatusNotFound, apperrors.DiscountNotFound},
	{service.ErrDiscountInactive, http.StatusBadRequest, apperrors.DiscountInactive},
	{service.ErrDiscountExpired, http.StatusBadRequest, apperrors.DiscountExpired},
	{service.ErrInvalidDiscountTier, http.StatusBadRequest, apperrors.DiscountInvalidTier},
	{service.ErrDiscountCodeExists, http.StatusConflict, apperrors.ResourceAlreadyExists},

	{service.ErrGiftCardNotFound, http.StatusNotFound, apperrors.GiftCardNotFound},
	{service.ErrGiftCardUsed, http.StatusBadRequest, apperrors.GiftCardUsed},
	{service.ErrGiftCardExpired, http.StatusBadRequest, apperrors.GiftCardExpired},
	{service.ErrGiftCardNotOwned, http.StatusForbidden, apperrors.GiftCardNotOwned},
	{service.ErrInvalidGiftCardAmount, http.StatusBadRequest, apperrors.GiftCardInvalidAmount},
	{service.ErrInvalidRecipient, http.StatusBadRequest, apperrors.ValidationInvalidFormat},

	{service.ErrEmptyCart, http.StatusBadRequest, apperrors.CartEmpty},
	{service.ErrCheckoutNotStarted, http.StatusNotFound, apperrors.CheckoutNotStarted},
	{service.ErrInvalidCheckoutTransition, http.StatusConflict, apperrors.CheckoutInvalidTransition},
	{simulator.ErrPaymentDeclined, http.StatusPaymentRequired, apperrors.CheckoutPaymentDeclined},

	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound},
	{service.ErrInvalidOrderStatus, http.StatusBadRequest, apperrors.OrderInvalidStatus},
	{service.ErrInvalidPaymentStatus, http.StatusBadRequest, apperrors.OrderInvalidStatus},
}

// respondServiceError writes err as a JSON error. Known service errors map
// to their status and code; anything else is a 500 described by context.
func respondServiceError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	var formErr *service.FormError
	if errors.As(err, &formErr) {
		log.Warn("Checkout form rejected", map[string]interface{}{
			"fields": formErr.Fields,
		})
		apperrors.RespondWithFieldErrors(c, apperrors.CheckoutInvalidForm, "Some checkout fields are invalid", formErr.Fields)
		return
	}

	var cardErr *simulator.CardError
	if errors.As(err, &cardErr) {
		log.Warn("Card details rejected", map[string]interface{}{
			"field": cardErr.Field,
		})
		apperrors.RespondWithFieldErrors(c, apperrors.CheckoutPaymentInvalid, "The card details are invalid", map[string]string{
			cardErr.Field: cardErr.Err.Error(),
		})
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			log.Warn("Request rejected", map[string]interface{}{
				"context": context,
				"code":    m.code,
				"error":   err.Error(),
			})
			apperrors.RespondWithError(c, m.status, m.code, err.Error())
			return
		}
	}

	log.Error("Request failed", err, map[string]interface{}{
		"context": context,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
}
