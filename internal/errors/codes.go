package errors

// Error codes returned in the "error" field of JSON error responses.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to their own messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (PRODUCT_, ATTRIBUTE_) ====================
	ProductNotFound            = "PRODUCT_NOT_FOUND"
	ProductSKUExists           = "PRODUCT_SKU_EXISTS"
	ProductCodeInvalid         = "PRODUCT_CODE_INVALID"
	CategoryNotFound           = "CATEGORY_NOT_FOUND"
	AttributeNotFound          = "ATTRIBUTE_NOT_FOUND"
	AttributeDuplicate         = "ATTRIBUTE_DUPLICATE"
	AttributeInvalidValue      = "ATTRIBUTE_INVALID_VALUE"
	AttributeInvalidDefinition = "ATTRIBUTE_INVALID_DEFINITION"
	AttributeInvalidOrder      = "ATTRIBUTE_INVALID_ORDER"
	AttributeRequiredMissing   = "ATTRIBUTE_REQUIRED_MISSING"

	// ==================== Variants (VARIANT_) ====================
	VariantNoAttributes      = "VARIANT_NO_ATTRIBUTES"
	VariantMissingSelection  = "VARIANT_MISSING_SELECTION"
	VariantNotVariantable    = "VARIANT_ATTRIBUTE_NOT_VARIANTABLE"
	VariantNotFound          = "VARIANT_NOT_FOUND"
	VariantDuplicateAttrName = "VARIANT_DUPLICATE_ATTRIBUTE"
	VariantTooMany           = "VARIANT_TOO_MANY_COMBINATIONS"

	// ==================== Cart (CART_) ====================
	CartItemNotFound      = "CART_ITEM_NOT_FOUND"
	CartEmpty             = "CART_EMPTY"
	CartInvalidQuantity   = "CART_INVALID_QUANTITY"
	CartInsufficientStock = "CART_INSUFFICIENT_STOCK"
	CartVariantMismatch   = "CART_VARIANT_MISMATCH"

	// ==================== Discount keys (DISCOUNT_) ====================
	DiscountNotFound       = "DISCOUNT_NOT_FOUND"
	DiscountInactive       = "DISCOUNT_INACTIVE"
	DiscountExpired        = "DISCOUNT_EXPIRED"
	DiscountProductMissing = "DISCOUNT_PRODUCT_NOT_IN_CART"
	DiscountAlreadyApplied = "DISCOUNT_ALREADY_APPLIED"
	DiscountInvalidTier    = "DISCOUNT_INVALID_TIER"

	// ==================== Gift cards (GIFTCARD_) ====================
	GiftCardNotFound       = "GIFTCARD_NOT_FOUND"
	GiftCardUsed           = "GIFTCARD_USED"
	GiftCardExpired        = "GIFTCARD_EXPIRED"
	GiftCardNotOwned       = "GIFTCARD_NOT_OWNED"
	GiftCardInvalidAmount  = "GIFTCARD_INVALID_AMOUNT"
	GiftCardAlreadyApplied = "GIFTCARD_ALREADY_APPLIED"
	GiftCardNotApplied     = "GIFTCARD_NOT_APPLIED"

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutNotStarted        = "CHECKOUT_NOT_STARTED"
	CheckoutInvalidTransition = "CHECKOUT_INVALID_TRANSITION"
	CheckoutInvalidForm       = "CHECKOUT_INVALID_FORM"
	CheckoutPaymentInvalid    = "CHECKOUT_PAYMENT_INVALID"
	CheckoutPaymentDeclined   = "CHECKOUT_PAYMENT_DECLINED"
	CheckoutFailed            = "CHECKOUT_FAILED"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound      = "ORDER_NOT_FOUND"
	OrderInvalidStatus = "ORDER_INVALID_STATUS"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
