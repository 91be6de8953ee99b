package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps storage and transport errors to a code and a message that
// is safe to show. context names the operation, e.g. "create product".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	errLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	// postgres 23505 and sqlite UNIQUE failures
	if strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") ||
		strings.Contains(errLower, "unique failed") {
		return parseDuplicateKeyError(errLower)
	}

	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "Other records still reference this item"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
	}

	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(errLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "A value is out of range"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{Code: InternalExternalAPI, Message: "A backing service is unavailable. Please try again later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultErrorMessage(context)}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
	case strings.Contains(errLower, "product_variants") && strings.Contains(errLower, "sku"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "A variant with this SKU already exists"}
	case strings.Contains(errLower, "sku"):
		return ErrorInfo{Code: ProductSKUExists, Message: "A product with this SKU already exists"}
	case strings.Contains(errLower, "product_attribute"):
		return ErrorInfo{Code: AttributeDuplicate, Message: "This attribute is already in the group"}
	case strings.Contains(errLower, "code"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This code is already in use"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
}

func notFoundMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "variant"):
		return "Variant not found"
	case strings.Contains(c, "product"):
		return "Product not found"
	case strings.Contains(c, "attribute"):
		return "Attribute not found"
	case strings.Contains(c, "order"):
		return "Order not found"
	case strings.Contains(c, "gift"):
		return "Gift card not found"
	case strings.Contains(c, "user"):
		return "User not found"
	}
	return "The requested record was not found"
}

func defaultErrorMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "create"):
		return "Could not create the record. Please try again later"
	case strings.Contains(c, "update"):
		return "Could not update the record. Please try again later"
	case strings.Contains(c, "delete"):
		return "Could not delete the record. Please try again later"
	}
	return "Something went wrong. Please try again later"
}

// ParseAndRespond parses err and writes it with statusCode.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
