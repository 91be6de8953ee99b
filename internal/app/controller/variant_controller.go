package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/service"
	apperrors "github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type VariantController struct {
	variantService service.VariantService
}

func NewVariantController(variantService service.VariantService) *VariantController {
	return &VariantController{variantService: variantService}
}

type GenerateVariantsRequest struct {
	Attributes []string `json:"attributes"`
}

type UpdateVariantRequest struct {
	Price          *decimal.Decimal `json:"price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	ClearSalePrice bool             `json:"clear_sale_price"`
	StockQuantity  *int             `json:"stock_quantity" binding:"omitempty,gte=0"`
}

// ListVariants returns a product's variants
// GET /api/v1/products/:id/variants
func (ctrl *VariantController) ListVariants(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	variants, err := ctrl.variantService.ListVariants(productID)
	if err != nil {
		respondServiceError(c, err, "list variants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variants": variants,
		"count":    len(variants),
	})
}

// PreviewVariants shows the combinations without persisting them
// POST /api/v1/products/:id/variants/preview
func (ctrl *VariantController) PreviewVariants(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req GenerateVariantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "attributes must be a list of names")
		return
	}

	variants, err := ctrl.variantService.PreviewVariants(productID, req.Attributes)
	if err != nil {
		respondServiceError(c, err, "preview variants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variants": variants,
		"count":    len(variants),
	})
}

// GenerateVariants replaces a product's variants with every combination of
// the named attributes
// POST /api/v1/products/:id/variants
func (ctrl *VariantController) GenerateVariants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req GenerateVariantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "attributes must be a list of names")
		return
	}

	variants, err := ctrl.variantService.GenerateVariants(productID, req.Attributes)
	if err != nil {
		respondServiceError(c, err, "generate variants")
		return
	}

	log.Info("Variants generated", map[string]interface{}{
		"product_id": productID,
		"attributes": req.Attributes,
		"count":      len(variants),
	})

	c.JSON(http.StatusCreated, gin.H{
		"variants": variants,
		"count":    len(variants),
	})
}

// UpdateVariant edits price, sale price or stock of one variant
// PUT /api/v1/products/:id/variants/:variantId
func (ctrl *VariantController) UpdateVariant(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	variantID, ok := uintParam(c, "variantId")
	if !ok {
		return
	}

	var req UpdateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid variant details")
		return
	}

	v, err := ctrl.variantService.UpdateVariant(productID, variantID, service.VariantUpdate{
		Price:          req.Price,
		SalePrice:      req.SalePrice,
		ClearSalePrice: req.ClearSalePrice,
		StockQuantity:  req.StockQuantity,
	})
	if err != nil {
		respondServiceError(c, err, "update variant")
		return
	}

	c.JSON(http.StatusOK, gin.H{"variant": v})
}

// ExportVariants downloads the variant table as a spreadsheet
// GET /api/v1/products/:id/variants/export
func (ctrl *VariantController) ExportVariants(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	data, err := ctrl.variantService.ExportVariants(productID)
	if err != nil {
		respondServiceError(c, err, "export variants")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="product-%d-variants.xlsx"`, productID))
	c.Data(http.StatusOK, xlsxContentType, data)
}
