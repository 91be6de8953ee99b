package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/service"
	apperrors "github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required"`
	Description   string           `json:"description"`
	SKU           string           `json:"sku" binding:"required"`
	Price         decimal.Decimal  `json:"price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	StockQuantity int              `json:"stock_quantity" binding:"gte=0"`
	CategoryID    uint             `json:"category_id" binding:"required"`
	ImageURL      string           `json:"image_url"`
}

type UpdateProductRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	ClearSalePrice bool             `json:"clear_sale_price"`
	StockQuantity  *int             `json:"stock_quantity" binding:"omitempty,gte=0"`
	CategoryID     *uint            `json:"category_id"`
	ImageURL       *string          `json:"image_url"`
}

// ListProducts returns a page of products
// GET /api/v1/products?category_id=&search=&sort=price|name|created_at&order=asc|desc&limit=&offset=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	opts := service.ProductListOptions{
		Search:        c.Query("search"),
		Sort:          service.ProductSort(c.Query("sort")),
		SortAscending: c.Query("order") == "asc",
		Limit:         intQuery(c, "limit", 20),
		Offset:        intQuery(c, "offset", 0),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid category_id")
			return
		}
		categoryID := uint(id)
		opts.CategoryID = &categoryID
	}

	products, total, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		respondServiceError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"total":    total,
	})
}

// GetProductByID returns a product with its attributes and variants
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		respondServiceError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct creates a new product and its product code
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product details")
		return
	}

	product, err := ctrl.productService.CreateProduct(service.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		SKU:           req.SKU,
		Price:         req.Price,
		SalePrice:     req.SalePrice,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		respondServiceError(c, err, "create product")
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"code":       product.Code,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct applies partial changes to a product
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product update request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product details")
		return
	}

	product, err := ctrl.productService.UpdateProduct(id, service.ProductUpdate{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		SalePrice:      req.SalePrice,
		ClearSalePrice: req.ClearSalePrice,
		StockQuantity:  req.StockQuantity,
		CategoryID:     req.CategoryID,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		respondServiceError(c, err, "update product")
		return
	}

	log.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct removes a product
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		respondServiceError(c, err, "delete product")
		return
	}

	log.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// RegenerateCode recomputes the product code from the current name,
// category and key attributes
// POST /api/v1/products/:id/code
func (ctrl *ProductController) RegenerateCode(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	code, err := ctrl.productService.RegenerateCode(id)
	if err != nil {
		respondServiceError(c, err, "regenerate product code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}
