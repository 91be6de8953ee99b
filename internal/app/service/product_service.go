package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/productcode"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductSKUExists     = errors.New("product SKU already exists")
	ErrInvalidProduct       = errors.New("invalid product")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrProductCodeInvalid   = errors.New("product code cannot be generated")
	ErrProductNameRequired  = errors.New("product name is required")
	ErrProductPriceNegative = errors.New("price must not be negative")
	ErrSalePriceTooHigh     = errors.New("sale price must be below the price")
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortName      ProductSort = "name"
)

type ProductListOptions struct {
	CategoryID    *uint
	Search        string
	Sort          ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Name          string
	Description   string
	SKU           string
	Price         decimal.Decimal
	SalePrice     *decimal.Decimal
	StockQuantity int
	CategoryID    uint
	ImageURL      string
}

// ProductUpdate carries optional changes; nil fields are left alone.
type ProductUpdate struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	SalePrice      *decimal.Decimal
	ClearSalePrice bool
	StockQuantity  *int
	CategoryID     *uint
	ImageURL       *string
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, int64, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(id uint, update ProductUpdate) (*model.Product, error)
	DeleteProduct(id uint) error
	// RegenerateCode recomputes the product code from the current name,
	// category and attributes. When generation fails the stored code is
	// cleared and the error returned.
	RegenerateCode(id uint) (string, error)
	CheckStock(productID uint, variantSKU string, quantity int) error
}

type productService struct {
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	attributeRepo repository.AttributeRepository
	variantRepo   repository.VariantRepository
	codes         *productcode.Generator
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	attributeRepo repository.AttributeRepository,
	variantRepo repository.VariantRepository,
	codes *productcode.Generator,
) ProductService {
	if codes == nil {
		codes = productcode.New()
	}
	return &productService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		attributeRepo: attributeRepo,
		variantRepo:   variantRepo,
		codes:         codes,
	}
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, int64, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"category_id": opts.CategoryID,
		"search":      opts.Search,
		"sort":        opts.Sort,
		"limit":       opts.Limit,
		"offset":      opts.Offset,
	})

	filter := repository.ProductFilter{
		CategoryID:    opts.CategoryID,
		Search:        strings.TrimSpace(opts.Search),
		SortAscending: opts.SortAscending,
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	}

	switch opts.Sort {
	case ProductSortPrice:
		filter.SortBy = repository.ProductSortPrice
	case ProductSortName:
		filter.SortBy = repository.ProductSortName
	default:
		filter.SortBy = repository.ProductSortCreatedAt
	}

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, 0, err
	}
	return products, total, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByIDWithDetails(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func validatePrices(price decimal.Decimal, sale decimal.NullDecimal) error {
	if price.IsNegative() {
		return ErrProductPriceNegative
	}
	if sale.Valid && (sale.Decimal.IsNegative() || sale.Decimal.GreaterThanOrEqual(price)) {
		return ErrSalePriceTooHigh
	}
	return nil
}

func (s *productService) ensureCategory(id uint) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name":        input.Name,
		"sku":         input.SKU,
		"category_id": input.CategoryID,
	})

	name := strings.TrimSpace(input.Name)
	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	if name == "" {
		return nil, ErrProductNameRequired
	}
	if sku == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrInvalidProduct)
	}
	if input.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}

	product := &model.Product{
		Name:          name,
		Description:   input.Description,
		SKU:           sku,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		CategoryID:    input.CategoryID,
		ImageURL:      input.ImageURL,
	}
	if input.SalePrice != nil {
		product.SalePrice = decimal.NewNullDecimal(*input.SalePrice)
	}
	if err := validatePrices(product.Price, product.SalePrice); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(input.CategoryID); err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindBySKU(sku); err == nil {
		logger.Warn("Product SKU already exists", map[string]interface{}{
			"sku": sku,
		})
		return nil, ErrProductSKUExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"sku": sku,
		})
		return nil, err
	}

	if code, err := s.RegenerateCode(product.ID); err == nil {
		product.Code = code
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"code":       product.Code,
	})
	return product, nil
}

func (s *productService) UpdateProduct(id uint, update ProductUpdate) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	codeChanged := false
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrProductNameRequired
		}
		codeChanged = codeChanged || name != product.Name
		product.Name = name
	}
	if update.CategoryID != nil && *update.CategoryID != product.CategoryID {
		if err := s.ensureCategory(*update.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *update.CategoryID
		codeChanged = true
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.ClearSalePrice {
		product.SalePrice = decimal.NullDecimal{}
	} else if update.SalePrice != nil {
		product.SalePrice = decimal.NewNullDecimal(*update.SalePrice)
	}
	if update.StockQuantity != nil {
		if *update.StockQuantity < 0 {
			return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
		}
		product.StockQuantity = *update.StockQuantity
	}
	if update.ImageURL != nil {
		product.ImageURL = *update.ImageURL
	}
	if err := validatePrices(product.Price, product.SalePrice); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(product); err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	if codeChanged {
		code, _ := s.RegenerateCode(id)
		product.Code = code
	}
	return product, nil
}

func (s *productService) DeleteProduct(id uint) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

// codeAttributes flattens the product's attributes for the code generator.
func codeAttributes(attrs []model.ProductAttribute) []productcode.Attribute {
	out := make([]productcode.Attribute, 0, len(attrs))
	for i := range attrs {
		out = append(out, productcode.Attribute{
			Name:   attrs[i].Name,
			Values: attrs[i].Selections(),
		})
	}
	return out
}

func (s *productService) RegenerateCode(id uint) (string, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrProductNotFound
		}
		return "", err
	}

	attrs, err := s.attributeRepo.FindByProduct(id)
	if err != nil {
		return "", err
	}

	categoryID := ""
	if product.CategoryID != 0 {
		categoryID = strconv.FormatUint(uint64(product.CategoryID), 10)
	}

	code, genErr := s.codes.Generate(product.Name, categoryID, codeAttributes(attrs))
	if genErr != nil {
		logger.Warn("Product code generation failed, clearing code", map[string]interface{}{
			"product_id": id,
			"error":      genErr.Error(),
		})
		if err := s.productRepo.UpdateCode(id, ""); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrProductCodeInvalid, genErr)
	}

	if err := s.productRepo.UpdateCode(id, code); err != nil {
		logger.Error("Failed to store product code", err, map[string]interface{}{
			"product_id": id,
		})
		return "", err
	}

	logger.Debug("Product code regenerated", map[string]interface{}{
		"product_id": id,
		"code":       code,
	})
	return code, nil
}

// CheckStock verifies quantity units are available for the product, or for
// the variant when variantSKU is set.
func (s *productService) CheckStock(productID uint, variantSKU string, quantity int) error {
	if variantSKU != "" {
		v, err := s.variantRepo.FindBySKU(variantSKU)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVariantNotFound
			}
			return err
		}
		if v.ProductID != productID {
			return ErrVariantMismatch
		}
		if v.StockQuantity < quantity {
			return ErrInsufficientStock
		}
		return nil
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if product.StockQuantity < quantity {
		return ErrInsufficientStock
	}
	return nil
}
