package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/export"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/metrics"
	"github.com/storefront/storefront-backend/pkg/variant"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrVariantNotFound         = errors.New("variant not found")
	ErrVariantMismatch         = errors.New("variant does not belong to the product")
	ErrAttributeNotVariantable = errors.New("attribute kind cannot define variants")
	ErrInvalidVariant          = errors.New("invalid variant")
)

// VariantUpdate carries optional changes; nil fields are left alone.
type VariantUpdate struct {
	Price          *decimal.Decimal
	SalePrice      *decimal.Decimal
	ClearSalePrice bool
	StockQuantity  *int
}

type VariantService interface {
	// GenerateVariants replaces the product's variants with one per
	// combination of the named attributes' selected values.
	GenerateVariants(productID uint, attributeNames []string) ([]model.ProductVariant, error)
	PreviewVariants(productID uint, attributeNames []string) ([]variant.Variant, error)
	ListVariants(productID uint) ([]model.ProductVariant, error)
	UpdateVariant(productID, variantID uint, update VariantUpdate) (*model.ProductVariant, error)
	ExportVariants(productID uint) ([]byte, error)
}

type variantService struct {
	variantRepo     repository.VariantRepository
	productRepo     repository.ProductRepository
	attributeRepo   repository.AttributeRepository
	maxCombinations int
}

// NewVariantService rejects selections expanding to more than
// maxCombinations variants; zero means variant.DefaultMaxCombinations.
func NewVariantService(
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	attributeRepo repository.AttributeRepository,
	maxCombinations int,
) VariantService {
	return &variantService{
		variantRepo:     variantRepo,
		productRepo:     productRepo,
		attributeRepo:   attributeRepo,
		maxCombinations: maxCombinations,
	}
}

func (s *variantService) loadProduct(productID uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// selectedAttributes resolves names against the product's attributes in the
// order given. The first match in group order wins when a name repeats.
func (s *variantService) selectedAttributes(productID uint, names []string) ([]variant.Attribute, error) {
	attrs, err := s.attributeRepo.FindByProduct(productID)
	if err != nil {
		return nil, err
	}

	selected := make([]variant.Attribute, 0, len(names))
	for _, name := range names {
		var found *model.ProductAttribute
		for i := range attrs {
			if strings.EqualFold(attrs[i].Name, strings.TrimSpace(name)) {
				found = &attrs[i]
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("%w: %q", ErrAttributeNotFound, name)
		}
		if !found.Kind.Variantable() {
			return nil, fmt.Errorf("%w: %q is %s", ErrAttributeNotVariantable, found.Name, found.Kind)
		}
		selected = append(selected, variant.Attribute{
			Name:   found.Name,
			Values: found.Selections(),
		})
	}
	return selected, nil
}

func baseOf(product *model.Product) variant.Base {
	base := variant.Base{
		SKU:   product.SKU,
		Price: product.Price,
		Stock: product.StockQuantity,
	}
	if product.SalePrice.Valid {
		sale := product.SalePrice.Decimal
		base.SalePrice = &sale
	}
	return base
}

func (s *variantService) build(productID uint, names []string) (*model.Product, []variant.Variant, error) {
	product, err := s.loadProduct(productID)
	if err != nil {
		return nil, nil, err
	}
	attrs, err := s.selectedAttributes(productID, names)
	if err != nil {
		return nil, nil, err
	}
	generated, err := variant.GenerateWithin(baseOf(product), attrs, s.maxCombinations)
	if err != nil {
		return nil, nil, err
	}
	return product, generated, nil
}

func (s *variantService) PreviewVariants(productID uint, attributeNames []string) ([]variant.Variant, error) {
	_, generated, err := s.build(productID, attributeNames)
	if err != nil {
		return nil, err
	}
	return generated, nil
}

func (s *variantService) GenerateVariants(productID uint, attributeNames []string) ([]model.ProductVariant, error) {
	logger.Info("Generating product variants", map[string]interface{}{
		"product_id": productID,
		"attributes": attributeNames,
	})

	_, generated, err := s.build(productID, attributeNames)
	if err != nil {
		metrics.VariantsGenerated.WithLabelValues("failed").Inc()
		logger.Warn("Variant generation rejected", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil, err
	}

	rows := make([]model.ProductVariant, len(generated))
	for i, g := range generated {
		attrs := make(datatypes.JSONMap, len(g.Attributes))
		for k, v := range g.Attributes {
			attrs[k] = v
		}
		rows[i] = model.ProductVariant{
			ProductID:     productID,
			SKU:           g.SKU,
			Price:         g.Price,
			StockQuantity: g.Stock,
			Attributes:    attrs,
		}
		if g.SalePrice != nil {
			rows[i].SalePrice = decimal.NewNullDecimal(*g.SalePrice)
		}
	}

	if err := s.variantRepo.ReplaceForProduct(productID, rows); err != nil {
		metrics.VariantsGenerated.WithLabelValues("failed").Inc()
		logger.Error("Failed to persist generated variants", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	metrics.VariantsGenerated.WithLabelValues("success").Add(float64(len(rows)))
	logger.Info("Product variants generated", map[string]interface{}{
		"product_id": productID,
		"count":      len(rows),
	})
	return rows, nil
}

func (s *variantService) ListVariants(productID uint) ([]model.ProductVariant, error) {
	if _, err := s.loadProduct(productID); err != nil {
		return nil, err
	}
	return s.variantRepo.FindByProductID(productID)
}

func (s *variantService) UpdateVariant(productID, variantID uint, update VariantUpdate) (*model.ProductVariant, error) {
	v, err := s.variantRepo.FindByID(variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	if v.ProductID != productID {
		return nil, ErrVariantNotFound
	}

	if update.Price != nil {
		v.Price = *update.Price
	}
	if update.ClearSalePrice {
		v.SalePrice = decimal.NullDecimal{}
	} else if update.SalePrice != nil {
		v.SalePrice = decimal.NewNullDecimal(*update.SalePrice)
	}
	if update.StockQuantity != nil {
		if *update.StockQuantity < 0 {
			return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidVariant)
		}
		v.StockQuantity = *update.StockQuantity
	}
	if err := validatePrices(v.Price, v.SalePrice); err != nil {
		return nil, err
	}

	if err := s.variantRepo.Update(v); err != nil {
		logger.Error("Failed to update variant", err, map[string]interface{}{
			"variant_id": variantID,
		})
		return nil, err
	}
	return v, nil
}

func (s *variantService) ExportVariants(productID uint) ([]byte, error) {
	product, err := s.loadProduct(productID)
	if err != nil {
		return nil, err
	}
	variants, err := s.variantRepo.FindByProductID(productID)
	if err != nil {
		return nil, err
	}
	attrs, err := s.attributeRepo.FindByProduct(productID)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0, len(attrs))
	for _, a := range attrs {
		order = append(order, a.Name)
	}
	return export.Variants(product, variants, order)
}
