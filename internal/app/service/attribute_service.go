package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAttributeNotFound          = errors.New("attribute not found")
	ErrDefinitionNotFound         = errors.New("attribute definition not found")
	ErrDefinitionExists           = errors.New("attribute definition already exists")
	ErrDefinitionNotApplicable    = errors.New("attribute definition does not apply to the product category")
	ErrInvalidAttributeDefinition = errors.New("invalid attribute definition")
	ErrInvalidAttributeGroup      = errors.New("invalid attribute group")
	ErrDuplicateAttribute         = errors.New("attribute already exists in group")
	ErrInvalidAttributeOrder      = errors.New("order must list every attribute of the group exactly once")
)

// AttributeGroupView is one named group with its attributes in position order.
type AttributeGroupView struct {
	Group      model.AttributeGroup     `json:"group"`
	Attributes []model.ProductAttribute `json:"attributes"`
}

type AttributeService interface {
	ListDefinitions(categoryID *uint) ([]model.AttributeDefinition, error)
	CreateDefinition(def *model.AttributeDefinition) error
	DeleteDefinition(id uint) error

	ListGroups(productID uint) ([]AttributeGroupView, error)
	AddAttribute(productID uint, group model.AttributeGroup, definitionID uint) (*model.ProductAttribute, error)
	UpdateAttributeValue(productID, attributeID uint, raw json.RawMessage) (*model.ProductAttribute, error)
	RemoveAttribute(productID, attributeID uint) error
	ReorderGroup(productID uint, group model.AttributeGroup, orderedIDs []uint) ([]model.ProductAttribute, error)
	// ValidateRequired returns "group.name" -> message for every required
	// attribute without a value. An empty map means the product is complete.
	ValidateRequired(productID uint) (map[string]string, error)
}

type attributeService struct {
	attributeRepo  repository.AttributeRepository
	productRepo    repository.ProductRepository
	productService ProductService
}

func NewAttributeService(
	attributeRepo repository.AttributeRepository,
	productRepo repository.ProductRepository,
	productService ProductService,
) AttributeService {
	return &attributeService{
		attributeRepo:  attributeRepo,
		productRepo:    productRepo,
		productService: productService,
	}
}

func (s *attributeService) ListDefinitions(categoryID *uint) ([]model.AttributeDefinition, error) {
	defs, err := s.attributeRepo.FindDefinitions()
	if err != nil {
		logger.Error("Failed to list attribute definitions", err)
		return nil, err
	}
	if categoryID == nil {
		return defs, nil
	}

	applicable := make([]model.AttributeDefinition, 0, len(defs))
	for i := range defs {
		if defs[i].AppliesTo(*categoryID) {
			applicable = append(applicable, defs[i])
		}
	}
	return applicable, nil
}

func (s *attributeService) CreateDefinition(def *model.AttributeDefinition) error {
	def.Name = strings.TrimSpace(def.Name)
	if err := def.Validate(); err != nil {
		logger.Warn("Attribute definition rejected", map[string]interface{}{
			"name":  def.Name,
			"error": err.Error(),
		})
		return fmt.Errorf("%w: %v", ErrInvalidAttributeDefinition, err)
	}

	existing, err := s.attributeRepo.FindDefinitions()
	if err != nil {
		return err
	}
	for _, d := range existing {
		if strings.EqualFold(d.Name, def.Name) {
			return ErrDefinitionExists
		}
	}

	if err := s.attributeRepo.CreateDefinition(def); err != nil {
		logger.Error("Failed to create attribute definition", err, map[string]interface{}{
			"name": def.Name,
		})
		return err
	}

	logger.Info("Attribute definition created", map[string]interface{}{
		"definition_id": def.ID,
		"name":          def.Name,
		"kind":          def.Kind,
	})
	return nil
}

func (s *attributeService) DeleteDefinition(id uint) error {
	if err := s.attributeRepo.DeleteDefinition(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDefinitionNotFound
		}
		logger.Error("Failed to delete attribute definition", err, map[string]interface{}{
			"definition_id": id,
		})
		return err
	}
	return nil
}

func (s *attributeService) loadProduct(productID uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// loadAttribute returns the attribute when it belongs to the product.
func (s *attributeService) loadAttribute(productID, attributeID uint) (*model.ProductAttribute, error) {
	attr, err := s.attributeRepo.FindByID(attributeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttributeNotFound
		}
		return nil, err
	}
	if attr.ProductID != productID {
		return nil, ErrAttributeNotFound
	}
	return attr, nil
}

// refreshCode regenerates the product code after an attribute change. A
// failure only clears the code, so it is logged and not returned.
func (s *attributeService) refreshCode(productID uint) {
	if _, err := s.productService.RegenerateCode(productID); err != nil {
		logger.Warn("Product code not refreshed after attribute change", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
	}
}

func (s *attributeService) ListGroups(productID uint) ([]AttributeGroupView, error) {
	if _, err := s.loadProduct(productID); err != nil {
		return nil, err
	}

	attrs, err := s.attributeRepo.FindByProduct(productID)
	if err != nil {
		return nil, err
	}

	views := make([]AttributeGroupView, 0, len(model.AttributeGroups))
	for _, g := range model.AttributeGroups {
		view := AttributeGroupView{Group: g, Attributes: []model.ProductAttribute{}}
		for _, a := range attrs {
			if a.Group == g {
				view.Attributes = append(view.Attributes, a)
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *attributeService) AddAttribute(productID uint, group model.AttributeGroup, definitionID uint) (*model.ProductAttribute, error) {
	logger.Info("Adding attribute to product", map[string]interface{}{
		"product_id":    productID,
		"group":         group,
		"definition_id": definitionID,
	})

	if !group.Valid() {
		return nil, ErrInvalidAttributeGroup
	}
	product, err := s.loadProduct(productID)
	if err != nil {
		return nil, err
	}

	def, err := s.attributeRepo.FindDefinitionByID(definitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefinitionNotFound
		}
		return nil, err
	}
	if !def.AppliesTo(product.CategoryID) {
		return nil, ErrDefinitionNotApplicable
	}

	members, err := s.attributeRepo.FindByProductAndGroup(productID, group)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if strings.EqualFold(m.Name, def.Name) {
			logger.Warn("Attribute already in group", map[string]interface{}{
				"product_id": productID,
				"group":      group,
				"name":       def.Name,
			})
			return nil, ErrDuplicateAttribute
		}
	}

	defID := def.ID
	attr := &model.ProductAttribute{
		ProductID:    productID,
		Group:        group,
		Name:         def.Name,
		DefinitionID: &defID,
		Kind:         def.Kind,
		Options:      append([]string(nil), def.Options...),
		Required:     def.Required,
		Position:     len(members),
	}

	value := model.EmptyValue(def.Kind)
	if len(def.DefaultValue) > 0 {
		if v, err := model.DecodeAttributeValue(def.Kind, def.DefaultValue, def.Options); err == nil {
			value = v
		}
	}
	if err := attr.SetValue(value); err != nil {
		return nil, err
	}

	if err := s.attributeRepo.Create(attr); err != nil {
		logger.Error("Failed to add attribute", err, map[string]interface{}{
			"product_id": productID,
			"name":       def.Name,
		})
		return nil, err
	}

	s.refreshCode(productID)
	return attr, nil
}

func (s *attributeService) UpdateAttributeValue(productID, attributeID uint, raw json.RawMessage) (*model.ProductAttribute, error) {
	attr, err := s.loadAttribute(productID, attributeID)
	if err != nil {
		return nil, err
	}

	value, err := model.DecodeAttributeValue(attr.Kind, raw, attr.Options)
	if err != nil {
		logger.Warn("Attribute value rejected", map[string]interface{}{
			"attribute_id": attributeID,
			"kind":         attr.Kind,
			"error":        err.Error(),
		})
		return nil, err
	}
	if err := attr.SetValue(value); err != nil {
		return nil, err
	}

	if err := s.attributeRepo.Update(attr); err != nil {
		logger.Error("Failed to update attribute value", err, map[string]interface{}{
			"attribute_id": attributeID,
		})
		return nil, err
	}

	s.refreshCode(productID)
	return attr, nil
}

func (s *attributeService) RemoveAttribute(productID, attributeID uint) error {
	attr, err := s.loadAttribute(productID, attributeID)
	if err != nil {
		return err
	}

	members, err := s.attributeRepo.FindByProductAndGroup(productID, attr.Group)
	if err != nil {
		return err
	}

	remaining := make([]model.ProductAttribute, 0, len(members))
	for _, m := range members {
		if m.ID == attributeID {
			continue
		}
		m.Position = len(remaining)
		remaining = append(remaining, m)
	}

	if err := s.attributeRepo.DeleteAndReorder(attributeID, remaining); err != nil {
		logger.Error("Failed to remove attribute", err, map[string]interface{}{
			"attribute_id": attributeID,
		})
		return err
	}

	logger.Info("Attribute removed from product", map[string]interface{}{
		"product_id":   productID,
		"attribute_id": attributeID,
		"group":        attr.Group,
	})
	s.refreshCode(productID)
	return nil
}

func (s *attributeService) ReorderGroup(productID uint, group model.AttributeGroup, orderedIDs []uint) ([]model.ProductAttribute, error) {
	if !group.Valid() {
		return nil, ErrInvalidAttributeGroup
	}
	if _, err := s.loadProduct(productID); err != nil {
		return nil, err
	}

	members, err := s.attributeRepo.FindByProductAndGroup(productID, group)
	if err != nil {
		return nil, err
	}
	if len(orderedIDs) != len(members) {
		return nil, ErrInvalidAttributeOrder
	}

	byID := make(map[uint]model.ProductAttribute, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	reordered := make([]model.ProductAttribute, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		m, ok := byID[id]
		if !ok {
			return nil, ErrInvalidAttributeOrder
		}
		delete(byID, id)
		m.Position = i
		reordered = append(reordered, m)
	}

	if err := s.attributeRepo.SavePositions(reordered); err != nil {
		logger.Error("Failed to reorder attribute group", err, map[string]interface{}{
			"product_id": productID,
			"group":      group,
		})
		return nil, err
	}
	s.refreshCode(productID)
	return reordered, nil
}

func (s *attributeService) ValidateRequired(productID uint) (map[string]string, error) {
	if _, err := s.loadProduct(productID); err != nil {
		return nil, err
	}

	attrs, err := s.attributeRepo.FindByProduct(productID)
	if err != nil {
		return nil, err
	}

	missing := make(map[string]string)
	for i := range attrs {
		a := &attrs[i]
		if !a.Required {
			continue
		}
		v, err := a.Decoded()
		if err != nil || v.IsEmpty() {
			missing[fmt.Sprintf("%s.%s", a.Group, a.Name)] = "is required"
		}
	}
	return missing, nil
}
