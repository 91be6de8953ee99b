package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/service"
	apperrors "github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
	"gorm.io/datatypes"
)

type AttributeController struct {
	attributeService service.AttributeService
}

func NewAttributeController(attributeService service.AttributeService) *AttributeController {
	return &AttributeController{attributeService: attributeService}
}

type CreateDefinitionRequest struct {
	Name         string              `json:"name" binding:"required"`
	Kind         model.AttributeKind `json:"kind" binding:"required"`
	Options      []string            `json:"options"`
	Required     bool                `json:"required"`
	Description  string              `json:"description"`
	DefaultValue json.RawMessage     `json:"default_value"`
	CategoryIDs  []int64             `json:"category_ids"`
}

type AddAttributeRequest struct {
	Group        model.AttributeGroup `json:"group" binding:"required"`
	DefinitionID uint                 `json:"definition_id" binding:"required"`
}

type UpdateAttributeValueRequest struct {
	Value json.RawMessage `json:"value" binding:"required"`
}

type ReorderGroupRequest struct {
	Group        model.AttributeGroup `json:"group" binding:"required"`
	AttributeIDs []uint               `json:"attribute_ids" binding:"required"`
}

// ListDefinitions returns attribute definitions, optionally only those that
// apply to a category
// GET /api/v1/attributes?category_id=
func (ctrl *AttributeController) ListDefinitions(c *gin.Context) {
	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid category_id")
			return
		}
		v := uint(id)
		categoryID = &v
	}

	defs, err := ctrl.attributeService.ListDefinitions(categoryID)
	if err != nil {
		respondServiceError(c, err, "list attribute definitions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attributes": defs,
		"count":      len(defs),
	})
}

// CreateDefinition adds an attribute definition
// POST /api/v1/attributes
func (ctrl *AttributeController) CreateDefinition(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid attribute definition request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid attribute definition")
		return
	}

	def := &model.AttributeDefinition{
		Name:        req.Name,
		Kind:        req.Kind,
		Options:     pq.StringArray(req.Options),
		Required:    req.Required,
		Description: req.Description,
		CategoryIDs: pq.Int64Array(req.CategoryIDs),
	}
	if len(req.DefaultValue) > 0 && string(req.DefaultValue) != "null" {
		def.DefaultValue = datatypes.JSON(req.DefaultValue)
	}

	if err := ctrl.attributeService.CreateDefinition(def); err != nil {
		respondServiceError(c, err, "create attribute definition")
		return
	}

	log.Info("Attribute definition created", map[string]interface{}{
		"definition_id": def.ID,
		"name":          def.Name,
	})

	c.JSON(http.StatusCreated, gin.H{"attribute": def})
}

// DeleteDefinition removes an attribute definition
// DELETE /api/v1/attributes/:id
func (ctrl *AttributeController) DeleteDefinition(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.attributeService.DeleteDefinition(id); err != nil {
		respondServiceError(c, err, "delete attribute definition")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attribute definition deleted"})
}

// ListGroups returns a product's attributes grouped and ordered
// GET /api/v1/products/:id/attributes
func (ctrl *AttributeController) ListGroups(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	groups, err := ctrl.attributeService.ListGroups(productID)
	if err != nil {
		respondServiceError(c, err, "list product attributes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// AddAttribute instantiates a definition on a product
// POST /api/v1/products/:id/attributes
func (ctrl *AttributeController) AddAttribute(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req AddAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "group and definition_id are required")
		return
	}

	attr, err := ctrl.attributeService.AddAttribute(productID, req.Group, req.DefinitionID)
	if err != nil {
		respondServiceError(c, err, "add product attribute")
		return
	}

	log.Info("Attribute added to product", map[string]interface{}{
		"product_id":   productID,
		"attribute_id": attr.ID,
		"group":        attr.Group,
	})

	c.JSON(http.StatusCreated, gin.H{"attribute": attr})
}

// UpdateAttributeValue sets the value of one product attribute
// PUT /api/v1/products/:id/attributes/:attributeId
func (ctrl *AttributeController) UpdateAttributeValue(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	attributeID, ok := uintParam(c, "attributeId")
	if !ok {
		return
	}

	var req UpdateAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "value is required")
		return
	}

	attr, err := ctrl.attributeService.UpdateAttributeValue(productID, attributeID, req.Value)
	if err != nil {
		respondServiceError(c, err, "update attribute value")
		return
	}

	c.JSON(http.StatusOK, gin.H{"attribute": attr})
}

// RemoveAttribute drops an attribute from a product
// DELETE /api/v1/products/:id/attributes/:attributeId
func (ctrl *AttributeController) RemoveAttribute(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	attributeID, ok := uintParam(c, "attributeId")
	if !ok {
		return
	}

	if err := ctrl.attributeService.RemoveAttribute(productID, attributeID); err != nil {
		respondServiceError(c, err, "remove attribute")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attribute removed"})
}

// ReorderGroup sets the display order of one group
// PUT /api/v1/products/:id/attribute-order
func (ctrl *AttributeController) ReorderGroup(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req ReorderGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "group and attribute_ids are required")
		return
	}

	attrs, err := ctrl.attributeService.ReorderGroup(productID, req.Group, req.AttributeIDs)
	if err != nil {
		respondServiceError(c, err, "reorder attributes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"attributes": attrs})
}

// ValidateRequired reports required attributes that still have no value
// GET /api/v1/products/:id/attribute-check
func (ctrl *AttributeController) ValidateRequired(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	missing, err := ctrl.attributeService.ValidateRequired(productID)
	if err != nil {
		respondServiceError(c, err, "validate attributes")
		return
	}

	if len(missing) > 0 {
		apperrors.RespondWithFieldErrors(c, apperrors.AttributeRequiredMissing, "Required attributes are missing", missing)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}
