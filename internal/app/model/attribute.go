package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttributeKind string

const (
	KindText        AttributeKind = "text"
	KindNumber      AttributeKind = "number"
	KindBoolean     AttributeKind = "boolean"
	KindSelect      AttributeKind = "select"
	KindMultiSelect AttributeKind = "multiselect"
	KindColor       AttributeKind = "color"
)

func (k AttributeKind) Valid() bool {
	switch k {
	case KindText, KindNumber, KindBoolean, KindSelect, KindMultiSelect, KindColor:
		return true
	}
	return false
}

// RequiresOptions reports whether values must come from a fixed option list.
func (k AttributeKind) RequiresOptions() bool {
	return k == KindSelect || k == KindMultiSelect || k == KindColor
}

// Variantable reports whether the kind can drive variant generation.
func (k AttributeKind) Variantable() bool {
	return k.RequiresOptions()
}

type AttributeGroup string

const (
	GroupCommon   AttributeGroup = "common"
	GroupSpecific AttributeGroup = "specific"
)

func (g AttributeGroup) Valid() bool {
	return g == GroupCommon || g == GroupSpecific
}

var AttributeGroups = []AttributeGroup{GroupCommon, GroupSpecific}

var (
	ErrDefinitionNameRequired = errors.New("attribute name is required")
	ErrInvalidAttributeKind   = errors.New("invalid attribute kind")
	ErrOptionsRequired        = errors.New("attribute kind requires at least one option")
	ErrDuplicateOption        = errors.New("attribute options must be unique")
)

// AttributeDefinition is reference data an admin picks from when building a
// product's attribute groups.
type AttributeDefinition struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"uniqueIndex;not null" json:"name"`
	Kind         AttributeKind  `gorm:"type:varchar(20);not null" json:"kind"`
	Options      pq.StringArray `gorm:"type:text" json:"options"`
	Required     bool           `gorm:"default:false" json:"required"`
	Description  string         `gorm:"type:text" json:"description,omitempty"`
	DefaultValue datatypes.JSON `json:"default_value,omitempty"`
	CategoryIDs  pq.Int64Array  `gorm:"type:text" json:"category_ids"` // empty applies everywhere
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AttributeDefinition) TableName() string {
	return "attribute_definitions"
}

func (d *AttributeDefinition) AppliesTo(categoryID uint) bool {
	if len(d.CategoryIDs) == 0 {
		return true
	}
	for _, id := range d.CategoryIDs {
		if uint(id) == categoryID {
			return true
		}
	}
	return false
}

// Validate checks name, kind, options and that the default value fits the kind.
func (d *AttributeDefinition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrDefinitionNameRequired
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAttributeKind, d.Kind)
	}
	if d.Kind.RequiresOptions() && len(d.Options) == 0 {
		return ErrOptionsRequired
	}
	seen := make(map[string]struct{}, len(d.Options))
	for _, o := range d.Options {
		key := strings.ToLower(strings.TrimSpace(o))
		if key == "" {
			return fmt.Errorf("%w: blank option", ErrDuplicateOption)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateOption, o)
		}
		seen[key] = struct{}{}
	}
	if len(d.DefaultValue) > 0 {
		if _, err := DecodeAttributeValue(d.Kind, d.DefaultValue, d.Options); err != nil {
			return fmt.Errorf("default value: %w", err)
		}
	}
	return nil
}

// ProductAttribute is a definition instantiated on one product, holding the
// product's current value.
type ProductAttribute struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	ProductID    uint           `gorm:"not null;uniqueIndex:idx_product_attribute_name" json:"product_id"`
	Group        AttributeGroup `gorm:"column:attribute_group;type:varchar(20);not null;uniqueIndex:idx_product_attribute_name" json:"group"`
	Name         string         `gorm:"not null;uniqueIndex:idx_product_attribute_name" json:"name"`
	DefinitionID *uint          `gorm:"index" json:"definition_id,omitempty"`
	Kind         AttributeKind  `gorm:"type:varchar(20);not null" json:"kind"`
	Options      pq.StringArray `gorm:"type:text" json:"options"`
	Value        datatypes.JSON `json:"value"`
	Required     bool           `gorm:"default:false" json:"required"`
	Position     int            `gorm:"not null;default:0" json:"position"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (ProductAttribute) TableName() string {
	return "product_attributes"
}

// Decoded returns the typed value.
func (a *ProductAttribute) Decoded() (AttributeValue, error) {
	return DecodeAttributeValue(a.Kind, a.Value, a.Options)
}

// SetValue stores v after checking it matches the attribute's kind.
func (a *ProductAttribute) SetValue(v AttributeValue) error {
	if v.Kind() != a.Kind {
		return fmt.Errorf("%w: %s value for %s attribute", ErrInvalidAttributeValue, v.Kind(), a.Kind)
	}
	raw, err := EncodeAttributeValue(v)
	if err != nil {
		return err
	}
	a.Value = raw
	return nil
}

// Selections returns the attribute's value as a flat list of strings.
func (a *ProductAttribute) Selections() []string {
	v, err := a.Decoded()
	if err != nil {
		return nil
	}
	return v.Selections()
}
