package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/datatypes"
)

var (
	ErrInvalidAttributeValue = errors.New("invalid attribute value")
	ErrValueNotInOptions     = errors.New("value is not one of the attribute options")
)

// AttributeValue is the value of a product attribute; there is one
// implementation per AttributeKind.
type AttributeValue interface {
	Kind() AttributeKind
	IsEmpty() bool
	Selections() []string
	isAttributeValue()
}

type TextValue string

type NumberValue struct {
	Value float64
	Valid bool
}

type BooleanValue bool

type SelectValue string

type MultiSelectValue []string

type ColorValue []string

func (TextValue) Kind() AttributeKind        { return KindText }
func (NumberValue) Kind() AttributeKind      { return KindNumber }
func (BooleanValue) Kind() AttributeKind     { return KindBoolean }
func (SelectValue) Kind() AttributeKind      { return KindSelect }
func (MultiSelectValue) Kind() AttributeKind { return KindMultiSelect }
func (ColorValue) Kind() AttributeKind       { return KindColor }

func (TextValue) isAttributeValue()        {}
func (NumberValue) isAttributeValue()      {}
func (BooleanValue) isAttributeValue()     {}
func (SelectValue) isAttributeValue()      {}
func (MultiSelectValue) isAttributeValue() {}
func (ColorValue) isAttributeValue()       {}

func (v TextValue) IsEmpty() bool        { return strings.TrimSpace(string(v)) == "" }
func (v NumberValue) IsEmpty() bool      { return !v.Valid }
func (BooleanValue) IsEmpty() bool       { return false }
func (v SelectValue) IsEmpty() bool      { return strings.TrimSpace(string(v)) == "" }
func (v MultiSelectValue) IsEmpty() bool { return len(v) == 0 }
func (v ColorValue) IsEmpty() bool       { return len(v) == 0 }

func (v TextValue) Selections() []string   { return single(string(v)) }
func (v SelectValue) Selections() []string { return single(string(v)) }

func (v NumberValue) Selections() []string {
	if !v.Valid {
		return nil
	}
	return []string{strconv.FormatFloat(v.Value, 'f', -1, 64)}
}

func (v BooleanValue) Selections() []string {
	return []string{strconv.FormatBool(bool(v))}
}

func (v MultiSelectValue) Selections() []string { return append([]string(nil), v...) }
func (v ColorValue) Selections() []string       { return append([]string(nil), v...) }

func single(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return []string{s}
}

// EmptyValue is the unset value of a kind.
func EmptyValue(kind AttributeKind) AttributeValue {
	switch kind {
	case KindNumber:
		return NumberValue{}
	case KindBoolean:
		return BooleanValue(false)
	case KindSelect:
		return SelectValue("")
	case KindMultiSelect:
		return MultiSelectValue{}
	case KindColor:
		return ColorValue{}
	default:
		return TextValue("")
	}
}

// DecodeAttributeValue parses raw JSON into the value type of kind. Option
// kinds only accept members of options (compared case-insensitively, stored
// with the option's spelling).
func DecodeAttributeValue(kind AttributeKind, raw []byte, options []string) (AttributeValue, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAttributeKind, kind)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return EmptyValue(kind), nil
	}

	switch kind {
	case KindText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: text expects a string", ErrInvalidAttributeValue)
		}
		return TextValue(s), nil

	case KindNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("%w: number expects a number", ErrInvalidAttributeValue)
		}
		return NumberValue{Value: n, Valid: true}, nil

	case KindBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("%w: boolean expects true or false", ErrInvalidAttributeValue)
		}
		return BooleanValue(b), nil

	case KindSelect:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: select expects a string", ErrInvalidAttributeValue)
		}
		if strings.TrimSpace(s) == "" {
			return SelectValue(""), nil
		}
		opt, ok := matchOption(s, options)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrValueNotInOptions, s)
		}
		return SelectValue(opt), nil
	}

	// multiselect and color: a list, or a single string treated as one selection
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var s string
		if err2 := json.Unmarshal(raw, &s); err2 != nil {
			return nil, fmt.Errorf("%w: %s expects a list of strings", ErrInvalidAttributeValue, kind)
		}
		list = []string{s}
	}
	picked := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if strings.TrimSpace(s) == "" {
			continue
		}
		opt, ok := matchOption(s, options)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrValueNotInOptions, s)
		}
		if _, dup := seen[opt]; dup {
			continue
		}
		seen[opt] = struct{}{}
		picked = append(picked, opt)
	}
	if kind == KindColor {
		return ColorValue(picked), nil
	}
	return MultiSelectValue(picked), nil
}

func matchOption(s string, options []string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), s) {
			return o, true
		}
	}
	return "", false
}

func EncodeAttributeValue(v AttributeValue) (datatypes.JSON, error) {
	var payload interface{}
	switch val := v.(type) {
	case TextValue:
		payload = string(val)
	case NumberValue:
		if val.Valid {
			payload = val.Value
		}
	case BooleanValue:
		payload = bool(val)
	case SelectValue:
		payload = string(val)
	case MultiSelectValue:
		payload = []string(val)
	case ColorValue:
		payload = []string(val)
	default:
		return nil, fmt.Errorf("%w: unsupported value %T", ErrInvalidAttributeValue, v)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
