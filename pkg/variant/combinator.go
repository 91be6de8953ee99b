// Package variant expands a product's variant-defining attributes into the
// full set of purchasable combinations.
package variant

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Attribute is one variant-defining attribute with the values the admin
// selected for it. A single-select attribute carries exactly one value.
type Attribute struct {
	Name   string
	Values []string
}

// Pair is one (attribute, value) choice inside a combination.
type Pair struct {
	Name  string
	Value string
}

// Combination is an ordered list of pairs, one per input attribute.
type Combination []Pair

// Map returns the combination as attribute name -> value.
func (c Combination) Map() map[string]string {
	m := make(map[string]string, len(c))
	for _, p := range c {
		m[p.Name] = p.Value
	}
	return m
}

func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, p := range c {
		parts[i] = p.Name + "=" + p.Value
	}
	return strings.Join(parts, ",")
}

// Base holds the product values every generated variant starts from.
type Base struct {
	SKU       string
	Price     decimal.Decimal
	SalePrice *decimal.Decimal
	Stock     int
}

// Variant is one generated purchasable combination.
type Variant struct {
	SKU        string
	Price      decimal.Decimal
	SalePrice  *decimal.Decimal
	Stock      int
	Attributes map[string]string
}

// DefaultMaxCombinations caps an expansion when the caller passes no limit.
const DefaultMaxCombinations = 1000

// Combinations returns the Cartesian product of the attributes' values in
// lexicographic product order: attributes outer to inner in input order,
// values in the order given. Blank and repeated values are ignored.
func Combinations(attrs []Attribute) ([]Combination, error) {
	return CombinationsWithin(attrs, DefaultMaxCombinations)
}

// CombinationsWithin is Combinations with an explicit cap. A limit below 1
// means DefaultMaxCombinations.
func CombinationsWithin(attrs []Attribute, limit int) ([]Combination, error) {
	normalized, n, err := prepare(attrs, limit)
	if err != nil {
		return nil, err
	}

	combos := make([]Combination, 1, n)
	combos[0] = Combination{}
	for _, a := range normalized {
		next := make([]Combination, 0, len(combos)*len(a.Values))
		for _, partial := range combos {
			for _, v := range a.Values {
				c := make(Combination, len(partial), len(partial)+1)
				copy(c, partial)
				next = append(next, append(c, Pair{Name: a.Name, Value: v}))
			}
		}
		combos = next
	}
	return combos, nil
}

// Generate materializes one variant per combination. SKUs are the base SKU
// with a 1-based sequence suffix; price, sale price and stock are copied
// from the base.
func Generate(base Base, attrs []Attribute) ([]Variant, error) {
	return GenerateWithin(base, attrs, DefaultMaxCombinations)
}

// GenerateWithin is Generate with an explicit cap on the combination count.
func GenerateWithin(base Base, attrs []Attribute, limit int) ([]Variant, error) {
	combos, err := CombinationsWithin(attrs, limit)
	if err != nil {
		return nil, err
	}

	variants := make([]Variant, len(combos))
	for i, c := range combos {
		variants[i] = Variant{
			SKU:        SKU(base.SKU, i),
			Price:      base.Price,
			SalePrice:  copyDecimal(base.SalePrice),
			Stock:      base.Stock,
			Attributes: c.Map(),
		}
	}
	return variants, nil
}

// Count returns how many variants Generate would produce, without
// materializing them. It fails exactly when Generate would.
func Count(attrs []Attribute) (int, error) {
	return CountWithin(attrs, DefaultMaxCombinations)
}

// CountWithin is Count with an explicit cap.
func CountWithin(attrs []Attribute, limit int) (int, error) {
	_, n, err := prepare(attrs, limit)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// prepare validates the selection and returns the cleaned attributes with
// the size of their product. The product is checked against limit as it
// grows, so it never overflows.
func prepare(attrs []Attribute, limit int) ([]Attribute, int, error) {
	if len(attrs) == 0 {
		return nil, 0, ErrNoAttributes
	}
	if limit < 1 {
		limit = DefaultMaxCombinations
	}

	seen := make(map[string]struct{}, len(attrs))
	normalized := make([]Attribute, 0, len(attrs))
	n := 1
	for _, a := range attrs {
		name := strings.TrimSpace(a.Name)
		if _, dup := seen[name]; dup {
			return nil, 0, &Error{Code: CodeDuplicateAttribute, Attribute: name}
		}
		seen[name] = struct{}{}

		values := distinct(a.Values)
		if len(values) == 0 {
			return nil, 0, &Error{Code: CodeMissingSelection, Attribute: name}
		}
		normalized = append(normalized, Attribute{Name: name, Values: values})
	}

	for _, a := range normalized {
		if n > limit/len(a.Values) {
			return nil, 0, &Error{Code: CodeTooMany, Limit: limit}
		}
		n *= len(a.Values)
	}
	return normalized, n, nil
}

// SKU formats the variant SKU for the zero-based index.
func SKU(base string, index int) string {
	return fmt.Sprintf("%s-%d", base, index+1)
}

func distinct(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
