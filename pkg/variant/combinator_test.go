package variant

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SizeColor(t *testing.T) {
	sale := decimal.NewFromInt(40)
	base := Base{SKU: "TSHIRT", Price: decimal.NewFromInt(50), SalePrice: &sale, Stock: 7}

	variants, err := Generate(base, []Attribute{
		{Name: "Size", Values: []string{"S", "M"}},
		{Name: "Color", Values: []string{"Red", "Blue"}},
	})
	require.NoError(t, err)
	require.Len(t, variants, 4)

	expected := []map[string]string{
		{"Size": "S", "Color": "Red"},
		{"Size": "S", "Color": "Blue"},
		{"Size": "M", "Color": "Red"},
		{"Size": "M", "Color": "Blue"},
	}
	for i, v := range variants {
		assert.Equal(t, fmt.Sprintf("TSHIRT-%d", i+1), v.SKU)
		assert.Equal(t, expected[i], v.Attributes)
		assert.True(t, v.Price.Equal(decimal.NewFromInt(50)))
		require.NotNil(t, v.SalePrice)
		assert.True(t, v.SalePrice.Equal(sale))
		assert.Equal(t, 7, v.Stock)
	}

	// sale price is copied, not shared
	*variants[0].SalePrice = decimal.NewFromInt(1)
	assert.True(t, variants[1].SalePrice.Equal(sale))
	assert.True(t, base.SalePrice.Equal(sale))
}

func TestGenerate_CountIsProductOfValueSets(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
	}{
		{name: "single attribute", sizes: []int{3}},
		{name: "two attributes", sizes: []int{2, 5}},
		{name: "three attributes", sizes: []int{2, 3, 4}},
		{name: "single-valued attributes", sizes: []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := make([]Attribute, len(tt.sizes))
			want := 1
			for i, n := range tt.sizes {
				values := make([]string, n)
				for j := range values {
					values[j] = fmt.Sprintf("v%d", j)
				}
				attrs[i] = Attribute{Name: fmt.Sprintf("a%d", i), Values: values}
				want *= n
			}

			variants, err := Generate(Base{SKU: "BASE"}, attrs)
			require.NoError(t, err)
			assert.Len(t, variants, want)

			count, err := Count(attrs)
			require.NoError(t, err)
			assert.Equal(t, want, count)

			seenCombos := make(map[string]bool)
			seenSKUs := make(map[string]bool)
			for i, v := range variants {
				assert.Equal(t, fmt.Sprintf("BASE-%d", i+1), v.SKU)
				key := fmt.Sprint(v.Attributes)
				assert.False(t, seenCombos[key], "duplicate combination %s", key)
				assert.False(t, seenSKUs[v.SKU])
				seenCombos[key] = true
				seenSKUs[v.SKU] = true
				assert.Len(t, v.Attributes, len(attrs))
			}
		})
	}
}

func TestGenerate_NoAttributes(t *testing.T) {
	variants, err := Generate(Base{SKU: "X"}, nil)
	assert.Nil(t, variants)
	assert.ErrorIs(t, err, ErrNoAttributes)
	assert.EqualError(t, err, "no attributes selected")
}

func TestGenerate_MissingSelection(t *testing.T) {
	variants, err := Generate(Base{SKU: "X"}, []Attribute{
		{Name: "Size", Values: []string{"S"}},
		{Name: "Color", Values: nil},
	})
	assert.Nil(t, variants)
	assert.ErrorIs(t, err, ErrMissingSelection)
	assert.ErrorIs(t, err, &Error{Code: CodeMissingSelection, Attribute: "Color"})
	assert.NotErrorIs(t, err, &Error{Code: CodeMissingSelection, Attribute: "Size"})

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Color", verr.Attribute)
}

func TestGenerate_BlankValuesCountAsMissing(t *testing.T) {
	_, err := Generate(Base{SKU: "X"}, []Attribute{{Name: "Size", Values: []string{"", "  "}}})
	assert.ErrorIs(t, err, ErrMissingSelection)
}

func TestGenerate_DuplicateAttribute(t *testing.T) {
	_, err := Generate(Base{SKU: "X"}, []Attribute{
		{Name: "Size", Values: []string{"S"}},
		{Name: "Size", Values: []string{"M"}},
	})
	assert.ErrorIs(t, err, ErrDuplicateAttribute)
}

func TestCount_FailsWhenGenerateFails(t *testing.T) {
	values := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("v%d", i)
		}
		return out
	}
	wide := make([]Attribute, 8)
	for i := range wide {
		wide[i] = Attribute{Name: fmt.Sprintf("a%d", i), Values: values(10)}
	}

	tests := []struct {
		name  string
		attrs []Attribute
		want  error
	}{
		{"no attributes", nil, ErrNoAttributes},
		{"missing selection", []Attribute{{Name: "Size", Values: []string{" "}}}, ErrMissingSelection},
		{"duplicate attribute", []Attribute{
			{Name: "Size", Values: []string{"S"}},
			{Name: " Size", Values: []string{"M"}},
		}, ErrDuplicateAttribute},
		{"too many combinations", wide, ErrTooManyCombinations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, genErr := Generate(Base{SKU: "X"}, tt.attrs)
			assert.ErrorIs(t, genErr, tt.want)

			n, err := Count(tt.attrs)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, n)
		})
	}
}

func TestGenerateWithin_Limit(t *testing.T) {
	attrs := []Attribute{
		{Name: "Size", Values: []string{"S", "M", "L"}},
		{Name: "Color", Values: []string{"Red", "Blue"}},
	}

	variants, err := GenerateWithin(Base{SKU: "X"}, attrs, 6)
	require.NoError(t, err)
	assert.Len(t, variants, 6)

	_, err = GenerateWithin(Base{SKU: "X"}, attrs, 5)
	assert.ErrorIs(t, err, ErrTooManyCombinations)
	assert.EqualError(t, err, "selection expands to more than 5 combinations")

	n, err := CountWithin(attrs, 5)
	assert.ErrorIs(t, err, ErrTooManyCombinations)
	assert.Zero(t, n)

	n, err = CountWithin(attrs, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, n, "a zero limit falls back to the default")
}

func TestCombinations_RepeatedValuesCollapse(t *testing.T) {
	combos, err := Combinations([]Attribute{{Name: "Size", Values: []string{"S", "S", "M"}}})
	require.NoError(t, err)
	require.Len(t, combos, 2)
	assert.Equal(t, "Size=S", combos[0].String())
	assert.Equal(t, "Size=M", combos[1].String())
}

func TestCombinations_InputUntouched(t *testing.T) {
	attrs := []Attribute{{Name: " Size ", Values: []string{" S ", "M"}}}
	_, err := Combinations(attrs)
	require.NoError(t, err)
	assert.Equal(t, " Size ", attrs[0].Name)
	assert.Equal(t, []string{" S ", "M"}, attrs[0].Values)
}

func TestGenerate_Deterministic(t *testing.T) {
	attrs := []Attribute{
		{Name: "Material", Values: []string{"Cotton", "Linen"}},
		{Name: "Size", Values: []string{"XS", "S", "M"}},
	}
	first, err := Generate(Base{SKU: "P"}, attrs)
	require.NoError(t, err)
	second, err := Generate(Base{SKU: "P"}, attrs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
