package productcode

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSuffix(n int) string {
	return strings.Repeat("z", n)
}

func TestGenerate(t *testing.T) {
	g := &Generator{Suffix: fixedSuffix}

	tests := []struct {
		name     string
		product  string
		category string
		attrs    []Attribute
		want     string
	}{
		{
			name:     "name only",
			product:  "Linen Shirt",
			category: "3",
			want:     "LINEN-SHIR-zzzz",
		},
		{
			name:     "diacritics and punctuation",
			product:  "  Crème   brûlée!! ",
			category: "3",
			want:     "CREME-BRUL-zzzz",
		},
		{
			name:     "key attributes only",
			product:  "Tee",
			category: "1",
			attrs: []Attribute{
				{Name: "Size", Values: []string{"M"}},
				{Name: "Weight", Values: []string{"200"}},
				{Name: "Color", Values: []string{"Red", "Blue"}},
				{Name: "Material", Values: []string{""}},
			},
			want: "TEE-Siz-M_Col-Red-Blue-zzzz",
		},
		{
			name:     "localized attribute names",
			product:  "Robe",
			category: "1",
			attrs:    []Attribute{{Name: "Matière", Values: []string{"Soie"}}},
			want:     "ROBE-Mat-Soie-zzzz",
		},
		{
			name:     "truncation keeps a hyphen at the cut",
			product:  "Abcdefghi Jkl",
			category: "1",
			want:     "ABCDEFGHI--zzzz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := g.Generate(tt.product, tt.category, tt.attrs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestGenerate_Validation(t *testing.T) {
	g := New()

	_, err := g.Generate("", "1", nil)
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = g.Generate("Shirt", "  ", nil)
	assert.ErrorIs(t, err, ErrCategoryRequired)
}

func TestGenerate_RandomSuffix(t *testing.T) {
	code, err := New().Generate("Shirt", "1", nil)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^SHIRT-[0-9a-z]{4}$`), code)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "SUMMER-DRE", NormalizeName("Summer dress 2024"))
	assert.Equal(t, "", NormalizeName("***"))
	assert.Equal(t, "ANO", NormalizeName("año"))
	assert.Equal(t, "ABCDEFGHI-", NormalizeName("  Abcdefghi Jkl"))
	assert.Equal(t, "SUMMER", NormalizeName("-Summer-"))
}
