// Package productcode derives a human-legible product code from a product's
// name, category and key attributes. Codes end in a random suffix and are
// labels, not keys: collisions are possible.
package productcode

import (
	"errors"
	"strings"

	"github.com/storefront/storefront-backend/pkg/util"
)

const (
	nameLength   = 10
	suffixLength = 4
	prefixLength = 3
)

var (
	ErrNameRequired     = errors.New("product name is required")
	ErrCategoryRequired = errors.New("category is required")
)

// keyAttributes lists the attribute names that contribute to the code.
var keyAttributes = map[string]struct{}{
	"size":     {},
	"taille":   {},
	"color":    {},
	"colour":   {},
	"couleur":  {},
	"material": {},
	"matiere":  {},
}

// Attribute is a flattened attribute: scalar values arrive as one element.
type Attribute struct {
	Name   string
	Values []string
}

// Generator builds codes. Suffix returns n random characters.
type Generator struct {
	Suffix func(n int) string
}

// New returns a Generator with a crypto-random base-36 suffix.
func New() *Generator {
	return &Generator{Suffix: util.RandomBase36}
}

// Generate returns NAME[-fragments]-suffix.
func (g *Generator) Generate(name, categoryID string, attrs []Attribute) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrNameRequired
	}
	if strings.TrimSpace(categoryID) == "" {
		return "", ErrCategoryRequired
	}

	parts := make([]string, 0, 3)
	if n := NormalizeName(name); n != "" {
		parts = append(parts, n)
	}
	if f := Fragment(attrs); f != "" {
		parts = append(parts, f)
	}
	parts = append(parts, g.Suffix(suffixLength))
	return strings.Join(parts, "-"), nil
}

// NormalizeName strips diacritics, hyphenates, truncates to 10 characters
// and upper-cases. Hyphens are trimmed before truncation only, so a cut that
// lands right after a word keeps its hyphen.
func NormalizeName(name string) string {
	slug := util.Slugify(name)
	if len(slug) > nameLength {
		slug = slug[:nameLength]
	}
	return strings.ToUpper(slug)
}

// Fragment renders the key attributes as "Siz-M_Col-Red-Blue".
func Fragment(attrs []Attribute) string {
	fragments := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if !isKeyAttribute(a.Name) {
			continue
		}
		values := nonEmpty(a.Values)
		if len(values) == 0 {
			continue
		}
		fragments = append(fragments, prefix(a.Name)+"-"+strings.Join(values, "-"))
	}
	return strings.Join(fragments, "_")
}

func isKeyAttribute(name string) bool {
	key := strings.ToLower(util.StripDiacritics(strings.TrimSpace(name)))
	_, ok := keyAttributes[key]
	return ok
}

func prefix(name string) string {
	r := []rune(strings.TrimSpace(name))
	if len(r) > prefixLength {
		r = r[:prefixLength]
	}
	return string(r)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
