package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "Creme Brulee", StripDiacritics("Crème Brûlée"))
	assert.Equal(t, "Pull Cotele", StripDiacritics("Pull Côtelé"))
	assert.Equal(t, "plain", StripDiacritics("plain"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Linen Shirt", "Linen-Shirt"},
		{"  Écharpe -- laine!! ", "Echarpe-laine"},
		{"T-shirt / col V", "T-shirt-col-V"},
		{"***", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
