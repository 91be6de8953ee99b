package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomBase36(t *testing.T) {
	for _, n := range []int{0, 1, 4, 32} {
		s := RandomBase36(n)
		assert.Len(t, s, n)
		assert.Regexp(t, `^[0-9a-z]*$`, s)
	}
}

func TestGenerateCode(t *testing.T) {
	giftCard := regexp.MustCompile(`^GC-[0-9A-Z]{4}-[0-9A-Z]{4}-[0-9A-Z]{4}$`)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := GenerateCode("GC", 3, 4)
		assert.Regexp(t, giftCard, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)

	assert.Regexp(t, `^[0-9A-Z]{6}-[0-9A-Z]{6}$`, GenerateCode("", 2, 6))
}
