package util

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomBase36 returns n random lowercase base-36 characters
func RandomBase36(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS source is unavailable
			panic(err)
		}
		sb.WriteByte(base36Alphabet[idx.Int64()])
	}
	return sb.String()
}

// GenerateCode returns an upper-case code made of groups of base-36
// characters joined by hyphens, e.g. prefix "GC" -> GC-4F9K-Q2ZD-81MX.
func GenerateCode(prefix string, groups, groupLen int) string {
	parts := make([]string, 0, groups+1)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	for i := 0; i < groups; i++ {
		parts = append(parts, strings.ToUpper(RandomBase36(groupLen)))
	}
	return strings.Join(parts, "-")
}
