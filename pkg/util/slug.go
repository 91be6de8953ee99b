package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

// StripDiacritics removes combining marks, e.g. "Crème Brûlée" -> "Creme Brulee".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify strips diacritics and collapses every run of non-alphanumeric
// characters into a single hyphen, trimming hyphens at both ends.
func Slugify(s string) string {
	s = nonAlphanumeric.ReplaceAllString(StripDiacritics(s), "-")
	return strings.Trim(s, "-")
}
