package course

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 100

var (
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
	fallbackSlug = "cursus"
)

// Slugify turns a title into [a-z0-9-], dropping diacritics:
// "Theorie-examen Rijbewijs B: één dag" -> "theorie-examen-rijbewijs-b-een-dag".
func Slugify(title string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(stripMarks, strings.ToLower(strings.TrimSpace(title)))
	if err != nil {
		s = strings.ToLower(title)
	}
	s = strings.Trim(reNonAlnum.ReplaceAllString(s, "-"), "-")
	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-")
	}
	if s == "" {
		return fallbackSlug
	}
	return s
}
