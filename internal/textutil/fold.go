package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	slugStripPattern  = regexp.MustCompile(`[^a-z0-9\s-]`)
)

// FoldAccents removes combining marks so "Amélie" becomes "Amelie".
// Text that cannot be transformed is returned unchanged.
func FoldAccents(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}

// CollapseWhitespace replaces every whitespace run with a single space and
// trims the ends.
func CollapseWhitespace(value string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
}

// CountWords returns the number of whitespace separated words.
func CountWords(value string) int {
	return len(strings.Fields(value))
}

// TruncateWords cuts value to at most maxRunes runes, backing up to the last
// space when one exists, and appends suffix. Values that already fit are
// returned unchanged and report false.
func TruncateWords(value string, maxRunes int, suffix string) (string, bool) {
	r := []rune(value)
	if maxRunes <= 0 || len(r) <= maxRunes {
		return value, false
	}
	cut := string(r[:maxRunes])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + suffix, true
}

// Slugify lowercases value, drops everything but letters, digits, spaces and
// hyphens, joins words with hyphens and caps the result at maxLen bytes.
// A maxLen of zero or less disables the cap.
func Slugify(value string, maxLen int) string {
	slug := strings.ToLower(FoldAccents(strings.TrimSpace(value)))
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = whitespacePattern.ReplaceAllString(strings.TrimSpace(slug), "-")
	if maxLen > 0 && len(slug) > maxLen {
		slug = slug[:maxLen]
	}
	return strings.Trim(slug, "-")
}
