package matcher

import (
	"regexp"
	"strings"

	"filmwallaa/internal/textutil"
)

// stripRules run in order, repeatedly, until none changes the title.
var stripRules = []*regexp.Regexp{
	regexp.MustCompile(`\s*-\s*my\s+review.*$`),
	regexp.MustCompile(`\s+the\s+movie.*$`),
	regexp.MustCompile(`\s+review.*$`),
	regexp.MustCompile(`\s+movie.*$`),
	regexp.MustCompile(`\s+film.*$`),
	regexp.MustCompile(`^.*review:?\s*`),
	regexp.MustCompile(`\s*\.\.+$`),
	regexp.MustCompile(`^(a|an|the)\s+`),
}

const maxStripPasses = 32

// Normalize lowercases a post title and strips review decoration, leaving
// the probable movie name. Normalize(Normalize(t)) == Normalize(t).
func Normalize(title string) string {
	current := textutil.CollapseWhitespace(strings.ToLower(title))
	for range maxStripPasses {
		next := current
		for _, rule := range stripRules {
			next = strings.TrimSpace(rule.ReplaceAllString(next, ""))
		}
		if next == current {
			break
		}
		current = next
	}
	return current
}
