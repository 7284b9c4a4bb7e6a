package export

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"filmwallaa/internal/textutil"
)

// MaxRating is the top of the review rating scale.
const MaxRating = 5.0

var ratingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d(?:\.\d)?)/5`),
	regexp.MustCompile(`rating:?\s*(\d(?:\.\d)?)`),
	regexp.MustCompile(`(\d(?:\.\d)?)\s*out\s*of\s*5`),
	regexp.MustCompile(`(\d(?:\.\d)?)\s*stars?`),
}

// CountKeywords returns how many distinct keywords occur in text.
// Matching is case-insensitive and by substring.
func CountKeywords(text string, keywords []string) int {
	lowered := strings.ToLower(text)
	hits := 0
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(lowered, keyword) {
			hits++
		}
	}
	return hits
}

// ExtractRating returns the first rating pattern found in text, clamped to
// MaxRating. Text without a rating yields nil, never zero.
func ExtractRating(text string) *float64 {
	lowered := strings.ToLower(text)
	for _, pattern := range ratingPatterns {
		match := pattern.FindStringSubmatch(lowered)
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		value = math.Min(value, MaxRating)
		return &value
	}
	return nil
}

// Excerpt collapses whitespace and truncates at the last word boundary
// within maxLength characters, appending "..." only when text was cut.
func Excerpt(text string, maxLength int) string {
	excerpt, _ := textutil.TruncateWords(textutil.CollapseWhitespace(text), maxLength, "...")
	return excerpt
}

// ReadTime labels how long text takes to read at wordsPerMinute, never
// less than one minute. Halves round to even.
func ReadTime(text string, wordsPerMinute int) (string, int) {
	if wordsPerMinute <= 0 {
		wordsPerMinute = 200
	}
	words := textutil.CountWords(text)
	minutes := int(math.RoundToEven(float64(words) / float64(wordsPerMinute)))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes), words
}

// Slug derives a URL slug from a title.
func Slug(title string) string {
	return textutil.Slugify(title, slugMaxLength)
}

func (e *Extractor) derive(raw RawPost) Post {
	if raw.Slug == "" {
		raw.Slug = Slug(raw.Title)
	}
	label, words := ReadTime(raw.BodyText, e.settings.WordsPerMinute)
	return Post{
		RawPost:       raw,
		RatingGuess:   ExtractRating(raw.BodyText),
		Excerpt:       Excerpt(raw.BodyText, e.settings.ExcerptMaxLength),
		ReadTimeLabel: label,
		WordCount:     words,
	}
}
