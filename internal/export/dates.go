package export

import (
	"strings"
	"time"
)

const wpDateLayout = "2006-01-02 15:04:05"

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

// parsePublished reads wp:post_date first and pubDate second. The pubDate
// offset is discarded and its wall clock kept as UTC, matching how
// wp:post_date is stored.
func parsePublished(postDate, pubDate string) (time.Time, bool) {
	if value := strings.TrimSpace(postDate); value != "" {
		if t, err := time.Parse(wpDateLayout, value); err == nil {
			return t, true
		}
	}
	value := strings.TrimSpace(pubDate)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), true
	}
	return time.Time{}, false
}
