package export

import (
	"errors"
	"time"
)

// ErrNoPosts reports an export that produced no movie-review posts.
var ErrNoPosts = errors.New("export contains no movie review posts")

// RawPost is one item read from the export.
type RawPost struct {
	Title         string    `json:"title"`
	BodyText      string    `json:"body_text"`
	Author        string    `json:"author"`
	PublishedAt   time.Time `json:"published_at"`
	DateEstimated bool      `json:"date_estimated,omitempty"`
	Categories    []string  `json:"categories"`
	Slug          string    `json:"slug"`
	OriginalURL   string    `json:"original_url"`
	SourceStatus  string    `json:"source_status"`
}

// Post is an accepted RawPost plus the fields derived from its text.
type Post struct {
	RawPost
	RatingGuess   *float64 `json:"rating_guess,omitempty"`
	Excerpt       string   `json:"excerpt"`
	ReadTimeLabel string   `json:"read_time"`
	WordCount     int      `json:"word_count"`
	KeywordHits   int      `json:"keyword_hits"`
}

// Result summarizes one extraction pass.
type Result struct {
	Posts     []Post
	Items     int // every <item> in the export
	PostItems int // items whose post type is "post"
	Rejected  int // post items below the keyword threshold
}
