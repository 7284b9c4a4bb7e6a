package store

import (
	"time"

	"filmwallaa/internal/catalog"
)

// Confidence qualifies how a mapping was established.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceManual Confidence = "manual"
)

// PostStatus is the moderation state of a migrated post.
type PostStatus string

const (
	StatusPending   PostStatus = "pending"
	StatusRejected  PostStatus = "rejected"
	StatusPublished PostStatus = "published"
)

// MigratedPost is an export post carried through migration and moderation.
type MigratedPost struct {
	ID            string                  `json:"id"`
	Title         string                  `json:"title"`
	OriginalTitle string                  `json:"original_title"`
	Content       string                  `json:"content"`
	Excerpt       string                  `json:"excerpt"`
	Author        string                  `json:"author"`
	PublishedAt   time.Time               `json:"published_at"`
	DateEstimated bool                    `json:"date_estimated,omitempty"`
	Categories    []string                `json:"categories"`
	Tags          []string                `json:"tags"`
	Slug          string                  `json:"slug"`
	OriginalURL   string                  `json:"original_url"`
	SourceStatus  string                  `json:"source_status,omitempty"`
	RatingGuess   *float64                `json:"rating_guess,omitempty"`
	ReadTime      string                  `json:"read_time"`
	WordCount     int                     `json:"word_count"`
	FeaturedImage string                  `json:"featured_image"`
	SearchTitle   string                  `json:"search_title"`
	MovieID       string                  `json:"movie_id,omitempty"`
	CatalogID     int64                   `json:"catalog_id,omitempty"`
	CatalogData   *catalog.CandidateMovie `json:"catalog_data,omitempty"`
	Status        PostStatus              `json:"migration_status"`
	ManualMapping bool                    `json:"manual_mapping,omitempty"`
	MigratedAt    time.Time               `json:"migrated_at"`
	RejectedAt    *time.Time              `json:"rejected_at,omitempty"`
}

// SourceKey identifies the export item a post came from.
func (p MigratedPost) SourceKey() string {
	return SourceKey(p.OriginalURL, p.Slug)
}

// SourceKey returns the dedupe key for an export item: its permalink, or its
// slug when the export carried no permalink.
func SourceKey(originalURL, slug string) string {
	if originalURL != "" {
		return "url:" + originalURL
	}
	return "slug:" + slug
}

// MappingRecord links a post to the catalog movie it reviews.
type MappingRecord struct {
	PostID       string     `json:"post_id"`
	PostTitle    string     `json:"post_title"`
	MatchedTitle string     `json:"matched_title"`
	CatalogID    int64      `json:"catalog_id"`
	MovieID      string     `json:"movie_id"`
	Year         int        `json:"year,omitempty"`
	Confidence   Confidence `json:"confidence"`
	Similarity   float64    `json:"similarity"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FailedMapping records a post the matcher could not resolve.
type FailedMapping struct {
	PostID    string    `json:"post_id"`
	PostTitle string    `json:"post_title"`
	Query     string    `json:"query"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// PublishedReview is an approved post as the review site serves it.
type PublishedReview struct {
	ID                 string                  `json:"id"`
	Title              string                  `json:"title"`
	OriginalTitle      string                  `json:"original_title"`
	Content            string                  `json:"content"`
	Excerpt            string                  `json:"excerpt"`
	Author             string                  `json:"author"`
	Rating             float64                 `json:"rating"`
	Tags               []string                `json:"tags"`
	Slug               string                  `json:"slug"`
	ReadTime           string                  `json:"read_time"`
	FeaturedImage      string                  `json:"featured_image"`
	Featured           bool                    `json:"featured"`
	MovieID            string                  `json:"movie_id,omitempty"`
	CatalogID          int64                   `json:"catalog_id,omitempty"`
	CatalogData        *catalog.CandidateMovie `json:"catalog_data,omitempty"`
	Status             PostStatus              `json:"status"`
	PublishedAt        time.Time               `json:"published_at"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
	OriginalURL        string                  `json:"original_url"`
	MigratedFromExport bool                    `json:"migrated_from_export"`
}

// Movie is a catalog movie under its internal id.
type Movie struct {
	ID        string                 `json:"id"`
	CatalogID int64                  `json:"catalog_id"`
	Title     string                 `json:"title"`
	Year      int                    `json:"year,omitempty"`
	Data      catalog.CandidateMovie `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Batch is everything one migration run persists.
type Batch struct {
	Posts    []*MigratedPost
	Mappings []*MappingRecord
	Failed   []*FailedMapping
}

// Counts summarizes every collection.
type Counts struct {
	Pending   int `json:"pending"`
	Rejected  int `json:"rejected"`
	Mappings  int `json:"mappings"`
	Failed    int `json:"failed"`
	Published int `json:"published"`
	Movies    int `json:"movies"`
}
