package migration

import (
	"sort"
	"time"

	"filmwallaa/internal/store"
)

// Run statuses.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Report summarizes one migration run.
type Report struct {
	RunID           string                 `json:"run_id"`
	Source          string                 `json:"source"`
	Status          string                 `json:"status"`
	Error           string                 `json:"error,omitempty"`
	StartedAt       time.Time              `json:"started_at"`
	FinishedAt      time.Time              `json:"finished_at"`
	Duration        time.Duration          `json:"duration"`
	ExportItems     int                    `json:"export_items"`
	TotalPosts      int                    `json:"total_posts"`
	Mapped          int                    `json:"successfully_mapped"`
	Failed          int                    `json:"failed_mappings"`
	SuccessRate     float64                `json:"success_rate"`
	WithRatings     int                    `json:"posts_with_ratings"`
	SkippedExisting int                    `json:"skipped_existing"`
	PostsByYear     map[int]int            `json:"posts_by_year"`
	FailedPreview   []*store.FailedMapping `json:"failed_mappings_list"`
}

// Succeeded reports whether the run committed its batch.
func (r *Report) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// Years returns the keys of PostsByYear in ascending order.
func (r *Report) Years() []int {
	years := make([]int, 0, len(r.PostsByYear))
	for year := range r.PostsByYear {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// SuccessRate returns mapped as a percentage of total, or 0 when total is 0.
func SuccessRate(mapped, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(mapped) / float64(total) * 100
}

func (r *Report) summarize(posts []*store.MigratedPost, failed []*store.FailedMapping, previewLimit int) {
	r.TotalPosts = len(posts)
	r.Failed = len(failed)
	r.Mapped = r.TotalPosts - r.Failed
	r.SuccessRate = SuccessRate(r.Mapped, r.TotalPosts)
	r.PostsByYear = make(map[int]int)
	for _, post := range posts {
		if post.RatingGuess != nil {
			r.WithRatings++
		}
		r.PostsByYear[post.PublishedAt.Year()]++
	}
	if previewLimit > len(failed) {
		previewLimit = len(failed)
	}
	r.FailedPreview = append([]*store.FailedMapping(nil), failed[:max(previewLimit, 0)]...)
}
