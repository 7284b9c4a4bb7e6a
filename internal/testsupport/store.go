package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"filmwallaa/internal/config"
	"filmwallaa/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// NewPendingPost persists a pending migrated post with the given title and
// returns it.
func NewPendingPost(t testing.TB, s *store.Store, title string) *store.MigratedPost {
	t.Helper()

	now := time.Now().UTC()
	id := uuid.NewString()
	post := &store.MigratedPost{
		ID:            id,
		Title:         title,
		OriginalTitle: title,
		Content:       "A review of " + title,
		Excerpt:       "A review of " + title,
		Author:        "Test Author",
		PublishedAt:   now.Add(-48 * time.Hour),
		Categories:    []string{"Reviews"},
		Tags:          []string{"Reviews"},
		Slug:          "post-" + id[:8],
		OriginalURL:   "https://blog.example/" + id,
		ReadTime:      "1 min read",
		WordCount:     4,
		FeaturedImage: "https://img.example/placeholder.jpg",
		SearchTitle:   title,
		Status:        store.StatusPending,
		MigratedAt:    now,
	}
	if err := s.SaveBatch(context.Background(), store.Batch{Posts: []*store.MigratedPost{post}}); err != nil {
		t.Fatalf("store.SaveBatch: %v", err)
	}
	return post
}
