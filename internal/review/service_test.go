package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"filmwallaa/internal/catalog"
	"filmwallaa/internal/logging"
	"filmwallaa/internal/review"
	"filmwallaa/internal/store"
	"filmwallaa/internal/testsupport"
)

type fakeCatalog struct {
	movies    map[int64]*catalog.CandidateMovie
	err       error
	onDetails func()
}

func (f *fakeCatalog) Search(ctx context.Context, title, language string) ([]catalog.CandidateMovie, error) {
	return nil, nil
}

func (f *fakeCatalog) Details(ctx context.Context, catalogID int64, language string) (*catalog.CandidateMovie, error) {
	if f.onDetails != nil {
		f.onDetails()
	}
	if f.err != nil {
		return nil, f.err
	}
	movie, ok := f.movies[catalogID]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	clone := *movie
	return &clone, nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, cat catalog.Searcher) (*review.Service, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if cat == nil {
		cat = &fakeCatalog{}
	}
	svc := review.NewService(st, cat, logging.NewNop(), review.WithClock(func() time.Time { return fixedNow }))
	return svc, st
}

func TestApproveAppliesDefaults(t *testing.T) {
	svc, st := newService(t, nil)
	ctx := context.Background()
	post := testsupport.NewPendingPost(t, st, "Jawan")

	published, err := svc.Approve(ctx, post.ID, review.Overrides{})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if published.Rating != review.DefaultRating {
		t.Fatalf("rating = %v, want %v", published.Rating, review.DefaultRating)
	}
	if published.Featured || !published.MigratedFromExport || published.Status != store.StatusPublished {
		t.Fatalf("unexpected flags: %+v", published)
	}
	if !published.CreatedAt.Equal(post.MigratedAt) || !published.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected timestamps: created=%v updated=%v", published.CreatedAt, published.UpdatedAt)
	}
	if published.OriginalURL != post.OriginalURL || len(published.Tags) != 1 || published.Tags[0] != "Reviews" {
		t.Fatalf("carried fields missing: %+v", published)
	}

	page, err := svc.ListPending(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if page.Total != 0 || len(page.Posts) != 0 {
		t.Fatalf("approved post still pending: %+v", page)
	}

	_, err = svc.Approve(ctx, post.ID, review.Overrides{})
	if !errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat approve, got %v", err)
	}
}

func TestApproveOverridesAndRatingGuess(t *testing.T) {
	svc, st := newService(t, nil)
	ctx := context.Background()

	guess := 3.5
	guessed := testsupport.NewPendingPost(t, st, "Pathaan")
	guessed.RatingGuess = &guess
	if err := st.UpdatePost(ctx, guessed); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	published, err := svc.Approve(ctx, guessed.ID, review.Overrides{})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if published.Rating != 3.5 {
		t.Fatalf("rating = %v, want rating guess", published.Rating)
	}

	override := 5.0
	post := testsupport.NewPendingPost(t, st, "Dunki")
	published, err = svc.Approve(ctx, post.ID, review.Overrides{
		Title:   "Dunki: a gentle drama",
		Excerpt: "Short",
		Rating:  &override,
		Tags:    []string{"Drama", "Hirani"},
	})
	if err != nil {
		t.Fatalf("Approve with overrides: %v", err)
	}
	if published.Title != "Dunki: a gentle drama" || published.OriginalTitle != "Dunki" {
		t.Fatalf("title override not applied: %+v", published)
	}
	if published.Excerpt != "Short" || published.Rating != 5 || len(published.Tags) != 2 {
		t.Fatalf("overrides not applied: %+v", published)
	}

	bad := 7.0
	other := testsupport.NewPendingPost(t, st, "Other")
	if _, err := svc.Approve(ctx, other.ID, review.Overrides{Rating: &bad}); err == nil {
		t.Fatal("expected out of range rating to fail")
	}
}

func TestApproveUnknownMovieOverride(t *testing.T) {
	svc, st := newService(t, nil)
	post := testsupport.NewPendingPost(t, st, "Jawan")
	_, err := svc.Approve(context.Background(), post.ID, review.Overrides{MovieID: "missing"})
	if !errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.GetPost(context.Background(), post.ID); err != nil {
		t.Fatalf("post should remain pending: %v", err)
	}
}

func TestRejectIsIdempotentAndApprovable(t *testing.T) {
	svc, st := newService(t, nil)
	ctx := context.Background()
	post := testsupport.NewPendingPost(t, st, "Adipurush")

	rejected, err := svc.Reject(ctx, post.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != store.StatusRejected || rejected.RejectedAt == nil || !rejected.RejectedAt.Equal(fixedNow) {
		t.Fatalf("unexpected rejected post: %+v", rejected)
	}
	again, err := svc.Reject(ctx, post.ID)
	if err != nil {
		t.Fatalf("second Reject: %v", err)
	}
	if !again.RejectedAt.Equal(fixedNow) {
		t.Fatalf("rejected_at changed: %v", again.RejectedAt)
	}

	page, err := svc.ListRejected(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListRejected: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("rejected total = %d", page.Total)
	}

	if _, err := svc.Approve(ctx, post.ID, review.Overrides{}); err != nil {
		t.Fatalf("Approve rejected post: %v", err)
	}

	if _, err := svc.Reject(ctx, "missing"); !errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManualMapClearsFailedMapping(t *testing.T) {
	cat := &fakeCatalog{movies: map[int64]*catalog.CandidateMovie{
		872906: {CatalogID: 872906, Title: "Jawan", Year: 2023, PosterURL: "https://img/jawan.jpg"},
	}}
	svc, st := newService(t, cat)
	ctx := context.Background()

	post := testsupport.NewPendingPost(t, st, "Jawan")
	if err := st.SaveBatch(ctx, store.Batch{Failed: []*store.FailedMapping{
		{PostID: post.ID, PostTitle: post.Title, Query: "jawan", Reason: "no catalog match found", CreatedAt: fixedNow},
	}}); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	mapping, err := svc.ManualMap(ctx, post.ID, 872906)
	if err != nil {
		t.Fatalf("ManualMap: %v", err)
	}
	if mapping.Confidence != store.ConfidenceManual || mapping.MovieID == "" || !mapping.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}

	failed, err := svc.ListFailed(ctx)
	if err != nil {
		t.Fatalf("ListFailed: %v", err)
	}
	for _, f := range failed {
		if f.PostID == post.ID {
			t.Fatalf("failed mapping still present for %s", post.ID)
		}
	}

	updated, err := st.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if !updated.ManualMapping || updated.FeaturedImage != "https://img/jawan.jpg" || updated.CatalogID != 872906 {
		t.Fatalf("post not updated: %+v", updated)
	}

	published, err := svc.Approve(ctx, post.ID, review.Overrides{})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if published.MovieID != mapping.MovieID {
		t.Fatalf("review movie id = %q, want %q", published.MovieID, mapping.MovieID)
	}
}

func TestManualMapKeepsRejectionCommittedDuringLookup(t *testing.T) {
	cat := &fakeCatalog{movies: map[int64]*catalog.CandidateMovie{
		872906: {CatalogID: 872906, Title: "Jawan", Year: 2023, PosterURL: "https://img/jawan.jpg"},
	}}
	svc, st := newService(t, cat)
	ctx := context.Background()
	post := testsupport.NewPendingPost(t, st, "Jawan")

	cat.onDetails = func() {
		if _, err := svc.Reject(ctx, post.ID); err != nil {
			t.Errorf("Reject during lookup: %v", err)
		}
	}
	if _, err := svc.ManualMap(ctx, post.ID, 872906); err != nil {
		t.Fatalf("ManualMap: %v", err)
	}

	updated, err := st.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if updated.Status != store.StatusRejected || updated.RejectedAt == nil || !updated.RejectedAt.Equal(fixedNow) {
		t.Fatalf("rejection lost: status=%q rejected_at=%v", updated.Status, updated.RejectedAt)
	}
	if !updated.ManualMapping || updated.CatalogID != 872906 || updated.MovieID == "" {
		t.Fatalf("mapping not applied: %+v", updated)
	}
}

func TestApproveUsesMappingCommittedBeforePublish(t *testing.T) {
	cat := &fakeCatalog{movies: map[int64]*catalog.CandidateMovie{
		872906: {CatalogID: 872906, Title: "Jawan", Year: 2023},
	}}
	svc, st := newService(t, cat)
	ctx := context.Background()
	post := testsupport.NewPendingPost(t, st, "Jawan")
	if post.CatalogID != 0 {
		t.Fatalf("fixture post already mapped: %+v", post)
	}

	mapping, err := svc.ManualMap(ctx, post.ID, 872906)
	if err != nil {
		t.Fatalf("ManualMap: %v", err)
	}
	published, err := svc.Approve(ctx, post.ID, review.Overrides{})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if published.CatalogID != 872906 || published.MovieID != mapping.MovieID || published.CatalogData == nil {
		t.Fatalf("catalog data missing from review: %+v", published)
	}
}

func TestManualMapNotFound(t *testing.T) {
	svc, st := newService(t, &fakeCatalog{})
	ctx := context.Background()
	post := testsupport.NewPendingPost(t, st, "Jawan")

	_, err := svc.ManualMap(ctx, post.ID, 99)
	if !errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown catalog id, got %v", err)
	}
	if _, err := svc.ManualMap(ctx, "missing", 99); !errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown post, got %v", err)
	}
}

func TestManualMapCatalogUnavailable(t *testing.T) {
	svc, st := newService(t, &fakeCatalog{err: catalog.ErrUnavailable})
	post := testsupport.NewPendingPost(t, st, "Jawan")
	_, err := svc.ManualMap(context.Background(), post.ID, 1)
	if !errors.Is(err, catalog.ErrUnavailable) || errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestClearAllAndStats(t *testing.T) {
	svc, st := newService(t, nil)
	ctx := context.Background()
	keep := testsupport.NewPendingPost(t, st, "Keep")
	testsupport.NewPendingPost(t, st, "Drop")
	if _, err := svc.Approve(ctx, keep.ID, review.Overrides{}); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Pending != 0 || stats.Published != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
