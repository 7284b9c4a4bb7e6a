package migration_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"filmwallaa/internal/catalog"
	"filmwallaa/internal/config"
	"filmwallaa/internal/export"
	"filmwallaa/internal/logging"
	"filmwallaa/internal/matcher"
	"filmwallaa/internal/metrics"
	"filmwallaa/internal/migration"
	"filmwallaa/internal/store"
	"filmwallaa/internal/testsupport"
)

var (
	jawanItem = testsupport.ExportItem{
		Title:      "Jawan Movie Review: A Must Watch",
		Body:       "<p>This film is a blast. The director and the cast deliver, and this review salutes the cinema.</p><p>Rating: 4.5</p>",
		Link:       "https://blog.example/jawan-review/",
		Slug:       "jawan-review",
		Creator:    "gaurang",
		PostDate:   "2023-09-08 00:00:00",
		Categories: []string{"Bollywood"},
	}
	obscureItem = testsupport.ExportItem{
		Title:    "Obscure Indie Film Review",
		Body:     "<p>This small film has a director with vision and a fearless cast.</p>",
		Link:     "https://blog.example/obscure/",
		Slug:     "obscure",
		PostDate: "2023-11-02 09:30:00",
	}
	tripItem = testsupport.ExportItem{
		Title:    "My trip to the mountains",
		Body:     "<p>We walked for hours and ate well.</p>",
		Link:     "https://blog.example/trip/",
		Slug:     "trip",
		PostDate: "2023-10-02 10:00:00",
	}
)

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			http.NotFound(w, r)
			return
		}
		results := []map[string]any{}
		if r.URL.Query().Get("query") == "jawan" {
			results = append(results, map[string]any{
				"id":                872906,
				"title":             "Jawan",
				"release_date":      "2023-09-07",
				"poster_path":       "/jawan.jpg",
				"vote_average":      7.1,
				"genre_ids":         []int{28, 53},
				"original_language": "hi",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"page": 1, "results": results, "total_results": len(results)})
	}))
	t.Cleanup(server.Close)
	return server
}

type harness struct {
	cfg      *config.Config
	store    *store.Store
	migrator *migration.Migrator
	registry *prometheus.Registry
}

func newHarness(t *testing.T, searcher catalog.Searcher, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	if searcher == nil {
		client, err := catalog.NewFromConfig(cfg, logger, catalog.WithObserver(collector))
		if err != nil {
			t.Fatalf("catalog.NewFromConfig: %v", err)
		}
		searcher = client
	}
	m, err := migration.New(cfg, migration.Deps{
		Extractor: export.New(cfg.Extraction, logger),
		Matcher:   matcher.New(searcher, cfg.Catalog.Language, logger),
		Store:     st,
		Logger:    logger,
		Observer:  collector,
	})
	if err != nil {
		t.Fatalf("migration.New: %v", err)
	}
	return &harness{cfg: cfg, store: st, migrator: m, registry: registry}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metricLoop:
		for _, m := range mf.GetMetric() {
			for _, pair := range m.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue metricLoop
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRunEndToEnd(t *testing.T) {
	server := catalogServer(t)
	h := newHarness(t, nil, testsupport.WithCatalogURL(server.URL))
	testsupport.WriteExport(t, h.cfg.Paths.ExportPath, jawanItem, tripItem, obscureItem)
	ctx := context.Background()

	report, err := h.migrator.Run(ctx, h.cfg.Paths.ExportPath)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Status != migration.StatusSuccess || report.RunID == "" {
		t.Fatalf("unexpected report status: %+v", report)
	}
	if report.ExportItems != 3 || report.TotalPosts != 2 || report.Mapped != 1 || report.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if report.SuccessRate != 50 || report.WithRatings != 1 {
		t.Fatalf("success rate %v, with ratings %d", report.SuccessRate, report.WithRatings)
	}
	if report.PostsByYear[2023] != 2 {
		t.Fatalf("posts by year = %v", report.PostsByYear)
	}
	if len(report.FailedPreview) != 1 || report.FailedPreview[0].Query != "obscure indie" {
		t.Fatalf("failed preview = %+v", report.FailedPreview)
	}

	posts, total, err := h.store.ListPosts(ctx, store.StatusPending, 0, 0)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if total != 2 {
		t.Fatalf("pending total = %d, want 2", total)
	}
	var jawan *store.MigratedPost
	for _, post := range posts {
		if post.Slug == "jawan-review" {
			jawan = post
		}
		if post.Slug == "trip" {
			t.Fatal("non-review post was migrated")
		}
	}
	if jawan == nil {
		t.Fatal("jawan post not migrated")
	}
	if jawan.RatingGuess == nil || *jawan.RatingGuess != 4.5 {
		t.Fatalf("rating guess = %v", jawan.RatingGuess)
	}
	if jawan.SearchTitle != "jawan" || jawan.CatalogID != 872906 || jawan.MovieID == "" {
		t.Fatalf("unexpected jawan post: %+v", jawan)
	}
	if jawan.FeaturedImage == h.cfg.Extraction.PlaceholderImage {
		t.Fatal("featured image should be the catalog poster")
	}
	if len(jawan.Tags) != 1 || jawan.Tags[0] != "Bollywood" {
		t.Fatalf("tags = %v", jawan.Tags)
	}

	mapping, err := h.store.GetMapping(ctx, jawan.ID)
	if err != nil {
		t.Fatalf("GetMapping: %v", err)
	}
	if mapping.Confidence != store.ConfidenceHigh || mapping.MatchedTitle != "Jawan" || mapping.Year != 2023 {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}
	failed, err := h.store.ListFailed(ctx)
	if err != nil {
		t.Fatalf("ListFailed: %v", err)
	}
	for _, f := range failed {
		if f.PostID == jawan.ID {
			t.Fatal("matched post also recorded as failed")
		}
	}

	if got := counterValue(t, h.registry, "filmwallaa_catalog_requests_total", map[string]string{"endpoint": "search", "outcome": "ok"}); got != 2 {
		t.Fatalf("catalog ok requests = %v, want 2", got)
	}
	if got := counterValue(t, h.registry, "filmwallaa_migration_runs_total", map[string]string{"outcome": "success"}); got != 1 {
		t.Fatalf("successful runs = %v, want 1", got)
	}
}

func TestRunSkipsExistingPosts(t *testing.T) {
	server := catalogServer(t)
	h := newHarness(t, nil, testsupport.WithCatalogURL(server.URL))
	testsupport.WriteExport(t, h.cfg.Paths.ExportPath, jawanItem, obscureItem)
	ctx := context.Background()

	if _, err := h.migrator.Run(ctx, h.cfg.Paths.ExportPath); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	report, err := h.migrator.Run(ctx, h.cfg.Paths.ExportPath)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.SkippedExisting != 2 || report.TotalPosts != 0 || report.SuccessRate != 0 {
		t.Fatalf("unexpected rerun report: %+v", report)
	}
	counts, err := h.store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Pending != 2 || counts.Mappings != 1 || counts.Failed != 1 {
		t.Fatalf("duplicates written on rerun: %+v", counts)
	}
}

func TestRunWithoutDedupeAppends(t *testing.T) {
	server := catalogServer(t)
	h := newHarness(t, nil, testsupport.WithCatalogURL(server.URL), testsupport.WithSkipExisting(false))
	testsupport.WriteExport(t, h.cfg.Paths.ExportPath, jawanItem)
	ctx := context.Background()

	for range 2 {
		if _, err := h.migrator.Run(ctx, h.cfg.Paths.ExportPath); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	counts, err := h.store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Pending != 2 || counts.Movies != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestRunWithoutReviewsFails(t *testing.T) {
	h := newHarness(t, &fakeSearcher{})
	testsupport.WriteExport(t, h.cfg.Paths.ExportPath, tripItem)

	report, err := h.migrator.Run(context.Background(), h.cfg.Paths.ExportPath)
	if !errors.Is(err, export.ErrNoPosts) {
		t.Fatalf("expected ErrNoPosts, got %v", err)
	}
	if report == nil || report.Status != migration.StatusFailed || report.TotalPosts != 0 || report.SuccessRate != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	counts, err := h.store.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts != (store.Counts{}) {
		t.Fatalf("store touched: %+v", counts)
	}
}

func TestRunMissingExportFails(t *testing.T) {
	h := newHarness(t, &fakeSearcher{})
	report, err := h.migrator.Run(context.Background(), h.cfg.Paths.ExportPath)
	if err == nil || report.Status != migration.StatusFailed || report.Error == "" {
		t.Fatalf("expected failed report, got %+v (%v)", report, err)
	}
}

func TestRunCancelledPersistsNothing(t *testing.T) {
	h := newHarness(t, &fakeSearcher{})
	testsupport.WriteExport(t, h.cfg.Paths.ExportPath, jawanItem, obscureItem)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := h.migrator.Run(ctx, h.cfg.Paths.ExportPath)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Status != migration.StatusCancelled {
		t.Fatalf("status = %q", report.Status)
	}
	counts, err := h.store.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts != (store.Counts{}) {
		t.Fatalf("cancelled run persisted data: %+v", counts)
	}
}

type fakeSearcher struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (f *fakeSearcher) Search(ctx context.Context, title, language string) ([]catalog.CandidateMovie, error) {
	f.calls.Add(1)
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if current <= peak || f.peak.CompareAndSwap(peak, current) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return []catalog.CandidateMovie{{CatalogID: int64(len(title)) + 1000, Title: title, Year: 2020}}, nil
}

func (f *fakeSearcher) Details(ctx context.Context, catalogID int64, language string) (*catalog.CandidateMovie, error) {
	return nil, catalog.ErrNotFound
}

func TestRunBoundsCatalogConcurrency(t *testing.T) {
	searcher := &fakeSearcher{}
	h := newHarness(t, searcher, testsupport.WithConcurrency(3))

	var items []testsupport.ExportItem
	for i := range 12 {
		items = append(items, testsupport.ExportItem{
			Title:    fmt.Sprintf("Picture %02d movie review", i),
			Body:     "<p>The film had a great director and cast.</p>",
			Slug:     fmt.Sprintf("picture-%02d", i),
			PostDate: "2022-01-01 00:00:00",
		})
	}
	testsupport.WriteExport(t, h.cfg.Paths.ExportPath, items...)

	report, err := h.migrator.Run(context.Background(), h.cfg.Paths.ExportPath)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Mapped != 12 || report.SuccessRate != 100 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if calls := searcher.calls.Load(); calls != 12 {
		t.Fatalf("catalog calls = %d, want 12", calls)
	}
	if peak := searcher.peak.Load(); peak > 3 {
		t.Fatalf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestSuccessRateZeroSafe(t *testing.T) {
	if got := migration.SuccessRate(0, 0); got != 0 {
		t.Fatalf("SuccessRate(0,0) = %v", got)
	}
	if got := migration.SuccessRate(1, 4); got != 25 {
		t.Fatalf("SuccessRate(1,4) = %v", got)
	}
}

type blockingRunner struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingRunner) Run(ctx context.Context, source string) (*migration.Report, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return &migration.Report{Source: source, Status: migration.StatusSuccess}, nil
	case <-ctx.Done():
		return &migration.Report{Source: source, Status: migration.StatusCancelled}, ctx.Err()
	}
}
