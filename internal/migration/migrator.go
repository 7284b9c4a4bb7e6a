package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"filmwallaa/internal/config"
	"filmwallaa/internal/export"
	"filmwallaa/internal/logging"
	"filmwallaa/internal/matcher"
	"filmwallaa/internal/store"
)

// RunObserver receives run outcomes, typically for metrics.
type RunObserver interface {
	RunFinished(outcome string, duration time.Duration, mapped, failed, skipped int)
}

// Deps are the collaborators of a Migrator.
type Deps struct {
	Extractor *export.Extractor
	Matcher   *matcher.Matcher
	Store     *store.Store
	Logger    *slog.Logger
	Observer  RunObserver
}

// Migrator runs export migrations.
type Migrator struct {
	extractor *export.Extractor
	matcher   *matcher.Matcher
	store     *store.Store
	logger    *slog.Logger
	observer  RunObserver

	workers          int
	skipExisting     bool
	placeholderImage string
	previewLimit     int
	now              func() time.Time
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithClock overrides the time source used for migration timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Migrator) {
		if now != nil {
			m.now = now
		}
	}
}

// New constructs a Migrator from configuration and collaborators.
func New(cfg *config.Config, deps Deps, opts ...Option) (*Migrator, error) {
	if cfg == nil {
		return nil, errors.New("migration requires configuration")
	}
	if deps.Extractor == nil || deps.Matcher == nil || deps.Store == nil {
		return nil, errors.New("migration requires extractor, matcher, and store")
	}
	m := &Migrator{
		extractor:        deps.Extractor,
		matcher:          deps.Matcher,
		store:            deps.Store,
		logger:           logging.NewComponentLogger(deps.Logger, "migration"),
		observer:         deps.Observer,
		workers:          max(cfg.Catalog.Concurrency, 1),
		skipExisting:     cfg.Migration.SkipExisting,
		placeholderImage: cfg.Extraction.PlaceholderImage,
		previewLimit:     cfg.Migration.FailedPreviewLimit,
		now:              func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Run migrates the export at source. The returned report is never nil; on
// failure it carries StatusFailed or StatusCancelled alongside the error and
// nothing was written to the store.
func (m *Migrator) Run(ctx context.Context, source string) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Source:    source,
		StartedAt: m.now(),
	}
	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("migration started", logging.String("source", source))

	err := m.run(ctx, logger, source, report)
	report.FinishedAt = m.now()
	report.Duration = report.FinishedAt.Sub(report.StartedAt)
	switch {
	case err == nil:
		report.Status = StatusSuccess
		logger.Info("migration completed",
			logging.Int("total_posts", report.TotalPosts),
			logging.Int("mapped", report.Mapped),
			logging.Int("failed", report.Failed),
			logging.Int("skipped_existing", report.SkippedExisting),
			logging.Float64("success_rate", report.SuccessRate),
			logging.Duration("duration", report.Duration),
		)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		report.Status = StatusCancelled
		report.Error = err.Error()
		logger.Warn("migration cancelled", logging.Error(err))
	default:
		report.Status = StatusFailed
		report.Error = err.Error()
		logger.Error("migration failed", logging.Error(err))
	}
	if m.observer != nil {
		m.observer.RunFinished(report.Status, report.Duration, report.Mapped, report.Failed, report.SkippedExisting)
	}
	return report, err
}

func (m *Migrator) run(ctx context.Context, logger *slog.Logger, source string, report *Report) error {
	extracted, err := m.extractor.ExtractFile(source)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	report.ExportItems = extracted.Items
	if len(extracted.Posts) == 0 {
		return export.ErrNoPosts
	}

	candidates, err := m.dedupe(ctx, extracted.Posts, report)
	if err != nil {
		return err
	}

	now := m.now()
	posts := make([]*store.MigratedPost, len(candidates))
	for i, post := range candidates {
		posts[i] = m.newPost(post, now)
	}

	results, err := m.matchAll(ctx, posts)
	if err != nil {
		return err
	}

	batch := store.Batch{Posts: posts}
	for i, post := range posts {
		result := results[i]
		post.SearchTitle = result.Query
		if !result.Matched() {
			batch.Failed = append(batch.Failed, &store.FailedMapping{
				PostID:    post.ID,
				PostTitle: post.Title,
				Query:     result.Query,
				Reason:    result.Reason,
				CreatedAt: now,
			})
			continue
		}
		post.CatalogData = result.Movie
		post.CatalogID = result.Movie.CatalogID
		if result.Movie.PosterURL != "" {
			post.FeaturedImage = result.Movie.PosterURL
		}
		batch.Mappings = append(batch.Mappings, &store.MappingRecord{
			PostID:       post.ID,
			PostTitle:    post.Title,
			MatchedTitle: result.Movie.Title,
			CatalogID:    result.Movie.CatalogID,
			Year:         result.Movie.Year,
			Confidence:   result.Confidence,
			Similarity:   result.Similarity,
			CreatedAt:    now,
		})
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.store.SaveBatch(ctx, batch); err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}
	report.summarize(posts, batch.Failed, m.previewLimit)
	logger.Debug("batch persisted",
		logging.Int("posts", len(batch.Posts)),
		logging.Int("mappings", len(batch.Mappings)),
		logging.Int("failed", len(batch.Failed)),
	)
	return nil
}

// dedupe drops posts already migrated or published, and repeats within the
// export itself, when skip-existing is enabled.
func (m *Migrator) dedupe(ctx context.Context, posts []export.Post, report *Report) ([]export.Post, error) {
	if !m.skipExisting {
		return posts, nil
	}
	seen, err := m.store.SourceKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing posts: %w", err)
	}
	kept := make([]export.Post, 0, len(posts))
	for _, post := range posts {
		key := store.SourceKey(post.OriginalURL, post.Slug)
		if _, ok := seen[key]; ok {
			report.SkippedExisting++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, post)
	}
	return kept, nil
}

func (m *Migrator) newPost(post export.Post, now time.Time) *store.MigratedPost {
	return &store.MigratedPost{
		ID:            uuid.NewString(),
		Title:         post.Title,
		OriginalTitle: post.Title,
		Content:       post.BodyText,
		Excerpt:       post.Excerpt,
		Author:        post.Author,
		PublishedAt:   post.PublishedAt,
		DateEstimated: post.DateEstimated,
		Categories:    post.Categories,
		Tags:          append([]string(nil), post.Categories...),
		Slug:          post.Slug,
		OriginalURL:   post.OriginalURL,
		SourceStatus:  post.SourceStatus,
		RatingGuess:   post.RatingGuess,
		ReadTime:      post.ReadTimeLabel,
		WordCount:     post.WordCount,
		FeaturedImage: m.placeholderImage,
		SearchTitle:   matcher.Normalize(post.Title),
		Status:        store.StatusPending,
		MigratedAt:    now,
	}
}

// matchAll matches every post using at most m.workers concurrent catalog
// lookups. It stops handing out work once ctx is done.
func (m *Migrator) matchAll(ctx context.Context, posts []*store.MigratedPost) ([]matcher.Result, error) {
	results := make([]matcher.Result, len(posts))
	sem := make(chan struct{}, m.workers)
	var wg sync.WaitGroup

	for i, post := range posts {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, title string) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := m.matcher.Match(ctx, title)
			if err != nil {
				return
			}
			results[i] = result
		}(i, post.Title)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
