package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"filmwallaa/internal/catalog"
	"filmwallaa/internal/logging"
	"filmwallaa/internal/store"
)

// ErrNotFound reports an unknown post, movie, or catalog id.
var ErrNotFound = store.ErrNotFound

// DefaultRating is used on approval when neither an override nor a rating
// guess is available.
const DefaultRating = 4.0

const maxRating = 5.0

// Overrides replace fields of a post when it is approved. Nil or empty
// values keep the migrated value.
type Overrides struct {
	MovieID string
	Title   string
	Excerpt string
	Rating  *float64
	Tags    []string
}

// Service performs moderation against the store.
type Service struct {
	store    *store.Store
	catalog  catalog.Searcher
	language string
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLanguage sets the catalog language used by ManualMap.
func WithLanguage(language string) Option {
	return func(s *Service) {
		s.language = language
	}
}

// NewService constructs a moderation service.
func NewService(st *store.Store, searcher catalog.Searcher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   st,
		catalog: searcher,
		logger:  logging.NewComponentLogger(logger, "review"),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Page is one slice of the pending set.
type Page struct {
	Posts  []*store.MigratedPost `json:"posts"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// ListPending returns a page of posts awaiting moderation.
func (s *Service) ListPending(ctx context.Context, limit, offset int) (Page, error) {
	return s.list(ctx, store.StatusPending, limit, offset)
}

// ListRejected returns a page of rejected posts.
func (s *Service) ListRejected(ctx context.Context, limit, offset int) (Page, error) {
	return s.list(ctx, store.StatusRejected, limit, offset)
}

func (s *Service) list(ctx context.Context, status store.PostStatus, limit, offset int) (Page, error) {
	if offset < 0 {
		offset = 0
	}
	posts, total, err := s.store.ListPosts(ctx, status, limit, offset)
	if err != nil {
		return Page{}, err
	}
	return Page{Posts: posts, Total: total, Limit: limit, Offset: offset}, nil
}

// ListFailed returns posts the matcher could not resolve.
func (s *Service) ListFailed(ctx context.Context) ([]*store.FailedMapping, error) {
	return s.store.ListFailed(ctx)
}

// ListMappings returns every automatic and manual mapping.
func (s *Service) ListMappings(ctx context.Context) ([]*store.MappingRecord, error) {
	return s.store.ListMappings(ctx)
}

// Approve publishes a pending or rejected post with optional overrides. The
// post leaves the migrated set, so approving it again returns ErrNotFound.
// The review is built from the post as stored when the approval commits.
func (s *Service) Approve(ctx context.Context, postID string, overrides Overrides) (*store.PublishedReview, error) {
	if r := overrides.Rating; r != nil && (*r < 0 || *r > maxRating) {
		return nil, fmt.Errorf("rating %.1f outside 0-%.0f", *r, maxRating)
	}
	var movie *store.Movie
	if id := strings.TrimSpace(overrides.MovieID); id != "" {
		found, err := s.store.GetMovie(ctx, id)
		if err != nil {
			return nil, err
		}
		movie = found
	}

	now := s.now()
	review, err := s.store.Publish(ctx, postID, func(post *store.MigratedPost) (*store.PublishedReview, error) {
		review := &store.PublishedReview{
			ID:                 post.ID,
			Title:              firstNonEmpty(overrides.Title, post.Title),
			OriginalTitle:      post.OriginalTitle,
			Content:            post.Content,
			Excerpt:            firstNonEmpty(overrides.Excerpt, post.Excerpt),
			Author:             post.Author,
			Rating:             approvedRating(overrides.Rating, post.RatingGuess),
			Tags:               post.Tags,
			Slug:               post.Slug,
			ReadTime:           post.ReadTime,
			FeaturedImage:      post.FeaturedImage,
			MovieID:            post.MovieID,
			CatalogID:          post.CatalogID,
			CatalogData:        post.CatalogData,
			Status:             store.StatusPublished,
			PublishedAt:        post.PublishedAt,
			CreatedAt:          post.MigratedAt,
			UpdatedAt:          now,
			OriginalURL:        post.OriginalURL,
			MigratedFromExport: true,
		}
		if len(overrides.Tags) > 0 {
			review.Tags = overrides.Tags
		}
		if movie != nil && movie.ID != post.MovieID {
			data := movie.Data
			review.MovieID = movie.ID
			review.CatalogID = movie.CatalogID
			review.CatalogData = &data
		}
		return review, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("review approved",
		logging.String(logging.FieldPostSlug, review.Slug),
		logging.String("post_id", review.ID),
		logging.Float64("rating", review.Rating),
	)
	return review, nil
}

// Reject marks a post rejected in place and stamps rejected_at. Rejecting an
// already rejected post leaves it unchanged.
func (s *Service) Reject(ctx context.Context, postID string) (*store.MigratedPost, error) {
	var changed bool
	post, err := s.store.MutatePost(ctx, postID, func(post *store.MigratedPost) error {
		changed = post.Status != store.StatusRejected
		if !changed {
			return nil
		}
		now := s.now()
		post.Status = store.StatusRejected
		post.RejectedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("review rejected",
			logging.String(logging.FieldPostSlug, post.Slug),
			logging.String("post_id", post.ID),
		)
	}
	return post, nil
}

// ManualMap attaches the catalog movie catalogID to a post, replacing any
// earlier mapping and clearing its failed record. The catalog is queried
// before the post is re-read and updated, so moderation changes committed
// meanwhile are kept.
func (s *Service) ManualMap(ctx context.Context, postID string, catalogID int64) (*store.MappingRecord, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	movie, err := s.catalog.Details(ctx, catalogID, s.language)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, &store.NotFoundError{Collection: "catalog", ID: strconv.FormatInt(catalogID, 10)}
		}
		return nil, fmt.Errorf("catalog details %d: %w", catalogID, err)
	}

	mapping := &store.MappingRecord{
		Confidence: store.ConfidenceManual,
		CreatedAt:  s.now(),
	}
	if _, err := s.store.ApplyManualMapping(ctx, postID, *movie, mapping); err != nil {
		return nil, err
	}
	s.logger.Info("manual mapping applied",
		logging.String("post_id", postID),
		logging.Any(logging.FieldCatalogID, movie.CatalogID),
		logging.String("matched_title", movie.Title),
	)
	return mapping, nil
}

// ClearAll empties the migrated, mapping, and failed sets. Callers gate it.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	s.logger.Warn("migration data cleared",
		logging.String(logging.FieldEventType, "clear_all"),
	)
	return nil
}

// Stats reports collection sizes.
func (s *Service) Stats(ctx context.Context) (store.Counts, error) {
	return s.store.Counts(ctx)
}

func approvedRating(override, guess *float64) float64 {
	switch {
	case override != nil:
		return *override
	case guess != nil:
		return *guess
	default:
		return DefaultRating
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
