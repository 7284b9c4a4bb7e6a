package matcher

import (
	"context"
	"errors"
	"log/slog"

	"filmwallaa/internal/catalog"
	"filmwallaa/internal/logging"
	"filmwallaa/internal/store"
	"filmwallaa/internal/textutil"
)

// Failure reasons recorded on unmatched posts.
const (
	ReasonEmptyTitle  = "title empty after normalization"
	ReasonNoMatch     = "no catalog match found"
	ReasonUnavailable = "catalog unavailable"
)

// Result is the outcome of matching one title.
type Result struct {
	Query      string
	Movie      *catalog.CandidateMovie
	Confidence store.Confidence
	// Similarity is the token overlap between Query and the matched title.
	// It is informational and never changes which candidate is chosen.
	Similarity float64
	Reason     string
}

// Matched reports whether a candidate was found.
func (r Result) Matched() bool {
	return r.Movie != nil
}

// Matcher resolves titles against a catalog.
type Matcher struct {
	catalog  catalog.Searcher
	language string
	logger   *slog.Logger
}

// New constructs a Matcher. language may be empty to use the catalog default.
func New(searcher catalog.Searcher, language string, logger *slog.Logger) *Matcher {
	return &Matcher{
		catalog:  searcher,
		language: language,
		logger:   logging.NewComponentLogger(logger, "matcher"),
	}
}

// Match normalizes rawTitle and returns the catalog's first candidate.
// Catalog unavailability is reported as an unmatched Result; the only error
// returned is the context's.
func (m *Matcher) Match(ctx context.Context, rawTitle string) (Result, error) {
	query := Normalize(rawTitle)
	result := Result{Query: query}
	if query == "" {
		result.Reason = ReasonEmptyTitle
		return result, nil
	}

	candidates, err := m.catalog.Search(ctx, query, m.language)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		if !errors.Is(err, catalog.ErrUnavailable) {
			m.logger.Warn("catalog search rejected",
				logging.String("query", query),
				logging.Error(err),
			)
		}
		result.Reason = ReasonUnavailable
		return result, nil
	}
	if len(candidates) == 0 {
		result.Reason = ReasonNoMatch
		return result, nil
	}

	best := candidates[0]
	result.Movie = &best
	result.Confidence = store.ConfidenceHigh
	result.Similarity = textutil.TitleSimilarity(query, best.Title)
	m.logger.Debug("title matched",
		logging.String("title", rawTitle),
		logging.String("query", query),
		logging.String("matched_title", best.Title),
		logging.Any(logging.FieldCatalogID, best.CatalogID),
		logging.Float64("similarity", result.Similarity),
	)
	return result, nil
}
