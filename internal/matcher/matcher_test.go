package matcher_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"filmwallaa/internal/catalog"
	"filmwallaa/internal/logging"
	"filmwallaa/internal/matcher"
	"filmwallaa/internal/store"
)

type fakeSearcher struct {
	results  map[string][]catalog.CandidateMovie
	err      error
	queries  []string
	language string
}

func (f *fakeSearcher) Search(ctx context.Context, title, language string) ([]catalog.CandidateMovie, error) {
	f.queries = append(f.queries, title)
	f.language = language
	if f.err != nil {
		return nil, f.err
	}
	return f.results[title], nil
}

func (f *fakeSearcher) Details(ctx context.Context, catalogID int64, language string) (*catalog.CandidateMovie, error) {
	return nil, catalog.ErrNotFound
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Jawan Movie Review: A Must Watch", "jawan"},
		{"The Dark Knight Review", "dark knight"},
		{"Review: Pathaan", "pathaan"},
		{"Kantara - My Review", "kantara"},
		{"Animal the movie experience", "animal"},
		{"An Action Hero...", "action hero"},
		{"12th Fail Film Review", "12th fail"},
		{"  Oppenheimer  ", "oppenheimer"},
		{"Review", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := matcher.Normalize(tt.title)
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.title, got, tt.want)
			}
			if again := matcher.Normalize(got); again != got {
				t.Fatalf("Normalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestMatchReturnsFirstCandidate(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]catalog.CandidateMovie{
		"jawan": {
			{CatalogID: 872906, Title: "Jawan", Year: 2023},
			{CatalogID: 1, Title: "Jawan Returns", Year: 1990},
		},
	}}
	m := matcher.New(searcher, "hi-IN", logging.NewNop())

	result, err := m.Match(context.Background(), "Jawan Movie Review: A Must Watch")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !result.Matched() {
		t.Fatalf("expected match, got %+v", result)
	}
	if result.Query != "jawan" || result.Movie.CatalogID != 872906 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Confidence != store.ConfidenceHigh {
		t.Fatalf("confidence = %q", result.Confidence)
	}
	if result.Similarity != 1 {
		t.Fatalf("similarity = %v, want 1", result.Similarity)
	}
	if searcher.language != "hi-IN" {
		t.Fatalf("language = %q", searcher.language)
	}
}

func TestMatchEmptyTitleSkipsCatalog(t *testing.T) {
	searcher := &fakeSearcher{}
	m := matcher.New(searcher, "", logging.NewNop())

	result, err := m.Match(context.Background(), "Review")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if result.Matched() || result.Reason != matcher.ReasonEmptyTitle {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(searcher.queries) != 0 {
		t.Fatalf("catalog called for empty title: %v", searcher.queries)
	}
}

func TestMatchNoResults(t *testing.T) {
	m := matcher.New(&fakeSearcher{}, "", logging.NewNop())
	result, err := m.Match(context.Background(), "Obscure Indie Film Review")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if result.Matched() || result.Reason != matcher.ReasonNoMatch || result.Query != "obscure indie" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestMatchCatalogUnavailable(t *testing.T) {
	for _, searchErr := range []error{
		fmt.Errorf("search: %w", catalog.ErrUnavailable),
		errors.New("unexpected payload"),
	} {
		m := matcher.New(&fakeSearcher{err: searchErr}, "", logging.NewNop())
		result, err := m.Match(context.Background(), "Jawan Review")
		if err != nil {
			t.Fatalf("Match(%v) returned error: %v", searchErr, err)
		}
		if result.Matched() || result.Reason != matcher.ReasonUnavailable {
			t.Fatalf("unexpected result for %v: %+v", searchErr, result)
		}
	}
}

func TestMatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := matcher.New(&fakeSearcher{err: context.Canceled}, "", logging.NewNop())
	if _, err := m.Match(ctx, "Jawan Review"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
