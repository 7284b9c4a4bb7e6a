package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"filmwallaa/internal/logging"
)

type searchResult struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
}

type searchResponse struct {
	Page         int            `json:"page"`
	Results      []searchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

type movieDetails struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	Runtime          int     `json:"runtime"`
	OriginalLanguage string  `json:"original_language"`
	Genres           []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	ProductionCountries []struct {
		ISO31661 string `json:"iso_3166_1"`
	} `json:"production_countries"`
}

type creditsResponse struct {
	Cast []struct {
		Name  string `json:"name"`
		Order int    `json:"order"`
	} `json:"cast"`
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

type videosResponse struct {
	Results []struct {
		Key  string `json:"key"`
		Site string `json:"site"`
		Type string `json:"type"`
	} `json:"results"`
}

// Search returns catalog candidates for title, best first, capped at the
// configured result count. An empty title is an error.
func (c *Client) Search(ctx context.Context, title, language string) ([]CandidateMovie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("query must not be empty")
	}
	language = c.languageOr(language)
	cacheKey := "search|" + language + "|" + strings.ToLower(title)
	if value, ok := c.cached(cacheKey); ok {
		if c.observer != nil {
			c.observer.CatalogCacheHit("search")
		}
		return slices.Clone(value.([]CandidateMovie)), nil
	}

	params := url.Values{}
	params.Set("query", title)
	params.Set("include_adult", "false")
	if language != "" {
		params.Set("language", language)
	}
	var payload searchResponse
	if err := c.getJSON(ctx, "search", "/search/movie", params, &payload); err != nil {
		c.logger.Warn("catalog search failed",
			logging.String("query", title),
			logging.Error(err),
		)
		return nil, err
	}

	results := payload.Results
	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}
	movies := make([]CandidateMovie, 0, len(results))
	for _, result := range results {
		movies = append(movies, c.fromSearch(result))
	}
	c.logger.Debug("catalog search complete",
		logging.String("query", title),
		logging.Int("results", len(movies)),
	)
	c.store(cacheKey, movies)
	return slices.Clone(movies), nil
}

func (c *Client) fromSearch(result searchResult) CandidateMovie {
	return CandidateMovie{
		CatalogID:   result.ID,
		Title:       firstNonEmpty(result.Title, result.OriginalTitle),
		Year:        releaseYear(result.ReleaseDate),
		ReleaseDate: result.ReleaseDate,
		Rating:      normalizeRating(result.VoteAverage),
		Genres:      genreNames(result.GenreIDs),
		Language:    result.OriginalLanguage,
		PosterURL:   imageURL(c.imageBaseURL, "w500", result.PosterPath),
		BackdropURL: imageURL(c.imageBaseURL, "w1280", result.BackdropPath),
		Synopsis:    result.Overview,
		IndustryTag: c.industry.Classify(result.OriginalLanguage, nil),
	}
}

// Details fetches the full record for catalogID: the movie itself, its
// credits and its videos, folded into one CandidateMovie. An id the catalog
// does not know returns ErrNotFound.
func (c *Client) Details(ctx context.Context, catalogID int64, language string) (*CandidateMovie, error) {
	if catalogID <= 0 {
		return nil, fmt.Errorf("%w: catalog id must be positive, got %d", ErrNotFound, catalogID)
	}
	language = c.languageOr(language)
	cacheKey := "details|" + language + "|" + strconv.FormatInt(catalogID, 10)
	if value, ok := c.cached(cacheKey); ok {
		if c.observer != nil {
			c.observer.CatalogCacheHit("details")
		}
		movie := value.(CandidateMovie)
		return cloneMovie(movie), nil
	}

	params := url.Values{}
	if language != "" {
		params.Set("language", language)
	}
	base := "/movie/" + strconv.FormatInt(catalogID, 10)

	var details movieDetails
	if err := c.getJSON(ctx, "movie", base, params, &details); err != nil {
		return nil, c.detailsFailed(catalogID, "movie", err)
	}
	var credits creditsResponse
	if err := c.getJSON(ctx, "credits", base+"/credits", params, &credits); err != nil {
		return nil, c.detailsFailed(catalogID, "credits", err)
	}
	var videos videosResponse
	if err := c.getJSON(ctx, "videos", base+"/videos", params, &videos); err != nil {
		return nil, c.detailsFailed(catalogID, "videos", err)
	}

	movie := c.fromDetails(details, credits, videos)
	c.store(cacheKey, movie)
	return cloneMovie(movie), nil
}

func (c *Client) detailsFailed(catalogID int64, part string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("movie %d: %w", catalogID, err)
	}
	c.logger.Warn("catalog details failed",
		logging.Any(logging.FieldCatalogID, catalogID),
		logging.String("part", part),
		logging.Error(err),
	)
	return fmt.Errorf("movie %d %s: %w", catalogID, part, err)
}

func (c *Client) fromDetails(details movieDetails, credits creditsResponse, videos videosResponse) CandidateMovie {
	genres := make([]string, 0, len(details.Genres))
	for _, genre := range details.Genres {
		if genre.Name != "" {
			genres = append(genres, genre.Name)
		}
	}
	countries := make([]string, 0, len(details.ProductionCountries))
	for _, country := range details.ProductionCountries {
		if code := strings.ToUpper(strings.TrimSpace(country.ISO31661)); code != "" {
			countries = append(countries, code)
		}
	}

	cast := make([]string, 0, c.castLimit)
	for _, member := range credits.Cast {
		if len(cast) == c.castLimit {
			break
		}
		if name := strings.TrimSpace(member.Name); name != "" {
			cast = append(cast, name)
		}
	}
	director := UnknownDirector
	for _, member := range credits.Crew {
		if member.Job == "Director" {
			director = member.Name
			break
		}
	}
	var trailer string
	for _, video := range videos.Results {
		if video.Type == "Trailer" && video.Site == "YouTube" && video.Key != "" {
			trailer = youtubeURL(video.Key)
			break
		}
	}

	return CandidateMovie{
		CatalogID:   details.ID,
		Title:       details.Title,
		Year:        releaseYear(details.ReleaseDate),
		ReleaseDate: details.ReleaseDate,
		Rating:      normalizeRating(details.VoteAverage),
		Genres:      genres,
		Language:    details.OriginalLanguage,
		Countries:   countries,
		PosterURL:   imageURL(c.imageBaseURL, "w500", details.PosterPath),
		BackdropURL: imageURL(c.imageBaseURL, "w1280", details.BackdropPath),
		Synopsis:    details.Overview,
		Director:    director,
		Cast:        cast,
		TrailerURL:  trailer,
		Runtime:     details.Runtime,
		IndustryTag: c.industry.Classify(details.OriginalLanguage, countries),
	}
}

func cloneMovie(movie CandidateMovie) *CandidateMovie {
	movie.Genres = slices.Clone(movie.Genres)
	movie.Countries = slices.Clone(movie.Countries)
	movie.Cast = slices.Clone(movie.Cast)
	return &movie
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
