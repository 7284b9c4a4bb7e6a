package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"filmwallaa/internal/config"
	"filmwallaa/internal/logging"
)

// Searcher is the catalog contract the matcher and review workflow rely on.
type Searcher interface {
	Search(ctx context.Context, title, language string) ([]CandidateMovie, error)
	Details(ctx context.Context, catalogID int64, language string) (*CandidateMovie, error)
}

// Observer receives catalog activity, typically for metrics.
type Observer interface {
	CatalogRequest(endpoint, outcome string, latency time.Duration)
	CatalogKeyRotated()
	CatalogCacheHit(kind string)
}

// Client provides access to the TMDB API.
type Client struct {
	baseURL      string
	imageBaseURL string
	language     string
	maxResults   int
	castLimit    int
	industry     IndustryRules
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
	observer     Observer

	keyMu    sync.Mutex
	keys     []string
	keyIndex int

	cacheMu  sync.Mutex
	cache    map[string]cacheEntry
	cacheTTL time.Duration
	now      func() time.Time
}

type cacheEntry struct {
	value   any
	expires time.Time
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLanguage sets the language used when a call passes none.
func WithLanguage(language string) Option {
	return func(c *Client) { c.language = strings.TrimSpace(language) }
}

// WithImageBaseURL sets the image CDN root used for poster and backdrop URLs.
func WithImageBaseURL(base string) Option {
	return func(c *Client) { c.imageBaseURL = strings.TrimRight(strings.TrimSpace(base), "/") }
}

// WithRateLimit paces requests to rps with the given burst. Zero rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCacheTTL sets how long search and detail results are reused. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// WithMaxResults caps the number of search candidates returned.
func WithMaxResults(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithCastLimit caps the number of cast names in details.
func WithCastLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.castLimit = n
		}
	}
}

// WithIndustryRules replaces the industry classification rules.
func WithIndustryRules(rules IndustryRules) Option {
	return func(c *Client) { c.industry = rules }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logging.NewComponentLogger(logger, "catalog") }
}

// WithObserver registers an activity observer.
func WithObserver(observer Observer) Option {
	return func(c *Client) { c.observer = observer }
}

// New creates a TMDB client using keys in rotation order.
func New(keys []string, baseURL string, opts ...Option) (*Client, error) {
	cleaned := make([]string, 0, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			cleaned = append(cleaned, key)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: "https://image.tmdb.org/t/p",
		language:     "en-US",
		maxResults:   20,
		castLimit:    5,
		industry:     DefaultIndustryRules(),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		limiter:      rate.NewLimiter(rate.Inf, 0),
		logger:       logging.NewComponentLogger(nil, "catalog"),
		keys:         cleaned,
		cache:        make(map[string]cacheEntry),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig creates a client from the [catalog] and [industry] sections.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second}),
		WithLanguage(cfg.Catalog.Language),
		WithImageBaseURL(cfg.Catalog.ImageBaseURL),
		WithRateLimit(cfg.Catalog.RequestsPerSecond, cfg.Catalog.Burst),
		WithCacheTTL(time.Duration(cfg.Catalog.CacheTTLSeconds) * time.Second),
		WithMaxResults(cfg.Catalog.MaxResults),
		WithCastLimit(cfg.Catalog.CastLimit),
		WithIndustryRules(IndustryRulesFromConfig(cfg.Industry)),
		WithLogger(logger),
	}
	return New(cfg.Catalog.APIKeys, cfg.Catalog.BaseURL, append(base, opts...)...)
}

// KeyCount reports how many API keys are in rotation.
func (c *Client) KeyCount() int {
	return len(c.keys)
}

func (c *Client) currentKey() (string, int) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	return c.keys[c.keyIndex], c.keyIndex
}

// rotateFrom advances past the key at index used. When another goroutine
// already rotated away from it the index is left alone.
func (c *Client) rotateFrom(used int) bool {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	if c.keyIndex != used {
		return false
	}
	c.keyIndex = (c.keyIndex + 1) % len(c.keys)
	return true
}

// getJSON performs a GET against the catalog, rotating keys once on 429.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	key, index := c.currentKey()
	err := c.fetch(ctx, endpoint, path, params, key, out)
	if !errors.Is(err, errRateLimited) {
		return err
	}

	if c.rotateFrom(index) {
		c.logger.Info("catalog key rate limited, rotating",
			logging.String("endpoint", endpoint),
			logging.Int("key_index", index),
		)
		if c.observer != nil {
			c.observer.CatalogKeyRotated()
		}
	}
	key, _ = c.currentKey()
	return c.fetch(ctx, endpoint, path, params, key, out)
}

func (c *Client) fetch(ctx context.Context, endpoint, path string, params url.Values, key string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: wait for rate limiter: %w", ErrUnavailable, err)
	}

	target, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	query := url.Values{}
	for name, values := range params {
		query[name] = values
	}
	query.Set("api_key", key)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		c.observe(endpoint, "error", latency)
		return fmt.Errorf("%w: execute request (latency=%v): %w", ErrUnavailable, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Latency: latency}
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			c.observe(endpoint, "rate_limited", latency)
		case http.StatusNotFound:
			c.observe(endpoint, "not_found", latency)
		default:
			c.observe(endpoint, "error", latency)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.observe(endpoint, "error", latency)
		return fmt.Errorf("%w: decode %s response: %w", ErrUnavailable, endpoint, err)
	}
	c.observe(endpoint, "ok", latency)
	return nil
}

func (c *Client) observe(endpoint, outcome string, latency time.Duration) {
	if c.observer != nil {
		c.observer.CatalogRequest(endpoint, outcome, latency)
	}
}

func (c *Client) cached(key string) (any, bool) {
	if c.cacheTTL <= 0 {
		return nil, false
	}
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	entry, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.cache, key)
		return nil, false
	}
	return entry.value, true
}

func (c *Client) store(key string, value any) {
	if c.cacheTTL <= 0 {
		return
	}
	c.cacheMu.Lock()
	c.cache[key] = cacheEntry{value: value, expires: c.now().Add(c.cacheTTL)}
	c.cacheMu.Unlock()
}

func (c *Client) languageOr(language string) string {
	if language = strings.TrimSpace(language); language != "" {
		return language
	}
	return c.language
}
