package config

import (
	"fmt"
	"os"
	"strings"

	"filmwallaa/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeIndustry()
	c.normalizeExtraction()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ExportPath, err = expandPath(strings.TrimSpace(c.Paths.ExportPath)); err != nil {
		return fmt.Errorf("paths.export_path: %w", err)
	}
	if c.Paths.MetricsTextfile, err = expandPath(strings.TrimSpace(c.Paths.MetricsTextfile)); err != nil {
		return fmt.Errorf("paths.metrics_textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	if len(c.Catalog.APIKeys) == 0 {
		if value := strings.TrimSpace(os.Getenv("TMDB_API_KEYS")); value != "" {
			c.Catalog.APIKeys = strings.Split(value, ",")
		} else if value := strings.TrimSpace(os.Getenv("TMDB_API_KEY")); value != "" {
			c.Catalog.APIKeys = []string{value}
		}
	}
	c.Catalog.APIKeys = compactStrings(c.Catalog.APIKeys, strings.TrimSpace)

	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	c.Catalog.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.ImageBaseURL), "/")
	if c.Catalog.ImageBaseURL == "" {
		c.Catalog.ImageBaseURL = defaultCatalogImageURL
	}
	c.Catalog.Language = strings.TrimSpace(c.Catalog.Language)
	if c.Catalog.Language == "" {
		c.Catalog.Language = defaultCatalogLanguage
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		c.Catalog.TimeoutSeconds = defaultCatalogTimeout
	}
	if c.Catalog.Burst <= 0 {
		c.Catalog.Burst = defaultCatalogBurst
	}
	if c.Catalog.Concurrency <= 0 {
		c.Catalog.Concurrency = 1
	}
	if c.Catalog.CacheTTLSeconds < 0 {
		c.Catalog.CacheTTLSeconds = 0
	}
	if c.Catalog.MaxResults <= 0 {
		c.Catalog.MaxResults = defaultCatalogMaxResults
	}
	if c.Catalog.CastLimit <= 0 {
		c.Catalog.CastLimit = defaultCatalogCastLimit
	}
}

func (c *Config) normalizeIndustry() {
	c.Industry.NationalLanguages = language.NormalizeList(c.Industry.NationalLanguages)
	c.Industry.RegionalLanguages = language.NormalizeList(c.Industry.RegionalLanguages)
	c.Industry.DomesticCountries = compactStrings(c.Industry.DomesticCountries, strings.ToUpper)
	if strings.TrimSpace(c.Industry.RegionalLabel) == "" {
		c.Industry.RegionalLabel = defaultRegionalLabel
	}
	if strings.TrimSpace(c.Industry.NationalLabel) == "" {
		c.Industry.NationalLabel = defaultNationalLabel
	}
	if strings.TrimSpace(c.Industry.InternationalLabel) == "" {
		c.Industry.InternationalLabel = defaultInternationalLabel
	}
}

func (c *Config) normalizeExtraction() {
	keywords := make([]string, 0, len(c.Extraction.Keywords))
	for _, keyword := range c.Extraction.Keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	if len(keywords) == 0 {
		keywords = append(keywords, DefaultKeywords...)
	}
	c.Extraction.Keywords = keywords
	if c.Extraction.ExcerptMaxLength <= 0 {
		c.Extraction.ExcerptMaxLength = defaultExcerptMaxLength
	}
	if c.Extraction.WordsPerMinute <= 0 {
		c.Extraction.WordsPerMinute = defaultWordsPerMinute
	}
	c.Extraction.DefaultAuthor = strings.TrimSpace(c.Extraction.DefaultAuthor)
	c.Extraction.PlaceholderImage = strings.TrimSpace(c.Extraction.PlaceholderImage)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func compactStrings(values []string, canonical func(string) string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = canonical(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
