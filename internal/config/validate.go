package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Catalog API keys are not
// required here; commands that query the catalog call RequireCatalogKeys.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateIndustry(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateMigration(); err != nil {
		return err
	}
	return nil
}

// RequireCatalogKeys reports an actionable error when no catalog API key is
// configured.
func (c *Config) RequireCatalogKeys() error {
	if len(c.Catalog.APIKeys) > 0 {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("catalog.api_keys is required. Set TMDB_API_KEYS/TMDB_API_KEY or edit %s (create with 'filmwallaa config init')", defaultPath)
}

func (c *Config) validateCatalog() error {
	if c.Catalog.RequestsPerSecond < 0 {
		return errors.New("catalog.requests_per_second must not be negative")
	}
	if c.Catalog.Concurrency > 32 {
		return errors.New("catalog.concurrency must be 32 or less")
	}
	if !strings.HasPrefix(c.Catalog.BaseURL, "http://") && !strings.HasPrefix(c.Catalog.BaseURL, "https://") {
		return fmt.Errorf("catalog.base_url must be an http(s) URL, got %q", c.Catalog.BaseURL)
	}
	return nil
}

func (c *Config) validateIndustry() error {
	for _, code := range append(append([]string(nil), c.Industry.NationalLanguages...), c.Industry.RegionalLanguages...) {
		if len(code) != 2 {
			return fmt.Errorf("industry: unrecognized language %q (use an ISO 639-1 code)", code)
		}
	}
	for _, code := range c.Industry.DomesticCountries {
		if len(code) != 2 {
			return fmt.Errorf("industry.domestic_countries: %q is not an ISO 3166-1 alpha-2 code", code)
		}
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.KeywordThreshold < 1 {
		return errors.New("extraction.keyword_threshold must be at least 1")
	}
	if c.Extraction.KeywordThreshold > len(c.Extraction.Keywords) {
		return fmt.Errorf("extraction.keyword_threshold (%d) exceeds the number of keywords (%d)",
			c.Extraction.KeywordThreshold, len(c.Extraction.Keywords))
	}
	return nil
}

func (c *Config) validateMigration() error {
	if c.Migration.FailedPreviewLimit < 0 {
		return errors.New("migration.failed_preview_limit must not be negative")
	}
	return nil
}
