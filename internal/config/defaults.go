package config

const (
	defaultConfigPath         = "~/.config/filmwallaa/config.toml"
	defaultDataDir            = "~/.local/share/filmwallaa"
	defaultLogDir             = "~/.local/share/filmwallaa/logs"
	defaultExportPath         = "wordpress_export.xml"
	defaultCatalogBaseURL     = "https://api.themoviedb.org/3"
	defaultCatalogImageURL    = "https://image.tmdb.org/t/p"
	defaultCatalogLanguage    = "en-US"
	defaultCatalogTimeout     = 10
	defaultCatalogRPS         = 4.0
	defaultCatalogBurst       = 4
	defaultCatalogConcurrency = 4
	defaultCatalogCacheTTL    = 600
	defaultCatalogMaxResults  = 20
	defaultCatalogCastLimit   = 5
	defaultKeywordThreshold   = 3
	defaultExcerptMaxLength   = 200
	defaultWordsPerMinute     = 200
	defaultAuthor             = "Gaurang Bookseller"
	defaultPlaceholderImage   = "https://images.unsplash.com/photo-1489599735429-c1fdf66d61e1?w=800&h=400&fit=crop&q=80"
	defaultFailedPreview      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultRegionalLabel      = "South Indian"
	defaultNationalLabel      = "Bollywood"
	defaultInternationalLabel = "International"
)

// DefaultKeywords is the review-domain vocabulary used to classify posts.
var DefaultKeywords = []string{
	"movie", "film", "review", "cinema", "bollywood",
	"hollywood", "director", "actor", "actress", "cast",
	"screenplay", "plot", "story", "thriller", "drama",
	"comedy", "action", "rating", "oscar", "box office",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			ExportPath: defaultExportPath,
		},
		Catalog: Catalog{
			BaseURL:           defaultCatalogBaseURL,
			ImageBaseURL:      defaultCatalogImageURL,
			Language:          defaultCatalogLanguage,
			TimeoutSeconds:    defaultCatalogTimeout,
			RequestsPerSecond: defaultCatalogRPS,
			Burst:             defaultCatalogBurst,
			Concurrency:       defaultCatalogConcurrency,
			CacheTTLSeconds:   defaultCatalogCacheTTL,
			MaxResults:        defaultCatalogMaxResults,
			CastLimit:         defaultCatalogCastLimit,
		},
		Industry: Industry{
			NationalLanguages:  []string{"hi"},
			RegionalLanguages:  []string{"ta", "te", "kn", "ml"},
			DomesticCountries:  []string{"IN"},
			RegionalLabel:      defaultRegionalLabel,
			NationalLabel:      defaultNationalLabel,
			InternationalLabel: defaultInternationalLabel,
		},
		Extraction: Extraction{
			Keywords:         append([]string(nil), DefaultKeywords...),
			KeywordThreshold: defaultKeywordThreshold,
			ExcerptMaxLength: defaultExcerptMaxLength,
			WordsPerMinute:   defaultWordsPerMinute,
			DefaultAuthor:    defaultAuthor,
			PlaceholderImage: defaultPlaceholderImage,
		},
		Migration: Migration{
			SkipExisting:       true,
			FailedPreviewLimit: defaultFailedPreview,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
