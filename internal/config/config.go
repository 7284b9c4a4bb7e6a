package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	DataDir         string `toml:"data_dir"`
	LogDir          string `toml:"log_dir"`
	ExportPath      string `toml:"export_path"`
	MetricsTextfile string `toml:"metrics_textfile"`
}

// Catalog contains configuration for the movie metadata catalog (TMDB API v3).
type Catalog struct {
	APIKeys           []string `toml:"api_keys"`
	BaseURL           string   `toml:"base_url"`
	ImageBaseURL      string   `toml:"image_base_url"`
	Language          string   `toml:"language"`
	TimeoutSeconds    int      `toml:"timeout_seconds"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Burst             int      `toml:"burst"`
	Concurrency       int      `toml:"concurrency"`
	CacheTTLSeconds   int      `toml:"cache_ttl_seconds"`
	MaxResults        int      `toml:"max_results"`
	CastLimit         int      `toml:"cast_limit"`
}

// Industry contains the rule used to tag catalog movies with a production
// industry. Deployments outside the default market override these lists.
type Industry struct {
	NationalLanguages  []string `toml:"national_languages"`
	RegionalLanguages  []string `toml:"regional_languages"`
	DomesticCountries  []string `toml:"domestic_countries"`
	RegionalLabel      string   `toml:"regional_label"`
	NationalLabel      string   `toml:"national_label"`
	InternationalLabel string   `toml:"international_label"`
}

// Extraction contains settings for reading the blog export.
type Extraction struct {
	Keywords         []string `toml:"keywords"`
	KeywordThreshold int      `toml:"keyword_threshold"`
	ExcerptMaxLength int      `toml:"excerpt_max_length"`
	WordsPerMinute   int      `toml:"words_per_minute"`
	DefaultAuthor    string   `toml:"default_author"`
	PlaceholderImage string   `toml:"placeholder_image"`
}

// Migration contains settings for the orchestrated batch run.
type Migration struct {
	SkipExisting       bool `toml:"skip_existing"`
	FailedPreviewLimit int  `toml:"failed_preview_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for filmwallaa.
//
// Configuration sections by subsystem:
//   - Paths: database/log directories, default export file, metrics textfile
//   - Catalog: metadata catalog credentials, pacing, and caching
//   - Industry: industry tag classification rule
//   - Extraction: review classification and derived-field settings
//   - Migration: batch run behaviour
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Catalog    Catalog    `toml:"catalog"`
	Industry   Industry   `toml:"industry"`
	Extraction Extraction `toml:"extraction"`
	Migration  Migration  `toml:"migration"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("filmwallaa.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "filmwallaa.db")
}

// LockPath returns the migration run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "migration.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration to path, creating parent
// directories. An existing file is left untouched.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
