package testsupport

import (
	"path/filepath"
	"testing"

	"filmwallaa/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Catalog pacing and caching are disabled so tests hit fake servers directly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ExportPath = filepath.Join(base, "export.xml")
	cfgVal.Catalog.APIKeys = []string{"test"}
	cfgVal.Catalog.RequestsPerSecond = 0
	cfgVal.Catalog.CacheTTLSeconds = 0
	cfgVal.Catalog.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKeys sets the catalog credential keys on the test config.
func WithAPIKeys(keys ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.APIKeys = append([]string(nil), keys...)
	}
}

// WithCatalogURL points the catalog client at a test server.
func WithCatalogURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.BaseURL = baseURL
	}
}

// WithConcurrency overrides the catalog worker count.
func WithConcurrency(workers int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Concurrency = workers
	}
}

// WithSkipExisting toggles re-run dedupe.
func WithSkipExisting(skip bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Migration.SkipExisting = skip
	}
}

// WithMetricsTextfile enables the Prometheus textfile export under the test dir.
func WithMetricsTextfile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.MetricsTextfile = filepath.Join(b.baseDir, name)
	}
}
