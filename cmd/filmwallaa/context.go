package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"filmwallaa/internal/catalog"
	"filmwallaa/internal/config"
	"filmwallaa/internal/export"
	"filmwallaa/internal/logging"
	"filmwallaa/internal/matcher"
	"filmwallaa/internal/metrics"
	"filmwallaa/internal/migration"
	"filmwallaa/internal/review"
	"filmwallaa/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	servicesOnce sync.Once
	services     *services
	servicesErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// services holds the long-lived collaborators shared by every subcommand.
// The catalog client is built on first use so commands that never query the
// catalog run without API keys.
type services struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	registry *prometheus.Registry
	metrics  *metrics.Collector

	catalogOnce   sync.Once
	catalogClient *catalog.Client
	catalogErr    error
}

func (c *commandContext) ensureServices() (*services, error) {
	c.servicesOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.servicesErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.servicesErr = fmt.Errorf("init logging: %w", err)
			return
		}
		st, err := store.Open(cfg)
		if err != nil {
			c.servicesErr = fmt.Errorf("open store: %w", err)
			return
		}
		registry := prometheus.NewRegistry()
		c.services = &services{
			cfg:      cfg,
			logger:   logger,
			store:    st,
			registry: registry,
			metrics:  metrics.NewCollector(registry),
		}
	})
	return c.services, c.servicesErr
}

func (c *commandContext) close() {
	if c.services != nil && c.services.store != nil {
		_ = c.services.store.Close()
	}
}

// catalog returns the shared catalog client, building it on first call.
func (s *services) catalog() (*catalog.Client, error) {
	s.catalogOnce.Do(func() {
		if err := s.cfg.RequireCatalogKeys(); err != nil {
			s.catalogErr = err
			return
		}
		client, err := catalog.NewFromConfig(s.cfg, s.logger, catalog.WithObserver(s.metrics))
		if err != nil {
			s.catalogErr = fmt.Errorf("init catalog: %w", err)
			return
		}
		s.catalogClient = client
	})
	return s.catalogClient, s.catalogErr
}

// lazyCatalog defers building the catalog client until a lookup is made.
type lazyCatalog struct {
	services *services
}

func (l lazyCatalog) Search(ctx context.Context, title, language string) ([]catalog.CandidateMovie, error) {
	client, err := l.services.catalog()
	if err != nil {
		return nil, err
	}
	return client.Search(ctx, title, language)
}

func (l lazyCatalog) Details(ctx context.Context, catalogID int64, language string) (*catalog.CandidateMovie, error) {
	client, err := l.services.catalog()
	if err != nil {
		return nil, err
	}
	return client.Details(ctx, catalogID, language)
}

func (s *services) reviewService() *review.Service {
	return review.NewService(s.store, lazyCatalog{services: s}, s.logger, review.WithLanguage(s.cfg.Catalog.Language))
}

func (s *services) migrator() (*migration.Migrator, error) {
	client, err := s.catalog()
	if err != nil {
		return nil, err
	}
	return migration.New(s.cfg, migration.Deps{
		Extractor: export.New(s.cfg.Extraction, s.logger),
		Matcher:   matcher.New(client, s.cfg.Catalog.Language, s.logger),
		Store:     s.store,
		Logger:    s.logger,
		Observer:  s.metrics,
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
