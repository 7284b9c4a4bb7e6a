// Package metrics collects Prometheus metrics for catalog traffic and
// migration runs, and exports them to a node_exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "filmwallaa"

// Collector records catalog and migration activity. It satisfies
// catalog.Observer and migration.RunObserver.
type Collector struct {
	gatherer prometheus.Gatherer

	catalogRequests *prometheus.CounterVec
	catalogLatency  *prometheus.HistogramVec
	keyRotations    prometheus.Counter
	cacheHits       *prometheus.CounterVec

	runs            *prometheus.CounterVec
	posts           *prometheus.CounterVec
	lastRunDuration prometheus.Gauge
	lastSuccess     prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics on reg. When
// reg is also a Gatherer it is used by WriteTextfile.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		catalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog HTTP requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		catalogLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Catalog request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		keyRotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_key_rotations_total",
			Help:      "Credential rotations after rate-limit responses.",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_hits_total",
			Help:      "Catalog responses served from cache.",
		}, []string{"kind"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_runs_total",
			Help:      "Migration runs by outcome.",
		}, []string{"outcome"}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_posts_total",
			Help:      "Posts processed by migration runs, by result.",
		}, []string{"result"}),
		lastRunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "migration_last_run_duration_seconds",
			Help:      "Duration of the most recent migration run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "migration_last_success_timestamp_seconds",
			Help:      "Unix time of the most recent successful migration run.",
		}),
	}

	reg.MustRegister(
		c.catalogRequests,
		c.catalogLatency,
		c.keyRotations,
		c.cacheHits,
		c.runs,
		c.posts,
		c.lastRunDuration,
		c.lastSuccess,
	)
	if gatherer, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = gatherer
	}
	return c
}

// CatalogRequest records one catalog HTTP exchange.
func (c *Collector) CatalogRequest(endpoint, outcome string, latency time.Duration) {
	c.catalogRequests.WithLabelValues(endpoint, outcome).Inc()
	c.catalogLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// CatalogKeyRotated records a credential rotation.
func (c *Collector) CatalogKeyRotated() {
	c.keyRotations.Inc()
}

// CatalogCacheHit records a cached catalog response.
func (c *Collector) CatalogCacheHit(kind string) {
	c.cacheHits.WithLabelValues(kind).Inc()
}

// RunFinished records the outcome of a migration run. Post counts are only
// added for successful runs.
func (c *Collector) RunFinished(outcome string, duration time.Duration, mapped, failed, skipped int) {
	c.runs.WithLabelValues(outcome).Inc()
	c.lastRunDuration.Set(duration.Seconds())
	if outcome != OutcomeSuccess {
		return
	}
	c.posts.WithLabelValues("mapped").Add(float64(mapped))
	c.posts.WithLabelValues("failed").Add(float64(failed))
	c.posts.WithLabelValues("skipped").Add(float64(skipped))
	c.lastSuccess.SetToCurrentTime()
}

// Run outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// WriteTextfile writes every gathered metric to path atomically. An empty
// path is a no-op.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if c.gatherer == nil {
		return fmt.Errorf("write metrics textfile: registry is not a gatherer")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
