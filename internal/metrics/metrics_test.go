package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, pair := range m.GetLabel() {
		got[pair.GetName()] = pair.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestCatalogMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.CatalogRequest("search", "ok", 120*time.Millisecond)
	c.CatalogRequest("search", "ok", 80*time.Millisecond)
	c.CatalogRequest("search", "rate_limited", 10*time.Millisecond)
	c.CatalogKeyRotated()
	c.CatalogCacheHit("details")

	ok := findMetric(t, reg, "filmwallaa_catalog_requests_total", map[string]string{"endpoint": "search", "outcome": "ok"})
	if v := ok.GetCounter().GetValue(); v != 2 {
		t.Errorf("ok requests = %v, want 2", v)
	}
	latency := findMetric(t, reg, "filmwallaa_catalog_request_duration_seconds", map[string]string{"endpoint": "search"})
	if n := latency.GetHistogram().GetSampleCount(); n != 3 {
		t.Errorf("latency samples = %d, want 3", n)
	}
	rotations := findMetric(t, reg, "filmwallaa_catalog_key_rotations_total", nil)
	if v := rotations.GetCounter().GetValue(); v != 1 {
		t.Errorf("rotations = %v, want 1", v)
	}
	hits := findMetric(t, reg, "filmwallaa_catalog_cache_hits_total", map[string]string{"kind": "details"})
	if v := hits.GetCounter().GetValue(); v != 1 {
		t.Errorf("cache hits = %v, want 1", v)
	}
}

func TestRunFinished(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RunFinished(OutcomeSuccess, 3*time.Second, 4, 1, 2)
	c.RunFinished(OutcomeFailed, time.Second, 9, 9, 9)

	mapped := findMetric(t, reg, "filmwallaa_migration_posts_total", map[string]string{"result": "mapped"})
	if v := mapped.GetCounter().GetValue(); v != 4 {
		t.Errorf("mapped = %v, want 4 (failed runs add nothing)", v)
	}
	failedRuns := findMetric(t, reg, "filmwallaa_migration_runs_total", map[string]string{"outcome": OutcomeFailed})
	if v := failedRuns.GetCounter().GetValue(); v != 1 {
		t.Errorf("failed runs = %v, want 1", v)
	}
	duration := findMetric(t, reg, "filmwallaa_migration_last_run_duration_seconds", nil)
	if v := duration.GetGauge().GetValue(); v != 1 {
		t.Errorf("last duration = %v, want 1", v)
	}
	success := findMetric(t, reg, "filmwallaa_migration_last_success_timestamp_seconds", nil)
	if success.GetGauge().GetValue() <= 0 {
		t.Error("last success timestamp not set")
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.CatalogKeyRotated()

	path := filepath.Join(t.TempDir(), "textfile", "filmwallaa.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "filmwallaa_catalog_key_rotations_total 1") {
		t.Fatalf("textfile missing rotation counter:\n%s", data)
	}

	if err := c.WriteTextfile(""); err != nil {
		t.Fatalf("empty path should be a no-op: %v", err)
	}
}
