package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filmwallaa/internal/config"
	"filmwallaa/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func readLog(t *testing.T, opts logging.Options, emit func(*testing.T, logging.Options)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.log")
	opts.OutputPaths = []string{path}
	emit(t, opts)
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	content := readLog(t, logging.Options{Format: "console", Level: "info"}, func(t *testing.T, opts logging.Options) {
		logger, err := logging.New(opts)
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		logging.NewComponentLogger(logger, "catalog").Info("search complete",
			logging.String("query", "jawan"), logging.Int("results", 3), logging.String("title", "two words"))
	})

	if !strings.Contains(content, " INFO catalog: search complete") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "query=jawan results=3") {
		t.Fatalf("expected key=value fields, got %q", content)
	}
	if !strings.Contains(content, `title="two words"`) {
		t.Fatalf("expected quoted value, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	content := readLog(t, logging.Options{Format: "console", Level: "debug"}, func(t *testing.T, opts logging.Options) {
		logger, err := logging.New(opts)
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		logger.Info("message with caller")
	})
	if !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerRenamesKeys(t *testing.T) {
	content := readLog(t, logging.Options{Format: "json", Level: "info"}, func(t *testing.T, opts logging.Options) {
		logger, err := logging.New(opts)
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		logger.Warn("json message", logging.String("k", "v"))
	})

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	if entry["level"] != "warn" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if entry["k"] != "v" {
		t.Fatalf("expected k=v, got %v", entry)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	content := readLog(t, logging.Options{Format: "console", Level: "invalid"}, func(t *testing.T, opts logging.Options) {
		logger, err := logging.New(opts)
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		logger.Debug("hidden")
		logger.Info("visible")
	})
	if strings.Contains(content, "hidden") || !strings.Contains(content, "visible") {
		t.Fatalf("expected invalid level to behave as info, got %q", content)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	content := readLog(t, logging.Options{Format: "console", Level: "info"}, func(t *testing.T, opts logging.Options) {
		logger, err := logging.New(opts)
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		ctx := logging.WithRunID(context.Background(), "run-123")
		logging.WithContext(ctx, logger).Info("contextual log")
		logging.WithContext(context.Background(), logger).Info("bare log")
	})

	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), content)
	}
	if !strings.Contains(lines[0], "run_id=run-123") {
		t.Fatalf("expected run_id field, got %q", lines[0])
	}
	if strings.Contains(lines[1], "run_id") {
		t.Fatalf("expected no run_id without context value, got %q", lines[1])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 100) {
		t.Fatal("expected nop logger to be disabled")
	}
	logging.NewComponentLogger(nil, "x").Info("ignored")
}
