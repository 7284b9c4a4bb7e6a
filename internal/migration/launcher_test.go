package migration_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"filmwallaa/internal/logging"
	"filmwallaa/internal/migration"
)

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{release: make(chan struct{}), started: make(chan struct{})}
}

func waitStarted(t *testing.T, runner *blockingRunner) {
	t.Helper()
	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not start")
	}
}

func TestLauncherSingleRun(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "data", "migration.lock")
	runner := newBlockingRunner()
	launcher, err := migration.NewLauncher(runner, lockPath, logging.NewNop())
	if err != nil {
		t.Fatalf("NewLauncher: %v", err)
	}
	ctx := context.Background()

	if err := launcher.Start(ctx, "export.xml"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitStarted(t, runner)

	if err := launcher.Start(ctx, "export.xml"); !errors.Is(err, migration.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	held, err := migration.LockHeld(lockPath)
	if err != nil {
		t.Fatalf("LockHeld: %v", err)
	}
	if !held {
		t.Fatal("lock should be held during a run")
	}
	if !launcher.Status().Running {
		t.Fatal("status should report running")
	}

	other, err := migration.NewLauncher(newBlockingRunner(), lockPath, logging.NewNop())
	if err != nil {
		t.Fatalf("NewLauncher: %v", err)
	}
	if err := other.Start(ctx, "export.xml"); !errors.Is(err, migration.ErrRunInProgress) {
		t.Fatalf("second launcher should see the lock, got %v", err)
	}

	close(runner.release)
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	report, err := launcher.Wait(waitCtx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !report.Succeeded() {
		t.Fatalf("unexpected report: %+v", report)
	}

	held, err = migration.LockHeld(lockPath)
	if err != nil {
		t.Fatalf("LockHeld: %v", err)
	}
	if held {
		t.Fatal("lock should be released after the run")
	}
	if status := launcher.Status(); status.Running || status.LastReport == nil {
		t.Fatalf("unexpected status after run: %+v", status)
	}
}

func TestLauncherCancel(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "migration.lock")
	runner := newBlockingRunner()
	launcher, err := migration.NewLauncher(runner, lockPath, logging.NewNop())
	if err != nil {
		t.Fatalf("NewLauncher: %v", err)
	}
	if err := launcher.Start(context.Background(), "export.xml"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitStarted(t, runner)
	launcher.Cancel()

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	report, err := launcher.Wait(waitCtx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Status != migration.StatusCancelled {
		t.Fatalf("status = %q", report.Status)
	}
}

func TestLockHeldWithoutFile(t *testing.T) {
	held, err := migration.LockHeld(filepath.Join(t.TempDir(), "missing.lock"))
	if err != nil || held {
		t.Fatalf("LockHeld = %v, %v", held, err)
	}
}
