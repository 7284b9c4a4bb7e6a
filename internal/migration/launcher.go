package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"filmwallaa/internal/logging"
)

// ErrRunInProgress reports that another migration run holds the lock.
var ErrRunInProgress = errors.New("a migration run is already in progress")

// Runner executes one migration.
type Runner interface {
	Run(ctx context.Context, source string) (*Report, error)
}

// Launcher starts migration runs in the background, one at a time.
type Launcher struct {
	runner   Runner
	logger   *slog.Logger
	lockPath string
	lock     *flock.Flock

	running atomic.Bool

	mu      sync.Mutex
	done    chan struct{}
	cancel  context.CancelFunc
	last    *Report
	lastErr error
}

// Status describes the launcher state.
type Status struct {
	Running      bool    `json:"running"`
	LockFilePath string  `json:"lock_file"`
	LastReport   *Report `json:"last_report,omitempty"`
}

// NewLauncher constructs a launcher guarding runs with a lock at lockPath.
func NewLauncher(runner Runner, lockPath string, logger *slog.Logger) (*Launcher, error) {
	if runner == nil {
		return nil, errors.New("launcher requires a runner")
	}
	if lockPath == "" {
		return nil, errors.New("launcher requires a lock path")
	}
	return &Launcher{
		runner:   runner,
		logger:   logging.NewComponentLogger(logger, "launcher"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start launches a run against source and returns immediately. It fails
// with ErrRunInProgress while this or another process is running.
func (l *Launcher) Start(ctx context.Context, source string) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	if err := os.MkdirAll(filepath.Dir(l.lockPath), 0o755); err != nil {
		l.running.Store(false)
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		l.running.Store(false)
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		l.running.Store(false)
		return ErrRunInProgress
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.mu.Lock()
	l.done = done
	l.cancel = cancel
	l.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		report, err := l.runner.Run(runCtx, source)

		if unlockErr := l.lock.Unlock(); unlockErr != nil {
			l.logger.Warn("failed to release migration lock",
				logging.String("lock", l.lockPath),
				logging.Error(unlockErr),
			)
		}
		l.mu.Lock()
		l.last = report
		l.lastErr = err
		l.cancel = nil
		l.mu.Unlock()
		l.running.Store(false)
	}()

	l.logger.Info("migration launched", logging.String("source", source), logging.String("lock", l.lockPath))
	return nil
}

// Wait blocks until the current run finishes or ctx is done, then returns
// the most recent report and error. Without a started run it returns the
// previous outcome, if any.
func (l *Launcher) Wait(ctx context.Context) (*Report, error) {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.lastErr
}

// Cancel asks the current run to stop between posts.
func (l *Launcher) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Status returns the launcher state.
func (l *Launcher) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Status{
		Running:      l.running.Load(),
		LockFilePath: l.lockPath,
		LastReport:   l.last,
	}
}

// LockHeld reports whether any process currently holds the migration lock
// at lockPath.
func LockHeld(lockPath string) (bool, error) {
	if _, err := os.Stat(lockPath); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	probe := flock.New(lockPath)
	ok, err := probe.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe lock: %w", err)
	}
	if ok {
		_ = probe.Unlock()
		return false, nil
	}
	return true, nil
}
