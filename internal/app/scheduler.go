package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// ErrSchedulerRunning is returned by StartPeriodic when a schedule is active.
var ErrSchedulerRunning = errors.New("periodic sync already running")

// SchedulerConfig configures periodic sync.
type SchedulerConfig struct {
	Clock ports.Clock

	// Interval is used by Run. StartPeriodic takes its own interval.
	Interval time.Duration

	// RunOnStart triggers a sync immediately instead of waiting one interval.
	RunOnStart bool

	Logger *slog.Logger
}

// Scheduler drives SyncService.SyncOnce on a fixed interval.
type Scheduler struct {
	sync       *SyncService
	clock      ports.Clock
	interval   time.Duration
	runOnStart bool
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler for svc.
func NewScheduler(svc *SyncService, cfg SchedulerConfig) *Scheduler {
	if svc == nil {
		panic("Scheduler: SyncService is required")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		sync:       svc,
		clock:      clock,
		interval:   cfg.Interval,
		runOnStart: cfg.RunOnStart,
		logger:     logger.With(slog.String("component", "app.Scheduler")),
	}
}

// StartPeriodic starts syncing every interval until StopPeriodic is called
// or ctx is canceled.
func (s *Scheduler) StartPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return domain.NewValidationErrorWithValue("interval", "must be positive", interval.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrSchedulerRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.cancel = cancel
	s.done = done
	s.sync.setPeriodic(true, interval)

	ticker := s.clock.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		s.loop(loopCtx, ticker)
	}()

	s.logger.InfoContext(ctx, "periodic sync started",
		slog.Duration("interval", interval),
		slog.Bool("run_on_start", s.runOnStart),
	)

	return nil
}

func (s *Scheduler) loop(ctx context.Context, ticker ports.Ticker) {
	// Runs outlive the schedule so a stop never interrupts a merge mid-flight.
	runCtx := context.WithoutCancel(ctx)

	if s.runOnStart {
		s.tick(runCtx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}

			s.tick(runCtx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	summary := s.sync.SyncOnce(ctx)

	s.logger.DebugContext(ctx, "scheduled sync finished", slog.String("status", string(summary.Status)))
}

// StopPeriodic stops future ticks and waits for any in-flight run to finish.
// It is a no-op when no schedule is active.
func (s *Scheduler) StopPeriodic() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	if cancel == nil {
		s.mu.Unlock()
		return
	}

	// Cleared under the lock so a schedule started while this one drains
	// keeps its own state.
	s.cancel, s.done = nil, nil
	s.sync.setPeriodic(false, 0)
	s.mu.Unlock()

	cancel()
	<-done

	s.logger.Info("periodic sync stopped")
}

// Running reports whether a schedule is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancel != nil
}

// Run starts the configured schedule and blocks until ctx is canceled.
// A non-positive interval disables scheduling and Run just waits.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.InfoContext(ctx, "periodic sync disabled")
		<-ctx.Done()

		return nil
	}

	if err := s.StartPeriodic(ctx, s.interval); err != nil {
		return err
	}

	<-ctx.Done()
	s.StopPeriodic()

	return nil
}
