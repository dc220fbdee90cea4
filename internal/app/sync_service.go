package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
	"github.com/jsamuelsen/quote-manager/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// SyncState is the process-wide view of synchronization.
type SyncState struct {
	LastSyncAt  time.Time           `json:"lastSyncAt,omitzero"`
	LastStatus  domain.SyncStatus   `json:"lastStatus,omitempty"`
	LastSummary *domain.SyncSummary `json:"lastSummary,omitempty"`
	InProgress  bool                `json:"inProgress"`
	Periodic    bool                `json:"periodic"`
	Interval    time.Duration       `json:"interval,omitempty"`
}

// SyncServiceConfig contains the dependencies of the sync service.
type SyncServiceConfig struct {
	Store  *QuoteStore
	Remote ports.RemoteQuotes

	// Notifier receives every summary, including already_syncing ones.
	Notifier ports.SyncNotifier

	// PushEnabled sends the merged collection back to the remote.
	PushEnabled bool

	Clock    ports.Clock
	NewRunID func() string
	Logger   *slog.Logger
}

// SyncService reconciles the local collection with the remote source.
// At most one attempt runs at a time.
type SyncService struct {
	store       *QuoteStore
	remote      ports.RemoteQuotes
	notifier    ports.SyncNotifier
	pushEnabled bool
	clock       ports.Clock
	newRunID    func() string
	logger      *slog.Logger

	running atomic.Bool

	mu       sync.RWMutex
	last     *domain.SyncSummary
	periodic bool
	interval time.Duration
}

// NewSyncService creates a sync service. Store and Remote are required.
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	if cfg.Store == nil || cfg.Remote == nil {
		panic("SyncService: Store and Remote are required")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	newRunID := cfg.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = ports.SyncNotifiers{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SyncService{
		store:       cfg.Store,
		remote:      cfg.Remote,
		notifier:    notifier,
		pushEnabled: cfg.PushEnabled,
		clock:       clock,
		newRunID:    newRunID,
		logger:      logger.With(slog.String("component", "app.SyncService")),
	}
}

// SyncOnce runs one fetch → reconcile → persist → push attempt.
//
// It never returns an error and never panics; the outcome is in the summary.
// A call made while another attempt is in flight returns immediately with
// status already_syncing and does not contact the remote.
func (s *SyncService) SyncOnce(ctx context.Context) domain.SyncSummary {
	startedAt := s.clock.Now()

	if !s.running.CompareAndSwap(false, true) {
		summary := domain.SyncSummary{
			Status:     domain.SyncStatusAlreadySyncing,
			StartedAt:  startedAt,
			FinishedAt: startedAt,
		}

		logging.FromContextOr(ctx, s.logger).InfoContext(ctx, "sync skipped, another run is in progress")
		s.notify(ctx, summary)

		return summary
	}
	defer s.running.Store(false)

	runID := s.newRunID()
	ctx = logging.WithSyncRunID(logging.WithContext(ctx, logging.FromContextOr(ctx, s.logger)), runID)
	ctx, span := telemetry.StartSpan(ctx, "sync.run", attribute.String("sync.run_id", runID))
	logger := logging.FromContext(ctx)

	summary := domain.SyncSummary{StartedAt: startedAt}

	func() {
		defer func() {
			if r := recover(); r != nil {
				s.fail(&summary, fmt.Errorf("%w: %v", ErrStepPanic, r))
			}
		}()

		s.run(ctx, logger, &summary)
	}()

	summary.FinishedAt = s.clock.Now()
	summary.Duration = summary.FinishedAt.Sub(summary.StartedAt)

	s.mu.Lock()
	last := summary
	s.last = &last
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("sync.status", string(summary.Status)),
		attribute.Int("sync.fetched", summary.Fetched),
		attribute.Int("sync.added", summary.Added),
		attribute.Int("sync.updated", summary.Updated),
	)

	var spanErr error
	if summary.Status != domain.SyncStatusOK {
		spanErr = fmt.Errorf("sync %s at %s: %s", summary.Status, summary.Step, summary.Error)
	}

	telemetry.EndSpan(span, spanErr)

	s.logSummary(ctx, logger, summary)
	s.notify(ctx, summary)

	return summary
}

// notify publishes the summary. A panicking notifier is logged, not propagated.
func (s *SyncService) notify(ctx context.Context, summary domain.SyncSummary) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContextOr(ctx, s.logger).ErrorContext(ctx, "sync notifier panicked",
				slog.Any("panic", r),
				slog.String("status", string(summary.Status)),
			)
		}
	}()

	s.notifier.NotifySync(ctx, summary)
}

func (s *SyncService) run(ctx context.Context, logger *slog.Logger, summary *domain.SyncSummary) {
	var remote domain.Collection

	err := runStep(ctx, logger, StepFetch, func(ctx context.Context) error {
		var fetchErr error
		remote, fetchErr = s.remote.FetchRemote(ctx)

		return fetchErr
	})
	if err != nil {
		s.fail(summary, err)
		return
	}

	summary.Fetched = len(remote)

	var result domain.MergeResult

	err = runStep(ctx, logger, StepReconcile, func(ctx context.Context) error {
		var mergeErr error
		result, mergeErr = s.store.MergeRemote(ctx, remote)

		if domain.IsStorage(mergeErr) {
			return NewStepError(StepPersist, mergeErr)
		}

		return mergeErr
	})
	if err != nil {
		s.fail(summary, err)
		return
	}

	summary.Added = result.Added
	summary.Updated = result.Updated
	summary.Malformed = result.Malformed()
	summary.Conflicts = result.Conflicts

	for _, note := range result.Conflicts {
		logger.Log(ctx, logging.LevelTrace, "merge note",
			slog.String("kind", string(note.Kind)),
			slog.String("quote_id", note.ID),
			slog.String("message", note.Message),
		)
	}

	summary.Status = domain.SyncStatusOK

	if !s.pushEnabled {
		return
	}

	// Push what the store holds now, including local adds made during the fetch.
	snapshot := s.store.Snapshot()
	summary.Pushed = len(snapshot)

	err = runStep(ctx, logger, StepPush, func(ctx context.Context) error {
		return s.remote.PushLocal(ctx, snapshot)
	})
	if err != nil {
		summary.Status = domain.SyncStatusPartial
		summary.Step = string(StepPush)
		summary.Error = err.Error()
		summary.ErrorKind = domain.Kind(err)

		return
	}

	summary.PushOK = true
}

func (s *SyncService) fail(summary *domain.SyncSummary, err error) {
	summary.Status = domain.SyncStatusFailed
	summary.Error = err.Error()
	summary.ErrorKind = domain.Kind(err)

	if step, ok := StepOf(err); ok {
		summary.Step = string(step)
	}
}

func (s *SyncService) logSummary(ctx context.Context, logger *slog.Logger, summary domain.SyncSummary) {
	attrs := []any{
		slog.String("status", string(summary.Status)),
		slog.Duration("duration", summary.Duration),
		slog.Int("fetched", summary.Fetched),
		slog.Int("added", summary.Added),
		slog.Int("updated", summary.Updated),
		slog.Int("malformed", summary.Malformed),
		slog.Int("pushed", summary.Pushed),
	}

	switch summary.Status {
	case domain.SyncStatusOK:
		logger.InfoContext(ctx, "sync completed", attrs...)
	case domain.SyncStatusPartial:
		logger.WarnContext(ctx, "sync completed, push failed", append(attrs, slog.String("error", summary.Error))...)
	default:
		logger.ErrorContext(ctx, "sync failed", append(attrs,
			slog.String("step", summary.Step),
			slog.String("error_kind", summary.ErrorKind),
			slog.String("error", summary.Error),
		)...)
	}
}

// InProgress reports whether an attempt is running.
func (s *SyncService) InProgress() bool {
	return s.running.Load()
}

// State returns the last outcome and the scheduling state.
func (s *SyncService) State() SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := SyncState{
		InProgress: s.running.Load(),
		Periodic:   s.periodic,
		Interval:   s.interval,
	}

	if s.last != nil {
		last := *s.last
		state.LastSummary = &last
		state.LastSyncAt = last.FinishedAt
		state.LastStatus = last.Status
	}

	return state
}

func (s *SyncService) setPeriodic(on bool, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.periodic = on
	s.interval = interval
}
