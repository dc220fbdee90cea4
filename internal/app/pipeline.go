package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/quote-manager/internal/platform/telemetry"
)

// A sync runs as an ordered pipeline: Fetch → Reconcile → Persist → Push.
//
// Fetch and reconcile/persist abort the run on failure, leaving local state
// untouched. Push runs last and its failure never undoes the persisted merge.

// SyncStep names a stage of the sync pipeline.
type SyncStep string

const (
	StepFetch     SyncStep = "fetch"
	StepReconcile SyncStep = "reconcile"
	StepPersist   SyncStep = "persist"
	StepPush      SyncStep = "push"
)

// StepError wraps a failure with the step where it occurred.
type StepError struct {
	Step  SyncStep
	Cause error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *StepError) Unwrap() error {
	return e.Cause
}

// NewStepError attributes cause to step.
func NewStepError(step SyncStep, cause error) error {
	return &StepError{Step: step, Cause: cause}
}

// StepOf extracts the failing step from err.
func StepOf(err error) (SyncStep, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step, true
	}

	return "", false
}

// ErrStepPanic is wrapped by the error of a step that panicked.
var ErrStepPanic = errors.New("step panicked")

// runStep runs fn inside a span. A panic in fn is returned as an error, and
// any error not already attributed to a step is attributed to this one.
func runStep(ctx context.Context, logger *slog.Logger, step SyncStep, fn func(ctx context.Context) error) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "sync."+string(step), attribute.String("sync.step", string(step)))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStepPanic, r)
		}

		if err != nil {
			if _, ok := StepOf(err); !ok {
				err = NewStepError(step, err)
			}

			logger.WarnContext(ctx, "sync step failed",
				slog.String("step", string(step)),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)
		} else {
			logger.DebugContext(ctx, "sync step completed",
				slog.String("step", string(step)),
				slog.Duration("duration", time.Since(start)),
			)
		}

		telemetry.EndSpan(span, err)
	}()

	logger.DebugContext(ctx, "sync step started", slog.String("step", string(step)))

	return fn(ctx)
}
