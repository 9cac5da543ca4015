// Package theme applies or removes the GTK theme variant hint on every
// window of the application.
package theme

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"themehint/internal/wm"
	"themehint/pkg/core"
)

// Correlator yields the windows owned by the application.
type Correlator interface {
	Correlate(ctx context.Context) ([]wm.Handle, error)
}

// ApplyError is the failure of one window's property command.
type ApplyError struct {
	Handle wm.Handle
	Err    error
}

func (e ApplyError) Error() string {
	return fmt.Sprintf("window %s: %v", e.Handle, e.Err)
}

func (e ApplyError) Unwrap() error {
	return e.Err
}

// BatchOutcome summarises one apply pass.
type BatchOutcome struct {
	ID       string
	Variant  Variant
	Handles  []wm.Handle
	Failures []ApplyError
	Duration time.Duration
}

func (o *BatchOutcome) HasFailures() bool {
	return len(o.Failures) > 0
}

// Err combines all per-window failures, or returns nil.
func (o *BatchOutcome) Err() error {
	var err error
	for _, f := range o.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// Applier sets or clears the variant on all correlated windows.
type Applier struct {
	corr   Correlator
	writer wm.PropertyWriter
	log    core.Logger
	limit  int
}

// NewApplier creates an Applier. A positive limit caps concurrent
// property commands; zero leaves them unbounded.
func NewApplier(corr Correlator, writer wm.PropertyWriter, log core.Logger, limit int) *Applier {
	return &Applier{corr: corr, writer: writer, log: log, limit: limit}
}

// Apply correlates the application's windows and runs one property
// command per window concurrently. The returned error is non-nil only
// when correlation fails, in which case no command was issued. Failed
// windows are reported in the outcome and are never retried.
func (a *Applier) Apply(ctx context.Context, v Variant) (*BatchOutcome, error) {
	start := time.Now()
	outcome := &BatchOutcome{ID: uuid.NewString(), Variant: v}

	handles, err := a.corr.Correlate(ctx)
	if err != nil {
		a.log.Error("Failed to correlate windows", err, "batch", outcome.ID, "variant", v.String())
		return nil, err
	}
	outcome.Handles = handles

	errs := make([]error, len(handles))
	var g errgroup.Group
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}
	for i, h := range handles {
		i, h := i, h
		g.Go(func() error {
			errs[i] = a.applyOne(ctx, h, v)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			outcome.Failures = append(outcome.Failures, ApplyError{Handle: handles[i], Err: err})
		}
	}
	outcome.Duration = time.Since(start)

	a.log.Debug("Applied theme variant",
		"batch", outcome.ID,
		"variant", v.String(),
		"windows", len(handles),
		"failures", len(outcome.Failures),
		"duration", outcome.Duration.String())
	return outcome, nil
}

func (a *Applier) applyOne(ctx context.Context, h wm.Handle, v Variant) error {
	if name, ok := v.Name(); ok {
		return a.writer.SetVariant(ctx, h, name)
	}
	return a.writer.ClearVariant(ctx, h)
}
