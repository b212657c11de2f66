package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecuteOptions controls a single execution run.
type ExecuteOptions struct {
	// Confirmed indicates the user confirmed the plan.
	// If false, nothing is executed regardless of DryRun.
	Confirmed bool

	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// BatchSize is the number of sink calls between throttle pauses.
	BatchSize int

	// Delay is the throttle pause. It keeps the run under the remote rate limit and has
	// no effect on correctness.
	Delay time.Duration

	// RunID overrides the generated run id.
	RunID string

	// OnProgress is called after every item.
	OnProgress func(Progress)

	// OnResult is called with each item's result as soon as it is known.
	OnResult func(Result)

	Logger *zap.Logger
}

// Execute walks every item of the plan strictly in order. Items that need no remote call
// are counted without touching the sink. A failing item is recorded and the run moves on
// to the next one.
//
// Cancelling ctx stops the run at the next item boundary or throttle pause; the run then
// ends in RunAborted with the results gathered so far.
func Execute(ctx context.Context, plan *Plan, applier Applier, opts ExecuteOptions) *Run {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	run := &Run{
		ID:      runID,
		Engine:  plan.Engine,
		State:   RunIdle,
		Total:   len(plan.Items),
		Results: make([]Result, 0, len(plan.Items)),
	}

	// Safety check: do not execute if not confirmed or dry-run
	if !opts.Confirmed || opts.DryRun {
		return run
	}

	run.State = RunRunning
	run.StartedAt = time.Now().UTC()

	calls := 0
	for i, item := range plan.Items {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run aborted", zap.String("run_id", run.ID), zap.Int("processed", i), zap.Error(err))
			run.State = RunAborted
			break
		}

		var result Result
		if item.Action.RequiresCall() {
			result = safeApply(ctx, applier, item)
			calls++
		} else {
			result = resultWithoutCall(item)
		}

		if result.Status == StatusFailed {
			logger.Warn("Item failed",
				zap.String("ref", result.Ref),
				zap.String("action", string(result.Action)),
				zap.String("error", result.Error),
			)
		}

		run.Results = append(run.Results, result)
		if opts.OnResult != nil {
			opts.OnResult(result)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(Progress{Current: i + 1, Total: run.Total})
		}

		last := i == len(plan.Items)-1
		if item.Action.RequiresCall() && opts.BatchSize > 0 && opts.Delay > 0 && calls%opts.BatchSize == 0 && !last {
			if !pause(ctx, opts.Delay) {
				logger.Warn("Run aborted during throttle", zap.String("run_id", run.ID), zap.Int("processed", i+1))
				run.State = RunAborted
				break
			}
		}
	}

	if run.State == RunRunning {
		run.State = RunCompleted
	}
	completed := time.Now().UTC()
	run.CompletedAt = &completed

	return run
}

// safeApply runs the applier and normalizes its result so one item can never take the
// run down.
func safeApply(ctx context.Context, applier Applier, item Item) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failedResult(item, fmt.Sprintf("panic: %v", r))
		}
	}()

	result = applier.Apply(ctx, item)
	if result.Ref == "" {
		result.Ref = item.Ref
	}
	if result.EntityID == "" {
		result.EntityID = item.EntityID
	}
	if result.Label == "" {
		result.Label = item.Label
	}
	if result.Action == "" {
		result.Action = item.Action
	}
	if result.Key == "" {
		result.Key = item.Key
	}
	if result.Status == "" {
		result.Status = StatusSuccess
	}
	result.Error = SanitizeMessage(result.Error)
	return result
}

// resultWithoutCall turns a non-mutating classification into its result.
func resultWithoutCall(item Item) Result {
	result := Result{
		Ref:              item.Ref,
		EntityID:         item.EntityID,
		Label:            item.Label,
		Action:           item.Action,
		Key:              item.Key,
		Status:           StatusSkipped,
		Fields:           item.Changes,
		AllFieldsSkipped: item.AllFieldsSkipped,
		Reason:           item.Reason,
	}
	if item.Action == ActionError {
		result.Status = StatusFailed
		result.Error = item.Reason
	}
	return result
}

func failedResult(item Item, msg string) Result {
	return Result{
		Ref:      item.Ref,
		EntityID: item.EntityID,
		Label:    item.Label,
		Action:   item.Action,
		Key:      item.Key,
		Status:   StatusFailed,
		Fields:   item.Changes,
		Error:    SanitizeMessage(msg),
	}
}

// FailedResult builds the result for an item whose sink call failed.
func FailedResult(item Item, err error) Result {
	return failedResult(item, errorText(err))
}

// pause waits for d or until ctx is done. It returns false when ctx ended first.
func pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
