package migration

import (
	"context"
	"fmt"
	"time"

	"bulk-manager/core/reconcile"

	"go.uber.org/zap"
)

// Tracker keeps one migration log in step with a running execution.
// It is driven from the executor's result callback, which runs on a single goroutine.
type Tracker struct {
	repo   *Repository
	log    *Log
	logger *zap.Logger
}

// Start creates a running log and returns its tracker.
func (r *Repository) Start(ctx context.Context, runID, sourceFieldID, targetFieldID string, logger *zap.Logger) (*Tracker, error) {
	log, err := r.Create(ctx, runID, sourceFieldID, targetFieldID)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{repo: r, log: log, logger: logger}, nil
}

// Observe adds one item result to the counts and persists them. A persistence failure is
// logged; it never fails the item.
func (t *Tracker) Observe(ctx context.Context, res reconcile.Result) {
	t.log.Processed++
	switch res.Status {
	case reconcile.StatusFailed:
		t.log.Failed++
		t.addDetail(fmt.Sprintf("%s: %s", res.Ref, res.Error))
	case reconcile.StatusSkipped:
		t.log.Skipped++
	default:
		t.log.Updated++
	}

	if err := t.repo.Update(ctx, t.log); err != nil {
		t.logger.Warn("Failed to persist migration progress", zap.String("log_id", t.log.ID), zap.Error(err))
	}
}

// Finish marks the log completed, or failed when the run did not complete.
func (t *Tracker) Finish(ctx context.Context, state reconcile.RunState) {
	now := time.Now().UTC()
	t.log.CompletedAt = &now
	t.log.Status = StatusCompleted
	if state != reconcile.RunCompleted {
		t.log.Status = StatusFailed
		t.addDetail(fmt.Sprintf("run ended in state %s", state))
	}

	if err := t.repo.Update(ctx, t.log); err != nil {
		t.logger.Warn("Failed to finalize migration log", zap.String("log_id", t.log.ID), zap.Error(err))
	}
}

// addDetail appends line unless the log already holds MaxDetails lines.
func (t *Tracker) addDetail(line string) {
	if len(t.log.Details) < MaxDetails {
		t.log.Details = append(t.log.Details, line)
	}
}

// Log returns a copy of the current log.
func (t *Tracker) Log() Log {
	log := *t.log
	log.Details = append([]string(nil), t.log.Details...)
	return log
}
