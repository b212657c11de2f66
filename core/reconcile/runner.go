package reconcile

import (
	"context"

	"bulk-manager/core/storage"

	"go.uber.org/zap"
)

// Archive uploads finished reports to object storage.
type Archive struct {
	Client storage.Client
	Bucket string
}

// Runner executes plans with the shared run settings and keeps their reports.
type Runner struct {
	Config Config
	Store  *RunStore
	// Archive is optional; when nil reports stay in memory only.
	Archive *Archive
	Logger  *zap.Logger
}

// NewRunner creates a runner with an in-memory report store.
func NewRunner(cfg Config, store *RunStore, archive *Archive, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewRunStore(100, 0)
	}
	return &Runner{Config: cfg, Store: store, Archive: archive, Logger: logger}
}

// Run executes plan and returns its report. BatchSize and Logger default to the runner's
// settings; the caller picks Delay since it differs between writes and deletions.
// Unconfirmed or dry runs return an idle report without touching the store.
func (r *Runner) Run(ctx context.Context, plan *Plan, applier Applier, opts ExecuteOptions) *Report {
	if opts.BatchSize == 0 {
		opts.BatchSize = r.Config.BatchSize
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}

	run := Execute(ctx, plan, applier, opts)
	report := BuildReport(run)
	if run.State == RunIdle {
		return report
	}

	r.Store.Put(report)

	if r.Archive != nil {
		// Cancelled runs are archived too.
		name, err := UploadReport(context.WithoutCancel(ctx), r.Archive.Client, r.Archive.Bucket, report)
		if err != nil {
			r.Logger.Warn("Failed to archive report", zap.String("run_id", report.RunID), zap.Error(err))
		} else {
			report.Archived = name
		}
	}

	r.Logger.Info("Run finished",
		zap.String("run_id", report.RunID),
		zap.String("engine", report.Engine),
		zap.String("state", string(report.State)),
		zap.Int("processed", report.Counts.Processed),
		zap.Int("created", report.Counts.Created),
		zap.Int("updated", report.Counts.Updated),
		zap.Int("deleted", report.Counts.Deleted),
		zap.Int("skipped", report.Counts.Skipped),
		zap.Int("failed", report.Counts.Failed),
	)
	return report
}

// LogPlan writes a plan summary and the first few classified items.
func LogPlan(logger *zap.Logger, plan *Plan) {
	logger.Info("Plan built",
		zap.String("engine", plan.Engine),
		zap.Int("total", plan.Summary.Total),
		zap.Int("calls", plan.Summary.Calls),
		zap.Int("field_errors", plan.Summary.FieldErrors),
		zap.Bool("partial", plan.Partial),
	)
	for i, item := range plan.Items {
		if i >= 5 {
			break
		}
		logger.Debug("Planned item",
			zap.String("ref", item.Ref),
			zap.String("action", string(item.Action)),
			zap.String("key", item.Key),
		)
	}
}
