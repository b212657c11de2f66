package notes

import (
	"context"

	"bulk-manager/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EntityType is the listing that holds notes.
const EntityType = "notes"

// Plan is a classified dedupe run together with its duplicate sets.
type Plan struct {
	*reconcile.Plan
	Groups []Group `json:"groups"`
}

// Service plans and executes note deduplication.
type Service struct {
	source reconcile.Source
	sink   reconcile.Sink
	runner *reconcile.Runner
	logger *zap.Logger
}

// NewService creates a new dedupe service.
func NewService(source reconcile.Source, sink reconcile.Sink, runner *reconcile.Runner, logger *zap.Logger) *Service {
	return &Service{source: source, sink: sink, runner: runner, logger: logger}
}

// Plan lists every note and finds the duplicate sets.
func (s *Service) Plan(ctx context.Context) (*Plan, error) {
	listing, err := reconcile.FetchAll(ctx, s.source, EntityType)
	if err != nil {
		return nil, err
	}

	groups := FindGroups(listing.Records)
	plan := reconcile.NewPlan(Engine, Classify(groups))
	plan.MarkPartial(listing)
	reconcile.LogPlan(s.logger, plan)
	s.logger.Info("Duplicate sets found", zap.Int("groups", len(groups)), zap.Int("notes", len(listing.Records)))

	return &Plan{Plan: plan, Groups: groups}, nil
}

// Execute deletes the planned duplicates with the delete throttle.
func (s *Service) Execute(ctx context.Context, plan *Plan, opts reconcile.ExecuteOptions) *reconcile.Report {
	opts.RunID = uuid.NewString()
	opts.Delay = s.runner.Config.DeleteDelay()
	return s.runner.Run(ctx, plan.Plan, applier{sink: s.sink}, opts)
}

type applier struct {
	sink reconcile.Sink
}

// Apply deletes one note.
func (a applier) Apply(ctx context.Context, item reconcile.Item) reconcile.Result {
	if err := a.sink.DeleteRecord(ctx, item.EntityID); err != nil {
		return reconcile.FailedResult(item, err)
	}
	return reconcile.Result{Status: reconcile.StatusSuccess}
}
