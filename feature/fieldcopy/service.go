package fieldcopy

import (
	"context"
	"fmt"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"
	"bulk-manager/feature/migration"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultEntityType is listed when the mapping names none.
const DefaultEntityType = "features"

// ErrNoRules is returned when the mapping carries no field rules.
var ErrNoRules = fmt.Errorf("%w: at least one field rule is required", mapping.ErrInvalid)

// Service plans and executes field copies.
type Service struct {
	source reconcile.Source
	sink   reconcile.Sink
	runner *reconcile.Runner
	// migrations is nil when no datastore is configured.
	migrations *migration.Repository
	logger     *zap.Logger
}

// NewService creates a new field-copy service.
func NewService(source reconcile.Source, sink reconcile.Sink, runner *reconcile.Runner, migrations *migration.Repository, logger *zap.Logger) *Service {
	return &Service{
		source:     source,
		sink:       sink,
		runner:     runner,
		migrations: migrations,
		logger:     logger,
	}
}

// Plan lists every entity, snapshots the source and target fields and classifies.
func (s *Service) Plan(ctx context.Context, m mapping.Mapping) (*reconcile.Plan, error) {
	if len(m.Rules) == 0 {
		return nil, ErrNoRules
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	entityType := m.EntityType
	if entityType == "" {
		entityType = DefaultEntityType
	}

	listing, err := reconcile.FetchAll(ctx, s.source, entityType)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(listing.Records))
	for _, rec := range listing.Records {
		ids = append(ids, rec.ID)
	}
	fieldIDs := make([]string, 0, len(m.Rules)*2)
	for _, rule := range m.Rules {
		fieldIDs = append(fieldIDs, rule.Source, rule.Target)
	}

	snapshot, err := reconcile.Snapshot(ctx, s.source, ids, fieldIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read field values: %w", err)
	}

	plan := reconcile.NewPlan(Engine, Classify(listing.Records, snapshot, m.Rules, m.OnlyEmptyTargets))
	plan.MarkPartial(listing)
	reconcile.LogPlan(s.logger, plan)
	return plan, nil
}

// Execute runs plan. When confirmed and a datastore is configured, one migration log per
// rule follows the run.
func (s *Service) Execute(ctx context.Context, plan *reconcile.Plan, m mapping.Mapping, opts reconcile.ExecuteOptions) (*reconcile.Report, []migration.Log) {
	opts.RunID = uuid.NewString()
	opts.Delay = s.runner.Config.WriteDelay()

	trackers := s.startTrackers(ctx, opts, m.Rules)
	if len(trackers) > 0 {
		onResult := opts.OnResult
		opts.OnResult = func(res reconcile.Result) {
			if t, ok := trackers[res.Key]; ok {
				t.Observe(context.WithoutCancel(ctx), res)
			}
			if onResult != nil {
				onResult(res)
			}
		}
	}

	report := s.runner.Run(ctx, plan, reconcile.ChangeApplier(s.sink), opts)

	logs := make([]migration.Log, 0, len(trackers))
	for _, rule := range m.Rules {
		key := RuleKey(rule)
		t, ok := trackers[key]
		if !ok {
			continue
		}
		// A repeated rule shares its tracker; finish it once.
		delete(trackers, key)
		t.Finish(context.WithoutCancel(ctx), report.State)
		logs = append(logs, t.Log())
	}
	return report, logs
}

func (s *Service) startTrackers(ctx context.Context, opts reconcile.ExecuteOptions, rules []mapping.FieldRule) map[string]*migration.Tracker {
	if s.migrations == nil || !opts.Confirmed || opts.DryRun {
		return nil
	}
	trackers := make(map[string]*migration.Tracker, len(rules))
	for _, rule := range rules {
		key := RuleKey(rule)
		if _, dup := trackers[key]; dup {
			continue
		}
		t, err := s.migrations.Start(ctx, opts.RunID, rule.Source, rule.Target, s.logger)
		if err != nil {
			s.logger.Warn("Migration log unavailable", zap.String("rule", key), zap.Error(err))
			continue
		}
		trackers[key] = t
	}
	return trackers
}
