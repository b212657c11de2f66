package upsert

import (
	"context"
	"fmt"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"
	"bulk-manager/core/tabular"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoKey is returned when no natural key column is mapped.
var ErrNoKey = fmt.Errorf("%w: no natural key column is mapped", mapping.ErrInvalid)

// Service plans and executes create-or-update runs.
type Service struct {
	source reconcile.Source
	sink   reconcile.Sink
	runner *reconcile.Runner
	logger *zap.Logger
}

// NewService creates a new upsert service.
func NewService(source reconcile.Source, sink reconcile.Sink, runner *reconcile.Runner, logger *zap.Logger) *Service {
	return &Service{source: source, sink: sink, runner: runner, logger: logger}
}

// Plan lists the existing records, matches every row against them and reads the current
// custom field values of the rows that will be updated.
func (s *Service) Plan(ctx context.Context, csv string, m mapping.Mapping) (*reconcile.Plan, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	keys := KeyColumns(m)
	if len(keys) == 0 {
		return nil, ErrNoKey
	}
	for _, k := range keys {
		if _, ok := m.ColumnFor(k); !ok {
			return nil, fmt.Errorf("%w: key column %s is not mapped", mapping.ErrInvalid, k)
		}
	}

	table := tabular.ParseTable(csv)
	if err := m.CheckHeader(table.Columns); err != nil {
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
	existing := Index(listing.Records, keys)

	var current Snapshot
	if fieldIDs := m.CustomFieldIDs(); len(fieldIDs) > 0 {
		ids := matchedIDs(table, m, keys, existing)
		if len(ids) > 0 {
			snapshot, err := reconcile.Snapshot(ctx, s.source, ids, fieldIDs)
			if err != nil {
				return nil, fmt.Errorf("failed to read current values: %w", err)
			}
			current = snapshot
		}
	}

	plan := reconcile.NewPlan(Engine, Classify(table, m, entityType, existing, current))
	plan.MarkPartial(listing)
	reconcile.LogPlan(s.logger, plan)
	return plan, nil
}

// Execute runs plan with the write throttle.
func (s *Service) Execute(ctx context.Context, plan *reconcile.Plan, opts reconcile.ExecuteOptions) *reconcile.Report {
	opts.RunID = uuid.NewString()
	opts.Delay = s.runner.Config.WriteDelay()
	return s.runner.Run(ctx, plan, applier{sink: s.sink, logger: s.logger}, opts)
}

func matchedIDs(table tabular.Table, m mapping.Mapping, keys []string, existing map[string]reconcile.Record) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, row := range table.Rows {
		rec, ok := existing[RowKey(row, m, keys)]
		if !ok || seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		ids = append(ids, rec.ID)
	}
	return ids
}
