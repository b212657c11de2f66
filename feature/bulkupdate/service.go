package bulkupdate

import (
	"context"
	"fmt"
	"strings"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"
	"bulk-manager/core/tabular"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoUUIDColumn is returned when no column maps to uuid.
	ErrNoUUIDColumn = fmt.Errorf("%w: a column must map to %s", mapping.ErrInvalid, mapping.FieldUUID)

	// ErrNoFields is returned when no column maps to a custom field.
	ErrNoFields = fmt.Errorf("%w: at least one column must map to a custom field", mapping.ErrInvalid)
)

// Service plans and executes bulk field updates.
type Service struct {
	source reconcile.Source
	sink   reconcile.Sink
	runner *reconcile.Runner
	logger *zap.Logger
}

// NewService creates a new bulk-update service.
func NewService(source reconcile.Source, sink reconcile.Sink, runner *reconcile.Runner, logger *zap.Logger) *Service {
	return &Service{source: source, sink: sink, runner: runner, logger: logger}
}

// Plan parses the upload and classifies every row. Current values are only read when the
// mapping preserves existing data.
func (s *Service) Plan(ctx context.Context, csv string, m mapping.Mapping) (*reconcile.Plan, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if _, ok := m.ColumnFor(mapping.FieldUUID); !ok {
		return nil, ErrNoUUIDColumn
	}
	if len(m.CustomFields()) == 0 {
		return nil, ErrNoFields
	}

	table := tabular.ParseTable(csv)
	if err := m.CheckHeader(table.Columns); err != nil {
		return nil, err
	}

	var current Snapshot
	if m.PreserveExisting {
		ids := entityIDs(table, m)
		snapshot, err := reconcile.Snapshot(ctx, s.source, ids, m.CustomFieldIDs())
		if err != nil {
			return nil, fmt.Errorf("failed to read current values: %w", err)
		}
		current = snapshot
		s.logger.Debug("Read current values", zap.Int("entities", len(ids)), zap.Int("fields", len(m.CustomFieldIDs())))
	}

	plan := reconcile.NewPlan(Engine, Classify(table, m, current))
	reconcile.LogPlan(s.logger, plan)
	return plan, nil
}

// Execute runs plan with the write throttle.
func (s *Service) Execute(ctx context.Context, plan *reconcile.Plan, opts reconcile.ExecuteOptions) *reconcile.Report {
	opts.RunID = uuid.NewString()
	opts.Delay = s.runner.Config.WriteDelay()
	return s.runner.Run(ctx, plan, reconcile.ChangeApplier(s.sink), opts)
}

// entityIDs returns the distinct non-blank UUIDs of the upload in row order.
func entityIDs(table tabular.Table, m mapping.Mapping) []string {
	column, _ := m.ColumnFor(mapping.FieldUUID)
	seen := make(map[string]bool)
	var ids []string
	for _, row := range table.Rows {
		id := strings.TrimSpace(row.Get(column))
		if tabular.IsBlank(id) || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
