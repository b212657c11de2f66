package bulkupdate

import (
	"fmt"
	"strings"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"
	"bulk-manager/core/tabular"
)

// Engine is the engine name used in plans and reports.
const Engine = "bulk_update"

// Reasons attached to rows that cannot be attempted.
const (
	ReasonMissingUUID   = "missing_uuid"
	ReasonNoValidValues = "no_valid_values"
)

// Snapshot holds current values by field id, then entity id. It is nil unless
// preserve_existing is set.
type Snapshot map[string]map[string]reconcile.FieldValue

// Classify turns every row of table into one item. It performs no I/O.
func Classify(table tabular.Table, m mapping.Mapping, current Snapshot) []reconcile.Item {
	uuidColumn, _ := m.ColumnFor(mapping.FieldUUID)
	columns := m.CustomFields()

	items := make([]reconcile.Item, 0, len(table.Rows))
	for _, row := range table.Rows {
		items = append(items, classifyRow(row, uuidColumn, columns, m.PreserveExisting, current))
	}
	return items
}

func classifyRow(row tabular.Row, uuidColumn string, columns []mapping.ColumnMapping, preserve bool, current Snapshot) reconcile.Item {
	item := reconcile.Item{Ref: fmt.Sprintf("row %d", row.Number)}

	id := strings.TrimSpace(row.Get(uuidColumn))
	if tabular.IsBlank(id) {
		item.Action = reconcile.ActionError
		item.Reason = ReasonMissingUUID
		return item
	}
	item.EntityID = id
	item.Label = id
	item.Key = id

	var pending, skipped, invalid int
	for _, col := range columns {
		raw := row.Get(col.CSVColumn)
		if tabular.IsBlank(raw) {
			continue
		}

		change := reconcile.FieldChange{
			FieldID:   col.Target(),
			FieldType: col.Type(),
			Column:    col.CSVColumn,
		}
		value, err := col.Coerce(raw)
		if err != nil {
			change.New = reconcile.Scalar(strings.TrimSpace(raw))
			change.Status = reconcile.FieldInvalid
			change.Error = (&reconcile.FieldCoercionError{Column: col.CSVColumn, Value: raw, Err: err}).Error()
			item.Changes = append(item.Changes, change)
			invalid++
			continue
		}
		change.New = reconcile.Scalar(value)
		change.Status = reconcile.FieldPending

		if preserve {
			fv, ok := current[change.FieldID][id]
			switch {
			case ok && fv.Err != nil:
				change.Status = reconcile.FieldInvalid
				change.Error = "could not read current value: " + reconcile.SanitizeMessage(fv.Err.Error())
			case ok && fv.HasValue:
				cur := fv.Value
				change.Current = &cur
				change.Status = reconcile.FieldSkipped
			}
		}

		switch change.Status {
		case reconcile.FieldPending:
			pending++
		case reconcile.FieldSkipped:
			skipped++
		default:
			invalid++
		}
		item.Changes = append(item.Changes, change)
	}

	switch {
	case pending > 0:
		item.Action = reconcile.ActionUpdate
	case invalid > 0:
		item.Action = reconcile.ActionError
		item.Reason = ReasonNoValidValues
	case skipped > 0:
		item.Action = reconcile.ActionSkipHasValue
		item.AllFieldsSkipped = true
		item.Reason = "all fields already had data"
	default:
		item.Action = reconcile.ActionSkipBlank
	}
	return item
}
