package upsert

import (
	"fmt"
	"strings"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"
	"bulk-manager/core/tabular"
)

// Engine is the engine name used in plans and reports.
const Engine = "upsert"

// DefaultEntityType is created and matched when the mapping names none.
const DefaultEntityType = "companies"

// Reasons attached to rows that cannot be attempted.
const (
	ReasonMissingKey    = "missing_key"
	ReasonDuplicateKey  = "duplicate_key"
	ReasonMissingName   = "missing_name"
	ReasonNoValidValues = "no_valid_values"
)

const descriptionSeparator = "\n"

// Snapshot holds current custom field values by field id, then entity id.
type Snapshot map[string]map[string]reconcile.FieldValue

// createPayload is what the applier sends for a create item.
type createPayload struct {
	EntityType string
	Fields     map[string]any
	ParentID   string
	Owner      string
}

// rowValues are the non-blank mapped values of one row.
type rowValues struct {
	changes []reconcile.FieldChange
	fields  map[string]any
	parent  string
	owner   string
}

// Classify turns every row into a create, an update or an error. existing is the index
// built by Index; current supplies the values shown next to updates. It performs no I/O.
func Classify(table tabular.Table, m mapping.Mapping, entityType string, existing map[string]reconcile.Record, current Snapshot) []reconcile.Item {
	keys := KeyColumns(m)
	firstRow := make(map[string]int)

	items := make([]reconcile.Item, 0, len(table.Rows))
	for _, row := range table.Rows {
		item := reconcile.Item{Ref: fmt.Sprintf("row %d", row.Number)}

		key := RowKey(row, m, keys)
		if key == "" {
			item.Action = reconcile.ActionError
			item.Reason = ReasonMissingKey
			items = append(items, item)
			continue
		}
		item.Key = key
		if first, dup := firstRow[key]; dup && !m.AllowDuplicateKeys {
			item.Action = reconcile.ActionError
			item.Reason = fmt.Sprintf("%s: same key as row %d, which is applied instead (set allow_duplicate_keys to apply both)", ReasonDuplicateKey, first)
			items = append(items, item)
			continue
		} else if !dup {
			firstRow[key] = row.Number
		}

		values := collect(row, m)
		if name, ok := values.fields[mapping.FieldName].(string); ok {
			item.Label = name
		}

		if rec, ok := existing[key]; ok {
			items = append(items, updateItem(item, rec, values, keys, current))
			continue
		}
		items = append(items, createItem(item, values, entityType))
	}
	return items
}

func createItem(item reconcile.Item, values rowValues, entityType string) reconcile.Item {
	if _, ok := values.fields[mapping.FieldName]; !ok {
		item.Action = reconcile.ActionError
		item.Reason = ReasonMissingName
		item.Changes = values.changes
		return item
	}
	item.Action = reconcile.ActionCreate
	item.Changes = values.changes
	item.Payload = createPayload{
		EntityType: entityType,
		Fields:     values.fields,
		ParentID:   values.parent,
		Owner:      values.owner,
	}
	return item
}

// updateItem keeps the writable changes of a matched row. A key field is only written when
// its text differs from the record's, e.g. by case. Owner and parent are only set on create.
func updateItem(item reconcile.Item, rec reconcile.Record, values rowValues, keys []string, current Snapshot) reconcile.Item {
	item.EntityID = rec.ID
	if item.Label == "" {
		item.Label = rec.Text(mapping.FieldName)
	}

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	var pending, invalid int
	for _, change := range values.changes {
		switch {
		case change.FieldID == mapping.FieldOwner, change.FieldID == mapping.FieldParent:
			continue
		case isKey[change.FieldID] && strings.TrimSpace(change.New.Display()) == rec.Text(change.FieldID):
			continue
		}

		if mapping.IsReserved(change.FieldID) {
			if v := rec.Field(change.FieldID); v.IsPresent() {
				change.Current = &v
			}
		} else if fv, ok := current[change.FieldID][rec.ID]; ok && fv.Err == nil && fv.HasValue {
			v := fv.Value
			change.Current = &v
		}

		if change.Status == reconcile.FieldPending {
			pending++
		} else {
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
	default:
		item.Action = reconcile.ActionSkipBlank
	}
	return item
}

// collect reads the non-blank mapped cells of row in mapping order. Columns sharing a
// concatenated target are merged into one value.
func collect(row tabular.Row, m mapping.Mapping) rowValues {
	values := rowValues{fields: make(map[string]any)}
	done := make(map[string]bool)

	for _, col := range m.Columns {
		target := col.Target()
		if target == "" || done[target] {
			continue
		}

		change := reconcile.FieldChange{FieldID: target, Column: col.CSVColumn, Status: reconcile.FieldPending}
		switch target {
		case mapping.FieldUUID:
			continue
		case mapping.FieldDescription:
			done[target] = true
			text := row.Join(m.ColumnsFor(target), descriptionSeparator)
			if text == "" {
				continue
			}
			values.fields[target] = text
			change.FieldType = "text"
			change.Column = strings.Join(m.ColumnsFor(target), "+")
			change.New = reconcile.Scalar(text)
		case mapping.FieldTags:
			done[target] = true
			tags := splitTags(row, m.ColumnsFor(target))
			if len(tags) == 0 {
				continue
			}
			values.fields[target] = tags
			list := make([]any, len(tags))
			for i, tag := range tags {
				list[i] = tag
			}
			change.FieldType = "tags"
			change.Column = strings.Join(m.ColumnsFor(target), "+")
			change.New = reconcile.ValueOf(list)
		case mapping.FieldName, mapping.FieldDomain, mapping.FieldOwner, mapping.FieldParent:
			done[target] = true
			cell := strings.TrimSpace(row.Get(col.CSVColumn))
			if tabular.IsBlank(cell) {
				continue
			}
			switch target {
			case mapping.FieldOwner:
				values.owner = cell
				values.fields[target] = cell
			case mapping.FieldParent:
				values.parent = cell
			default:
				values.fields[target] = cell
			}
			change.FieldType = "text"
			change.New = reconcile.Scalar(cell)
		default:
			raw := row.Get(col.CSVColumn)
			if tabular.IsBlank(raw) {
				continue
			}
			change.FieldType = col.Type()
			v, err := col.Coerce(raw)
			if err != nil {
				change.New = reconcile.Scalar(strings.TrimSpace(raw))
				change.Status = reconcile.FieldInvalid
				change.Error = (&reconcile.FieldCoercionError{Column: col.CSVColumn, Value: raw, Err: err}).Error()
				break
			}
			values.fields[target] = v
			change.New = reconcile.Scalar(v)
		}
		values.changes = append(values.changes, change)
	}
	return values
}

// splitTags splits every cell on commas and returns the distinct tags in order.
func splitTags(row tabular.Row, columns []string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, col := range columns {
		for _, part := range strings.Split(row.Get(col), ",") {
			tag := strings.TrimSpace(part)
			if tabular.IsBlank(tag) || seen[strings.ToLower(tag)] {
				continue
			}
			seen[strings.ToLower(tag)] = true
			tags = append(tags, tag)
		}
	}
	return tags
}
