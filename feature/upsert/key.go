package upsert

import (
	"strings"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"
	"bulk-manager/core/tabular"
)

// DefaultKeyColumns form the natural key when the mapping names none.
var DefaultKeyColumns = []string{mapping.FieldName, mapping.FieldDomain}

const keySeparator = "|"

// KeyColumns returns the targets that form the natural key. Without explicit key columns
// the mapped subset of name and domain is used.
func KeyColumns(m mapping.Mapping) []string {
	if len(m.KeyColumns) > 0 {
		return m.KeyColumns
	}
	var keys []string
	for _, target := range DefaultKeyColumns {
		if _, ok := m.ColumnFor(target); ok {
			keys = append(keys, target)
		}
	}
	return keys
}

func joinKey(parts []string) string {
	blank := true
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
		if parts[i] != "" {
			blank = false
		}
	}
	if blank {
		return ""
	}
	return strings.Join(parts, keySeparator)
}

// RecordKey returns the natural key of an existing record, or "" when every part is blank.
func RecordKey(rec reconcile.Record, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = rec.Text(k)
	}
	return joinKey(parts)
}

// RowKey returns the natural key of an upload row, or "" when every part is blank.
func RowKey(row tabular.Row, m mapping.Mapping, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		col, ok := m.ColumnFor(k)
		if !ok {
			continue
		}
		if cell := row.Get(col); !tabular.IsBlank(cell) {
			parts[i] = cell
		}
	}
	return joinKey(parts)
}

// Index maps existing records by natural key. The first record listed wins a collision.
func Index(records []reconcile.Record, keys []string) map[string]reconcile.Record {
	index := make(map[string]reconcile.Record, len(records))
	for _, rec := range records {
		key := RecordKey(rec, keys)
		if key == "" {
			continue
		}
		if _, taken := index[key]; !taken {
			index[key] = rec
		}
	}
	return index
}
