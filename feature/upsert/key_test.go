package upsert

import (
	"testing"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"
	"bulk-manager/core/tabular"

	"github.com/stretchr/testify/assert"
)

func TestKeyColumns(t *testing.T) {
	both := mapping.Mapping{Columns: []mapping.ColumnMapping{
		{CSVColumn: "Company", MappedTo: mapping.Target(mapping.FieldName)},
		{CSVColumn: "Website", MappedTo: mapping.Target(mapping.FieldDomain)},
	}}
	assert.Equal(t, []string{"name", "domain"}, KeyColumns(both))

	nameOnly := mapping.Mapping{Columns: both.Columns[:1]}
	assert.Equal(t, []string{"name"}, KeyColumns(nameOnly))

	explicit := both
	explicit.KeyColumns = []string{mapping.FieldDomain}
	assert.Equal(t, []string{"domain"}, KeyColumns(explicit))

	assert.Empty(t, KeyColumns(mapping.Mapping{}))
}

func TestKeys(t *testing.T) {
	keys := []string{mapping.FieldName, mapping.FieldDomain}
	m := mapping.Mapping{Columns: []mapping.ColumnMapping{
		{CSVColumn: "Company", MappedTo: mapping.Target(mapping.FieldName)},
		{CSVColumn: "Website", MappedTo: mapping.Target(mapping.FieldDomain)},
	}}

	rec := reconcile.Record{ID: "c1", Fields: map[string]reconcile.Value{
		"name":   reconcile.Scalar(" Acme "),
		"domain": reconcile.Scalar("ACME.com"),
	}}
	assert.Equal(t, "acme|acme.com", RecordKey(rec, keys))

	row := tabular.Row{Cells: map[string]string{"Company": "ACME", "Website": " acme.com"}}
	assert.Equal(t, "acme|acme.com", RowKey(row, m, keys))

	noDomain := tabular.Row{Cells: map[string]string{"Company": "Acme", "Website": "-"}}
	assert.Equal(t, "acme|", RowKey(noDomain, m, keys))

	blank := tabular.Row{Cells: map[string]string{"Company": " ", "Website": ""}}
	assert.Equal(t, "", RowKey(blank, m, keys))
	assert.Equal(t, "", RecordKey(reconcile.Record{ID: "x"}, keys))

	dup := reconcile.Record{ID: "c2", Fields: rec.Fields}
	index := Index([]reconcile.Record{rec, dup, {ID: "c3"}}, keys)
	assert.Len(t, index, 1)
	assert.Equal(t, "c1", index["acme|acme.com"].ID)
}

func TestIsOwnerNotFound(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"HTTP 422: Owner not found", true},
		{"HTTP 404: member bob@example.com not found", true},
		{"User Not Found", true},
		{"HTTP 404: company not found", false},
		{"HTTP 422: owner is invalid", false},
		{"HTTP 500: internal error", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isOwnerNotFound(errString(tt.msg)))
		})
	}
	assert.False(t, isOwnerNotFound(nil))
}

type errString string

func (e errString) Error() string { return string(e) }
