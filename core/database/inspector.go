package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// TableColumns returns the lower-cased column names of table.
// A missing table yields no columns and no error.
func TableColumns(db *gorm.DB, table string) ([]string, error) {
	if !db.Migrator().HasTable(table) {
		return nil, nil
	}
	types, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}
	columns := make([]string, 0, len(types))
	for _, t := range types {
		columns = append(columns, strings.ToLower(t.Name()))
	}
	return columns, nil
}

// MissingColumns returns the expected columns that table lacks.
func MissingColumns(db *gorm.DB, table string, expected []string) ([]string, error) {
	columns, err := TableColumns(db, table)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	var missing []string
	for _, e := range expected {
		if !present[strings.ToLower(e)] {
			missing = append(missing, e)
		}
	}
	return missing, nil
}
