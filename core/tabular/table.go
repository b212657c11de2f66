package tabular

import (
	"strings"
)

// Table is a parsed upload: an ordered header and the data rows below it.
type Table struct {
	// Columns keeps header order; concatenation fields depend on it.
	Columns []string `json:"columns"`

	// Rows holds one entry per non-blank data line.
	Rows []Row `json:"rows"`
}

// Row is one data line keyed by column name.
type Row struct {
	// Number is the 1-based position of the row among data rows.
	Number int `json:"number"`

	// Cells maps column name to raw cell text.
	Cells map[string]string `json:"cells"`
}

// Get returns the raw cell for column, or "" when the column does not exist.
func (r Row) Get(column string) string {
	return r.Cells[column]
}

// Join concatenates the non-blank cells of columns in the given order.
func (r Row) Join(columns []string, sep string) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		v := strings.TrimSpace(r.Cells[col])
		if IsBlank(v) {
			continue
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, sep)
}

// ParseTable parses raw comma-separated text into a Table.
// An input with no non-blank lines yields an empty table.
func ParseTable(raw string) Table {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	content := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		content = append(content, line)
	}

	if len(content) == 0 {
		return Table{Columns: []string{}, Rows: []Row{}}
	}

	header := SplitLine(content[0])
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(content)-1)
	for i, line := range content[1:] {
		values := SplitLine(line)
		cells := make(map[string]string, len(columns))
		for j, col := range columns {
			if j < len(values) {
				cells[col] = values[j]
			} else {
				cells[col] = ""
			}
		}
		rows = append(rows, Row{Number: i + 1, Cells: cells})
	}

	return Table{Columns: columns, Rows: rows}
}

// SplitLine splits a single line on commas outside double quotes.
func SplitLine(line string) []string {
	var (
		values   []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			values = append(values, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	values = append(values, current.String())

	return values
}
