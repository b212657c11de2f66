package tabular

import (
	"bufio"
	"io"
	"strings"
)

// EscapeCSV quotes s when it contains a comma, a quote or a newline.
func EscapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteTable writes columns and rows as comma-separated lines.
func WriteTable(w io.Writer, columns []string, rows [][]string) error {
	bw := bufio.NewWriter(w)

	if err := writeLine(bw, columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeLine(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeLine(w *bufio.Writer, values []string) error {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeCSV(v)
	}
	_, err := w.WriteString(strings.Join(escaped, ",") + "\n")
	return err
}
