package reconcile

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"bulk-manager/core/tabular"
)

// Counts aggregates execution results.
type Counts struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	// Breakdown holds policy-specific subcategories such as "skip_has_value",
	// "all_fields_skipped" or "owner_skipped".
	Breakdown map[string]int `json:"breakdown"`
}

// Report is the exportable outcome of a run.
type Report struct {
	RunID       string     `json:"run_id"`
	Engine      string     `json:"engine"`
	State       RunState   `json:"state"`
	Total       int        `json:"total"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Counts      Counts     `json:"counts"`
	Results     []Result   `json:"results"`

	// Archived is the object storage key of the uploaded CSV, if any.
	Archived string `json:"archived,omitempty"`
}

// Summary is the compact view of a report returned after execution.
type Summary struct {
	RunID        string   `json:"run_id"`
	Engine       string   `json:"engine"`
	State        RunState `json:"state"`
	Total        int      `json:"total"`
	Counts       Counts   `json:"counts"`
	Failures     []string `json:"failures"`
	MoreFailures int      `json:"more_failures"`
	Archived     string   `json:"archived,omitempty"`
}

// Summarize returns the counts and the first failureLimit failure messages.
func (r *Report) Summarize(failureLimit int) Summary {
	failures, more := r.Failures(failureLimit)
	if failures == nil {
		failures = []string{}
	}
	return Summary{
		RunID:        r.RunID,
		Engine:       r.Engine,
		State:        r.State,
		Total:        r.Total,
		Counts:       r.Counts,
		Failures:     failures,
		MoreFailures: more,
		Archived:     r.Archived,
	}
}

// Table is a flat column/row structure ready for serialization.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// BuildReport aggregates the results of a run.
func BuildReport(run *Run) *Report {
	report := &Report{
		RunID:       run.ID,
		Engine:      run.Engine,
		State:       run.State,
		Total:       run.Total,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		Counts:      Tally(run.Results),
		Results:     run.Results,
	}
	return report
}

// Tally counts results by outcome and subcategory.
func Tally(results []Result) Counts {
	counts := Counts{Breakdown: make(map[string]int)}

	for _, r := range results {
		counts.Processed++

		switch r.Status {
		case StatusFailed:
			counts.Failed++
		case StatusSkipped:
			counts.Skipped++
			switch {
			case r.AllFieldsSkipped:
				counts.Breakdown["all_fields_skipped"]++
			case r.Action == ActionKeep:
				counts.Breakdown["kept"]++
			default:
				counts.Breakdown[string(r.Action)]++
			}
		default:
			switch r.Action {
			case ActionCreate:
				counts.Created++
			case ActionUpdate:
				counts.Updated++
			case ActionDelete:
				counts.Deleted++
			}
		}

		if r.OwnerSkipped {
			counts.Breakdown["owner_skipped"]++
		}
		for _, f := range r.Fields {
			switch f.Status {
			case FieldSkipped:
				counts.Breakdown["fields_skipped"]++
			case FieldInvalid, FieldFailed:
				counts.Breakdown["field_errors"]++
			}
		}
	}

	return counts
}

// Failures returns up to limit failure messages and the number left out.
func (r *Report) Failures(limit int) ([]string, int) {
	var msgs []string
	total := 0
	for _, res := range r.Results {
		if res.Status != StatusFailed {
			continue
		}
		total++
		if limit <= 0 || len(msgs) < limit {
			msgs = append(msgs, fmt.Sprintf("%s: %s", res.Ref, res.Error))
		}
	}
	return msgs, total - len(msgs)
}

// SummaryRows returns the metadata block placed above the item rows.
func (r *Report) SummaryRows() [][]string {
	completed := ""
	if r.CompletedAt != nil {
		completed = r.CompletedAt.Format(time.RFC3339)
	}

	rows := [][]string{
		{"Run ID", r.RunID},
		{"Engine", r.Engine},
		{"State", string(r.State)},
		{"Started", r.StartedAt.Format(time.RFC3339)},
		{"Completed", completed},
		{"Total", strconv.Itoa(r.Total)},
		{"Processed", strconv.Itoa(r.Counts.Processed)},
		{"Created", strconv.Itoa(r.Counts.Created)},
		{"Updated", strconv.Itoa(r.Counts.Updated)},
		{"Deleted", strconv.Itoa(r.Counts.Deleted)},
		{"Skipped", strconv.Itoa(r.Counts.Skipped)},
		{"Failed", strconv.Itoa(r.Counts.Failed)},
	}
	for _, key := range sortedKeys(r.Counts.Breakdown) {
		rows = append(rows, []string{key, strconv.Itoa(r.Counts.Breakdown[key])})
	}
	return rows
}

// Table returns one row per processed item.
func (r *Report) Table() Table {
	table := Table{
		Columns: []string{"ref", "entity_id", "label", "action", "status", "fields", "error", "notes"},
		Rows:    make([][]string, 0, len(r.Results)),
	}

	for _, res := range r.Results {
		table.Rows = append(table.Rows, []string{
			res.Ref,
			firstNonEmpty(res.CreatedID, res.EntityID),
			res.Label,
			string(res.Action),
			string(res.Status),
			describeFields(res.Fields),
			res.Error,
			describeNotes(res),
		})
	}
	return table
}

// WriteCSV writes the summary block, a blank line, and the item table.
func (r *Report) WriteCSV(w io.Writer) error {
	if err := tabular.WriteTable(w, []string{"Summary", ""}, r.SummaryRows()); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	table := r.Table()
	return tabular.WriteTable(w, table.Columns, table.Rows)
}

func describeFields(fields []FieldChange) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		part := fmt.Sprintf("%s=%s [%s]", f.FieldID, f.New.Display(), f.Status)
		if f.Error != "" {
			part += " " + f.Error
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

func describeNotes(res Result) string {
	var notes []string
	if res.AllFieldsSkipped {
		notes = append(notes, "all fields already had data")
	}
	if res.OwnerSkipped {
		notes = append(notes, "owner not found, created without owner")
	}
	if res.Reason != "" && res.Status == StatusSkipped {
		notes = append(notes, res.Reason)
	}
	return strings.Join(notes, "; ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
