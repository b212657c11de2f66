package reconcile

import (
	"fmt"
	"sort"
)

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	// Total is the number of classified items.
	Total int `json:"total"`

	// Counts holds the number of items per action.
	Counts map[ActionType]int `json:"counts"`

	// Calls is the number of items that will invoke the sink.
	Calls int `json:"calls"`

	// FieldErrors counts fields that failed coercion during classification.
	FieldErrors int `json:"field_errors"`
}

// Actions returns the actions present in Counts in a stable order.
func (s PlanSummary) Actions() []ActionType {
	actions := make([]ActionType, 0, len(s.Counts))
	for a := range s.Counts {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// Plan is the full classification output of one policy run. It is never truncated.
type Plan struct {
	Engine  string      `json:"engine"`
	Items   []Item      `json:"items"`
	Summary PlanSummary `json:"summary"`

	// Partial is set when the source listing stopped early.
	Partial bool `json:"partial"`

	// Warnings are shown next to the preview (e.g. partial data).
	Warnings []string `json:"warnings,omitempty"`
}

// NewPlan wraps classified items and computes the summary.
func NewPlan(engine string, items []Item) *Plan {
	if items == nil {
		items = []Item{}
	}
	return &Plan{
		Engine:  engine,
		Items:   items,
		Summary: Summarize(items),
	}
}

// MarkPartial records that the plan was built from a partial listing.
func (p *Plan) MarkPartial(listing *Listing) {
	if listing == nil || !listing.Partial {
		return
	}
	p.Partial = true
	p.Warnings = append(p.Warnings, fmt.Sprintf("listing incomplete, %d records gathered: %v", len(listing.Records), listing.Err))
}

// Summarize counts items per action.
func Summarize(items []Item) PlanSummary {
	summary := PlanSummary{
		Total:  len(items),
		Counts: make(map[ActionType]int),
	}
	for _, item := range items {
		summary.Counts[item.Action]++
		if item.Action.RequiresCall() {
			summary.Calls++
		}
		for _, c := range item.Changes {
			if c.Status == FieldInvalid {
				summary.FieldErrors++
			}
		}
	}
	return summary
}

// Preview is a display-bounded view of a plan.
type Preview struct {
	Engine   string      `json:"engine"`
	Summary  PlanSummary `json:"summary"`
	Sample   []Item      `json:"sample"`
	Hidden   int         `json:"hidden"`
	Partial  bool        `json:"partial"`
	Warnings []string    `json:"warnings,omitempty"`
}

// Preview returns the first limit items and the full counts. The limit bounds display
// only; execution always processes every item of the plan.
func (p *Plan) Preview(limit int) Preview {
	shown := len(p.Items)
	if limit > 0 && shown > limit {
		shown = limit
	}

	sample := make([]Item, shown)
	copy(sample, p.Items[:shown])

	return Preview{
		Engine:   p.Engine,
		Summary:  p.Summary,
		Sample:   sample,
		Hidden:   len(p.Items) - shown,
		Partial:  p.Partial,
		Warnings: p.Warnings,
	}
}
