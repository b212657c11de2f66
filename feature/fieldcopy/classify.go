package fieldcopy

import (
	"fmt"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"
)

// Engine names the engine in plans and reports.
const Engine = "fieldcopy"

// RuleKey identifies a rule in item keys and migration logs.
func RuleKey(rule mapping.FieldRule) string {
	return rule.Source + "->" + rule.Target
}

// Classify decides the action for every entity under every rule. It reads only its
// arguments, so the same inputs always give the same items.
func Classify(records []reconcile.Record, snapshot map[string]map[string]reconcile.FieldValue, rules []mapping.FieldRule, onlyEmptyTargets bool) []reconcile.Item {
	items := make([]reconcile.Item, 0, len(records)*len(rules))

	for _, rule := range rules {
		key := RuleKey(rule)
		for _, rec := range records {
			source := snapshot[rule.Source][rec.ID]
			target := snapshot[rule.Target][rec.ID]

			item := reconcile.Item{
				Ref:      rec.ID,
				EntityID: rec.ID,
				Label:    rec.Text("name"),
				Key:      key,
			}

			switch {
			case source.Err != nil:
				item.Action = reconcile.ActionError
				item.Reason = fmt.Sprintf("reading %s failed: %v", rule.Source, source.Err)
			case !source.HasValue:
				item.Action = reconcile.ActionSkipSourceEmpty
			case onlyEmptyTargets && target.Err != nil:
				item.Action = reconcile.ActionError
				item.Reason = fmt.Sprintf("reading %s failed: %v", rule.Target, target.Err)
			case onlyEmptyTargets && target.HasValue:
				item.Action = reconcile.ActionSkipHasValue
			default:
				current := target.Value
				item.Action = reconcile.ActionUpdate
				item.Changes = []reconcile.FieldChange{{
					FieldID:   rule.Target,
					FieldType: rule.FieldType,
					Current:   &current,
					New:       source.Value,
					Status:    reconcile.FieldPending,
				}}
			}

			items = append(items, item)
		}
	}

	return items
}
