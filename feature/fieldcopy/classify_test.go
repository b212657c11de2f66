package fieldcopy

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rule = mapping.FieldRule{Source: "f-src", Target: "f-dst", FieldType: "text"}

func present(v string) reconcile.FieldValue {
	return reconcile.Present(reconcile.Scalar(v))
}

func TestClassify_OnlyEmptyTargets(t *testing.T) {
	records := []reconcile.Record{{ID: "feat-1"}}
	snapshot := map[string]map[string]reconcile.FieldValue{
		"f-src": {"feat-1": present("hello")},
		"f-dst": {"feat-1": present("already")},
	}

	items := Classify(records, snapshot, []mapping.FieldRule{rule}, true)
	require.Len(t, items, 1)
	assert.Equal(t, reconcile.ActionSkipHasValue, items[0].Action)

	items = Classify(records, snapshot, []mapping.FieldRule{rule}, false)
	require.Len(t, items, 1)
	assert.Equal(t, reconcile.ActionUpdate, items[0].Action)
	require.Len(t, items[0].Changes, 1)
	assert.Equal(t, "f-dst", items[0].Changes[0].FieldID)
	assert.Equal(t, "hello", items[0].Changes[0].New.Display())
	assert.Equal(t, "already", items[0].Changes[0].Current.Display())
	assert.Equal(t, "f-src->f-dst", items[0].Key)
}

func TestClassify_Cases(t *testing.T) {
	records := []reconcile.Record{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	snapshot := map[string]map[string]reconcile.FieldValue{
		"f-src": {
			"a": present("x"),
			"b": {Value: reconcile.Scalar("  ")},
			"c": {Err: errors.New("timeout")},
			"d": present("y"),
		},
		"f-dst": {
			"d": {Err: errors.New("timeout")},
		},
	}

	items := Classify(records, snapshot, []mapping.FieldRule{rule}, true)
	require.Len(t, items, 4)
	assert.Equal(t, reconcile.ActionUpdate, items[0].Action)
	assert.Equal(t, reconcile.ActionSkipSourceEmpty, items[1].Action)
	assert.Equal(t, reconcile.ActionError, items[2].Action)
	assert.Contains(t, items[2].Reason, "timeout")
	assert.Equal(t, reconcile.ActionError, items[3].Action)

	// Without the only-empty check the target read error is irrelevant.
	items = Classify(records, snapshot, []mapping.FieldRule{rule}, false)
	assert.Equal(t, reconcile.ActionUpdate, items[3].Action)
}

func TestClassify_RulesAreIndependent(t *testing.T) {
	records := []reconcile.Record{{ID: "a"}, {ID: "b"}}
	second := mapping.FieldRule{Source: "f-x", Target: "f-y"}
	snapshot := map[string]map[string]reconcile.FieldValue{
		"f-src": {"a": present("1"), "b": present("2")},
		"f-x":   {"a": present("3")},
	}

	items := Classify(records, snapshot, []mapping.FieldRule{rule, second}, true)
	require.Len(t, items, 4)
	assert.Equal(t, []string{"a", "b", "a", "b"}, []string{items[0].Ref, items[1].Ref, items[2].Ref, items[3].Ref})
	assert.Equal(t, "f-x->f-y", items[2].Key)
	assert.Equal(t, reconcile.ActionSkipSourceEmpty, items[3].Action)
}

func TestClassify_Idempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("same inputs give the same items", prop.ForAll(
		func(states []int, onlyEmpty bool) bool {
			records := make([]reconcile.Record, len(states))
			snapshot := map[string]map[string]reconcile.FieldValue{"f-src": {}, "f-dst": {}}
			for i, state := range states {
				id := fmt.Sprintf("e%d", i)
				records[i] = reconcile.Record{ID: id}
				if state&1 != 0 {
					snapshot["f-src"][id] = present(fmt.Sprintf("v%d", i))
				}
				if state&2 != 0 {
					snapshot["f-dst"][id] = present("old")
				}
			}

			first := Classify(records, snapshot, []mapping.FieldRule{rule}, onlyEmpty)
			second := Classify(records, snapshot, []mapping.FieldRule{rule}, onlyEmpty)
			if !reflect.DeepEqual(first, second) {
				return false
			}
			for i, item := range first {
				hasSource := states[i]&1 != 0
				if !hasSource && item.Action != reconcile.ActionSkipSourceEmpty {
					return false
				}
				if hasSource && onlyEmpty && states[i]&2 != 0 && item.Action != reconcile.ActionSkipHasValue {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
