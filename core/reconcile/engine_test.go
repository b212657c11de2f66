package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bulk-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func updateItems(n int) []reconcile.Item {
	items := make([]reconcile.Item, n)
	for i := range items {
		id := fmt.Sprintf("e%d", i+1)
		items[i] = reconcile.Item{Ref: id, EntityID: id, Action: reconcile.ActionUpdate}
	}
	return items
}

// recordingApplier fails for the refs in fail and records every call.
type recordingApplier struct {
	fail  map[string]bool
	calls []string
	times []time.Time
}

func (a *recordingApplier) Apply(ctx context.Context, item reconcile.Item) reconcile.Result {
	a.calls = append(a.calls, item.Ref)
	a.times = append(a.times, time.Now())
	if a.fail[item.Ref] {
		return reconcile.FailedResult(item, errors.New("remote said no"))
	}
	return reconcile.Result{Status: reconcile.StatusSuccess}
}

func TestExecute_IsolatesFailures(t *testing.T) {
	applier := &recordingApplier{fail: map[string]bool{"e5": true}}
	plan := reconcile.NewPlan("test", updateItems(10))

	var progress []reconcile.Progress
	run := reconcile.Execute(context.Background(), plan, applier, reconcile.ExecuteOptions{
		Confirmed:  true,
		OnProgress: func(p reconcile.Progress) { progress = append(progress, p) },
	})

	assert.Equal(t, reconcile.RunCompleted, run.State)
	assert.Len(t, applier.calls, 10)
	assert.Equal(t, []string{"e6", "e7", "e8", "e9", "e10"}, applier.calls[5:])

	counts := reconcile.Tally(run.Results)
	assert.Equal(t, 1, counts.Failed)
	assert.Equal(t, 9, counts.Updated)
	assert.Equal(t, "e5", run.Results[4].Ref)
	assert.Equal(t, "remote said no", run.Results[4].Error)

	require.Len(t, progress, 10)
	assert.Equal(t, reconcile.Progress{Current: 10, Total: 10}, progress[9])
}

func TestExecute_SkipsDoNotCallSink(t *testing.T) {
	items := []reconcile.Item{
		{Ref: "a", Action: reconcile.ActionSkipHasValue},
		{Ref: "b", Action: reconcile.ActionUpdate},
		{Ref: "c", Action: reconcile.ActionSkipSourceEmpty},
		{Ref: "row 4", Action: reconcile.ActionError, Reason: "missing_uuid"},
		{Ref: "d", Action: reconcile.ActionKeep},
	}
	applier := &recordingApplier{}

	run := reconcile.Execute(context.Background(), reconcile.NewPlan("test", items), applier, reconcile.ExecuteOptions{Confirmed: true})

	assert.Equal(t, []string{"b"}, applier.calls)
	counts := reconcile.Tally(run.Results)
	assert.Equal(t, 3, counts.Skipped)
	assert.Equal(t, 1, counts.Failed)
	assert.Equal(t, 1, counts.Updated)
	assert.Equal(t, 1, counts.Breakdown["kept"])
	assert.Equal(t, "missing_uuid", run.Results[3].Error)
}

func TestExecute_RequiresConfirmation(t *testing.T) {
	applier := &recordingApplier{}
	plan := reconcile.NewPlan("test", updateItems(3))

	run := reconcile.Execute(context.Background(), plan, applier, reconcile.ExecuteOptions{Confirmed: false})
	assert.Equal(t, reconcile.RunIdle, run.State)
	assert.Empty(t, applier.calls)

	run = reconcile.Execute(context.Background(), plan, applier, reconcile.ExecuteOptions{Confirmed: true, DryRun: true})
	assert.Equal(t, reconcile.RunIdle, run.State)
	assert.Empty(t, applier.calls)
}

func TestExecute_ThrottlesEveryBatch(t *testing.T) {
	applier := &recordingApplier{}
	plan := reconcile.NewPlan("test", updateItems(5))

	run := reconcile.Execute(context.Background(), plan, applier, reconcile.ExecuteOptions{
		Confirmed: true,
		BatchSize: 2,
		Delay:     30 * time.Millisecond,
	})

	require.Equal(t, reconcile.RunCompleted, run.State)
	require.Len(t, applier.times, 5)
	assert.GreaterOrEqual(t, applier.times[2].Sub(applier.times[1]), 30*time.Millisecond)
	assert.GreaterOrEqual(t, applier.times[4].Sub(applier.times[3]), 30*time.Millisecond)
}

func TestExecute_CancellationAbortsAtItemBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	applier := reconcile.ApplierFunc(func(ctx context.Context, item reconcile.Item) reconcile.Result {
		if item.Ref == "e3" {
			cancel()
		}
		return reconcile.Result{}
	})

	run := reconcile.Execute(ctx, reconcile.NewPlan("test", updateItems(10)), applier, reconcile.ExecuteOptions{Confirmed: true})

	assert.Equal(t, reconcile.RunAborted, run.State)
	assert.Len(t, run.Results, 3)
	assert.NotNil(t, run.CompletedAt)
}

func TestExecute_RecoversFromPanics(t *testing.T) {
	applier := reconcile.ApplierFunc(func(ctx context.Context, item reconcile.Item) reconcile.Result {
		if item.Ref == "e2" {
			panic("bad payload")
		}
		return reconcile.Result{}
	})

	run := reconcile.Execute(context.Background(), reconcile.NewPlan("test", updateItems(3)), applier, reconcile.ExecuteOptions{Confirmed: true})

	assert.Equal(t, reconcile.RunCompleted, run.State)
	assert.Equal(t, reconcile.StatusFailed, run.Results[1].Status)
	assert.Contains(t, run.Results[1].Error, "bad payload")
	assert.Equal(t, reconcile.StatusSuccess, run.Results[2].Status)
}
