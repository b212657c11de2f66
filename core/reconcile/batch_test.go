package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"bulk-manager/core/reconcile"
	"bulk-manager/core/reconcile/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchFieldValues_BoundsConcurrency(t *testing.T) {
	var inFlight, maxInFlight int32

	read := func(ctx context.Context, id string) (reconcile.FieldValue, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return reconcile.Present(reconcile.Scalar(id)), nil
	}

	ids := make([]string, 40)
	for i := range ids {
		ids[i] = fmt.Sprintf("e%d", i)
	}

	values, err := reconcile.BatchFieldValues(context.Background(), read, ids, 3)
	require.NoError(t, err)
	assert.Len(t, values, 40)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(3))
	assert.Equal(t, "e7", values["e7"].Value.Display())
}

func TestBatchFieldValues_IsolatesReadErrors(t *testing.T) {
	src := &mocks.Source{
		Values:  map[string]map[string]reconcile.Value{"f1": {"a": reconcile.Scalar("x")}},
		ReadErr: map[string]error{"b": errors.New("boom")},
	}

	values, err := src.GetBatchFieldValues(context.Background(), []string{"a", "b", "c", "a"}, "f1")
	require.NoError(t, err)
	assert.Len(t, values, 3)
	assert.True(t, values["a"].HasValue)
	assert.Error(t, values["b"].Err)
	assert.False(t, values["c"].HasValue)
	assert.Equal(t, 3, src.Reads)
}

func TestSnapshot(t *testing.T) {
	src := &mocks.Source{
		Values: map[string]map[string]reconcile.Value{
			"src": {"a": reconcile.Scalar(1.0)},
			"dst": {"b": reconcile.Scalar("y")},
		},
	}

	snap, err := reconcile.Snapshot(context.Background(), src, []string{"a", "b"}, []string{"src", "dst", "src"})
	require.NoError(t, err)
	assert.True(t, snap["src"]["a"].HasValue)
	assert.False(t, snap["src"]["b"].HasValue)
	assert.True(t, snap["dst"]["b"].HasValue)
	assert.Equal(t, 4, src.Reads)
}
