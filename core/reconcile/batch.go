package reconcile

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds parallel field reads.
const DefaultFetchConcurrency = 10

// FieldReader reads one field of one entity.
type FieldReader func(ctx context.Context, entityID string) (FieldValue, error)

// BatchFieldValues reads a field for every id with at most concurrency reads in flight.
// Reads only: writes are always sequential. A failed read is reported through
// FieldValue.Err and does not stop the other reads.
func BatchFieldValues(ctx context.Context, read FieldReader, entityIDs []string, concurrency int) (map[string]FieldValue, error) {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}

	var (
		mu     sync.Mutex
		values = make(map[string]FieldValue, len(entityIDs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	queued := make(map[string]struct{}, len(entityIDs))
	for _, id := range entityIDs {
		id := id
		if _, dup := queued[id]; dup {
			continue
		}
		queued[id] = struct{}{}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fv, err := read(gctx, id)
			if err != nil {
				fv = FieldValue{Err: err}
			}
			mu.Lock()
			values[id] = fv
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// Snapshot reads several fields for every entity, one field at a time.
// The result is indexed by field id, then entity id.
func Snapshot(ctx context.Context, source Source, entityIDs []string, fieldIDs []string) (map[string]map[string]FieldValue, error) {
	snapshot := make(map[string]map[string]FieldValue, len(fieldIDs))
	for _, fieldID := range fieldIDs {
		if _, done := snapshot[fieldID]; done {
			continue
		}
		values, err := source.GetBatchFieldValues(ctx, entityIDs, fieldID)
		if err != nil {
			return nil, err
		}
		snapshot[fieldID] = values
	}
	return snapshot, nil
}
