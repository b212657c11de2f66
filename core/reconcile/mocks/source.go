package mocks

import (
	"context"
	"fmt"
	"sync"

	"bulk-manager/core/reconcile"
)

// Source is an in-memory reconcile.Source. Pages are served in order; FailPage makes the
// given 1-based page fail. Values are keyed by field id, then entity id.
type Source struct {
	Pages    map[string][][]reconcile.Record
	Values   map[string]map[string]reconcile.Value
	FailPage int
	ReadErr  map[string]error

	mu    sync.Mutex
	Reads int
}

// ListPage serves page n for cursor "n".
func (s *Source) ListPage(ctx context.Context, entityType string, cursor reconcile.Cursor) (reconcile.Page, error) {
	pages := s.Pages[entityType]

	index := 0
	if cursor != "" {
		if _, err := fmt.Sscanf(string(cursor), "%d", &index); err != nil {
			return reconcile.Page{}, fmt.Errorf("bad cursor %q", cursor)
		}
	}

	if s.FailPage == index+1 {
		return reconcile.Page{}, fmt.Errorf("page %d unavailable", index+1)
	}
	if index >= len(pages) {
		return reconcile.Page{}, nil
	}

	page := reconcile.Page{Items: pages[index]}
	if index+1 < len(pages) {
		page.Next = reconcile.Cursor(fmt.Sprintf("%d", index+1))
	}
	return page, nil
}

// GetFieldValue returns the stored value or an absent value.
func (s *Source) GetFieldValue(ctx context.Context, entityID, fieldID string) (reconcile.FieldValue, error) {
	s.mu.Lock()
	s.Reads++
	s.mu.Unlock()

	if err, ok := s.ReadErr[entityID]; ok {
		return reconcile.FieldValue{}, err
	}
	v, ok := s.Values[fieldID][entityID]
	if !ok {
		return reconcile.FieldValue{Value: reconcile.Null}, nil
	}
	return reconcile.Present(v), nil
}

// GetBatchFieldValues reads through GetFieldValue with bounded parallelism.
func (s *Source) GetBatchFieldValues(ctx context.Context, entityIDs []string, fieldID string) (map[string]reconcile.FieldValue, error) {
	return reconcile.BatchFieldValues(ctx, func(ctx context.Context, id string) (reconcile.FieldValue, error) {
		return s.GetFieldValue(ctx, id, fieldID)
	}, entityIDs, reconcile.DefaultFetchConcurrency)
}
