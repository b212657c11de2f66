package reconcile

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// RunStore keeps recent reports in memory so they can be downloaded after a run.
// Reports are not persisted; the oldest are evicted once the store is full or expired.
type RunStore struct {
	reports *expirable.LRU[string, *Report]
}

// NewRunStore creates a store holding at most size reports for ttl.
func NewRunStore(size int, ttl time.Duration) *RunStore {
	if size <= 0 {
		size = 100
	}
	return &RunStore{
		reports: expirable.NewLRU[string, *Report](size, nil, ttl),
	}
}

// Put stores a report under its run id.
func (s *RunStore) Put(report *Report) {
	s.reports.Add(report.RunID, report)
}

// Get returns the report for runID.
func (s *RunStore) Get(runID string) (*Report, bool) {
	return s.reports.Get(runID)
}

// IDs returns the stored run ids, oldest first.
func (s *RunStore) IDs() []string {
	return s.reports.Keys()
}

// Len returns the number of stored reports.
func (s *RunStore) Len() int {
	return s.reports.Len()
}
