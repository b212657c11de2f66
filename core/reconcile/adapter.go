package reconcile

import (
	"context"
	"strings"
)

// Cursor is an opaque pagination position. It holds either a page token or an absolute
// next-page URL; the empty cursor requests the first page.
type Cursor string

// IsLink reports whether the cursor is an absolute next-page URL.
func (c Cursor) IsLink() bool {
	s := string(c)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Page is one page of a remote listing.
type Page struct {
	Items []Record

	// Next is empty on the last page.
	Next Cursor
}

// Lister is the paginated "list" primitive drained by FetchAll.
type Lister interface {
	// ListPage returns one page of records of the given type starting at cursor.
	ListPage(ctx context.Context, entityType string, cursor Cursor) (Page, error)
}

// Source is the read side of the remote system.
type Source interface {
	Lister

	// GetFieldValue reads the current value of one field on one entity.
	GetFieldValue(ctx context.Context, entityID, fieldID string) (FieldValue, error)

	// GetBatchFieldValues reads one field across many entities.
	// Individual read failures are reported through FieldValue.Err.
	GetBatchFieldValues(ctx context.Context, entityIDs []string, fieldID string) (map[string]FieldValue, error)
}

// Sink is the write side of the remote system. Every method mutates exactly one record.
type Sink interface {
	// ApplyFieldValue writes value into fieldID on entityID.
	ApplyFieldValue(ctx context.Context, entityID, fieldID, fieldType string, value Value) error

	// CreateRecord creates a record of entityType and returns its id.
	// parentID is empty for top-level records.
	CreateRecord(ctx context.Context, entityType string, fields map[string]any, parentID string) (string, error)

	// DeleteRecord removes the record with the given id.
	DeleteRecord(ctx context.Context, id string) error
}

// Applier executes one classified item against a sink.
// Implementations must not panic or return early on failure; they report it in Result.
type Applier interface {
	Apply(ctx context.Context, item Item) Result
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(ctx context.Context, item Item) Result

// Apply calls f.
func (f ApplierFunc) Apply(ctx context.Context, item Item) Result {
	return f(ctx, item)
}
