package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ApplyChanges writes every pending change of item to its entity. A failing field does
// not stop the others; the item fails when any write failed.
func ApplyChanges(ctx context.Context, sink Sink, item Item) Result {
	fields := make([]FieldChange, len(item.Changes))
	copy(fields, item.Changes)

	var errs []string
	for i, change := range fields {
		if change.Status != FieldPending {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = sink.ApplyFieldValue(ctx, item.EntityID, change.FieldID, change.FieldType, change.New)
		}
		if err != nil {
			fields[i].Status = FieldFailed
			fields[i].Error = SanitizeMessage(errorText(err))
			errs = append(errs, fmt.Sprintf("%s: %s", change.FieldID, errorText(err)))
			continue
		}
		fields[i].Status = FieldApplied
	}

	if len(errs) > 0 {
		result := FailedResult(item, errors.New(strings.Join(errs, "; ")))
		result.Fields = fields
		return result
	}
	return Result{Status: StatusSuccess, Fields: fields}
}

// ChangeApplier applies items with ApplyChanges.
func ChangeApplier(sink Sink) Applier {
	return ApplierFunc(func(ctx context.Context, item Item) Result {
		return ApplyChanges(ctx, sink, item)
	})
}
