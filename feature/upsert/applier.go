package upsert

import (
	"context"
	"errors"
	"fmt"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"

	"go.uber.org/zap"
)

type applier struct {
	sink   reconcile.Sink
	logger *zap.Logger
}

// Apply creates or updates one record.
func (a applier) Apply(ctx context.Context, item reconcile.Item) reconcile.Result {
	if item.Action == reconcile.ActionCreate {
		return a.create(ctx, item)
	}
	return reconcile.ApplyChanges(ctx, a.sink, item)
}

// create sends the record. When the owner is unknown it retries once without it.
func (a applier) create(ctx context.Context, item reconcile.Item) reconcile.Result {
	p, ok := item.Payload.(createPayload)
	if !ok {
		return reconcile.FailedResult(item, errors.New("create item carries no payload"))
	}

	id, err := a.sink.CreateRecord(ctx, p.EntityType, p.Fields, p.ParentID)
	if err == nil {
		return created(item, id, false)
	}
	if p.Owner == "" || !isOwnerNotFound(err) {
		return reconcile.FailedResult(item, err)
	}

	ownerErr := &reconcile.OwnerAssignmentError{
		SinkApplyError: reconcile.SinkApplyError{Ref: item.Ref, Err: err},
		Owner:          p.Owner,
	}
	a.logger.Warn("Owner not found, retrying without owner",
		zap.String("ref", item.Ref),
		zap.String("owner", p.Owner),
	)

	fields := make(map[string]any, len(p.Fields))
	for k, v := range p.Fields {
		if k != mapping.FieldOwner {
			fields[k] = v
		}
	}
	id, err = a.sink.CreateRecord(ctx, p.EntityType, fields, p.ParentID)
	if err != nil {
		return reconcile.FailedResult(item, fmt.Errorf("retry without owner failed: %w", err))
	}

	result := created(item, id, true)
	result.Reason = ownerErr.Error()
	return result
}

func created(item reconcile.Item, id string, ownerSkipped bool) reconcile.Result {
	fields := make([]reconcile.FieldChange, len(item.Changes))
	copy(fields, item.Changes)
	for i := range fields {
		if fields[i].Status != reconcile.FieldPending {
			continue
		}
		fields[i].Status = reconcile.FieldApplied
		if ownerSkipped && fields[i].FieldID == mapping.FieldOwner {
			fields[i].Status = reconcile.FieldSkipped
		}
	}
	return reconcile.Result{
		Status:       reconcile.StatusSuccess,
		EntityID:     id,
		CreatedID:    id,
		Fields:       fields,
		OwnerSkipped: ownerSkipped,
	}
}
