package mocks

import (
	"context"

	"bulk-manager/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// Sink is a mock implementation of reconcile.Sink
type Sink struct {
	mock.Mock
}

func (m *Sink) ApplyFieldValue(ctx context.Context, entityID, fieldID, fieldType string, value reconcile.Value) error {
	args := m.Called(ctx, entityID, fieldID, fieldType, value)
	return args.Error(0)
}

func (m *Sink) CreateRecord(ctx context.Context, entityType string, fields map[string]any, parentID string) (string, error) {
	args := m.Called(ctx, entityType, fields, parentID)
	return args.String(0), args.Error(1)
}

func (m *Sink) DeleteRecord(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
