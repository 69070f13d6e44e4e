// Package mocks provides testify mock implementations of the core interfaces.
package mocks

import (
	"context"

	"github.com/carrierops/chorus/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockResultStore is a mock implementation of persistence.ResultStore.
type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) PersistExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	args := m.Called(ctx, execution)

	return args.Error(0)
}

func (m *MockResultStore) ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowExecution), args.Error(1)
}

func (m *MockResultStore) Executions(ctx context.Context) ([]*models.WorkflowExecution, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowExecution), args.Error(1)
}

func (m *MockResultStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockResultStore) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
