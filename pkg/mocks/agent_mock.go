package mocks

import (
	"context"

	"github.com/carrierops/chorus/pkg/models"
	"github.com/carrierops/chorus/pkg/protocol"
	"github.com/stretchr/testify/mock"
)

// MockAgent is a mock implementation of protocol.Agent.
type MockAgent struct {
	mock.Mock
}

func (m *MockAgent) Run(ctx context.Context, executionDate string, parameters map[string]any, progress protocol.ProgressCallback) (models.ResultPayload, error) {
	args := m.Called(ctx, executionDate, parameters, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(models.ResultPayload), args.Error(1)
}

// MockAgentFactory is a mock implementation of protocol.AgentFactory.
type MockAgentFactory struct {
	mock.Mock
}

func (m *MockAgentFactory) Create(ctx context.Context) (protocol.Agent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(protocol.Agent), args.Error(1)
}

func (m *MockAgentFactory) ID() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockAgentFactory) Name() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockAgentFactory) Description() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockAgentFactory) Schema() map[string]any {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(map[string]any)
}
