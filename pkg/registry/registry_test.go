package registry_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/carrierops/chorus/pkg/agents/cost"
	"github.com/carrierops/chorus/pkg/agents/fraud"
	"github.com/carrierops/chorus/pkg/agents/sla"
	"github.com/carrierops/chorus/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *registry.Registry {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	return registry.NewRegistry(logger)
}

func TestRegistry_RegisterAndCreate(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	reg.RegisterAgent(sla.NewAgentFactory())

	require.True(t, reg.IsAgentRegistered("sla"))

	agent, err := reg.CreateAgent(context.Background(), "sla")
	require.NoError(t, err)
	assert.NotNil(t, agent)
}

func TestRegistry_CreateUnknownAgent(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	agent, err := reg.CreateAgent(context.Background(), "capacity")
	require.Error(t, err)
	assert.Nil(t, agent)
	assert.Contains(t, err.Error(), "'capacity' not registered")
}

func TestRegistry_RegisterOverridesByID(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	reg.RegisterAgent(cost.NewAgentFactory())
	reg.RegisterAgent(cost.NewAgentFactory())

	assert.Len(t, reg.AvailableAgents(), 1)
}

func TestRegistry_AvailableAgentsSortedByID(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	reg.RegisterAgent(sla.NewAgentFactory())
	reg.RegisterAgent(fraud.NewAgentFactory())
	reg.RegisterAgent(cost.NewAgentFactory())

	agents := reg.AvailableAgents()
	require.Len(t, agents, 3)
	assert.Equal(t, "cost", agents[0].ID())
	assert.Equal(t, "fraud", agents[1].ID())
	assert.Equal(t, "sla", agents[2].ID())
}
