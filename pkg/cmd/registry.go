// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"log/slog"

	"github.com/carrierops/chorus/pkg/agents/compliance"
	"github.com/carrierops/chorus/pkg/agents/cost"
	"github.com/carrierops/chorus/pkg/agents/fraud"
	"github.com/carrierops/chorus/pkg/agents/routing"
	"github.com/carrierops/chorus/pkg/agents/settlement"
	"github.com/carrierops/chorus/pkg/agents/sla"
	"github.com/carrierops/chorus/pkg/registry"
)

func registerAgentPlugins(ctx context.Context, reg *registry.Registry, pluginsPath string) {
	agentPlugins, err := reg.LoadAgentPlugins(ctx, pluginsPath)
	if err != nil {
		panic(err)
	}

	for _, plugin := range agentPlugins {
		reg.RegisterAgent(plugin)
	}
}

func registerNativeAgents(reg *registry.Registry) {
	reg.RegisterAgent(sla.NewAgentFactory())
	reg.RegisterAgent(cost.NewAgentFactory())
	reg.RegisterAgent(fraud.NewAgentFactory())
	reg.RegisterAgent(routing.NewAgentFactory())
	reg.RegisterAgent(settlement.NewAgentFactory())
	reg.RegisterAgent(compliance.NewAgentFactory())
}

// NewRegistry builds the agent registry with the native analytics agents
// plus any agent plugins found under pluginsPath. Plugins registered after
// the native agents can override them by ID.
func NewRegistry(ctx context.Context, log *slog.Logger, pluginsPath string) *registry.Registry {
	reg := registry.NewRegistry(log)

	registerNativeAgents(reg)

	if pluginsPath != "" {
		registerAgentPlugins(ctx, reg, pluginsPath)
	}

	return reg
}
