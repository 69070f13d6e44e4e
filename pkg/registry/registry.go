// Package registry provides the factory table for pluggable analytics agents.
package registry

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"plugin"
	"sort"

	"github.com/carrierops/chorus/pkg/protocol"
)

type Registry struct {
	logger         *slog.Logger
	agentFactories map[string]protocol.AgentFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:         logger,
		agentFactories: make(map[string]protocol.AgentFactory),
	}
}

// LoadAgentPlugins loads agent factories from .so files under pluginsPath/agents.
func (r *Registry) LoadAgentPlugins(ctx context.Context, pluginsPath string) ([]protocol.AgentFactory, error) {
	return loadPlugins[protocol.AgentFactory](ctx, r.logger, pluginsPath, "Agent")
}

func (r *Registry) RegisterAgent(factory protocol.AgentFactory) {
	r.agentFactories[factory.ID()] = factory
}

// CreateAgent instantiates a registered agent by name.
func (r *Registry) CreateAgent(ctx context.Context, agentName string) (protocol.Agent, error) {
	factory, ok := r.agentFactories[agentName]
	if !ok {
		return nil, fmt.Errorf("agent '%s' not registered", agentName)
	}

	return factory.Create(ctx)
}

// IsAgentRegistered reports whether an agent name can be resolved.
func (r *Registry) IsAgentRegistered(agentName string) bool {
	_, ok := r.agentFactories[agentName]

	return ok
}

// AvailableAgents returns the registered agent factories sorted by ID.
func (r *Registry) AvailableAgents() []protocol.AgentFactory {
	factories := make([]protocol.AgentFactory, 0, len(r.agentFactories))
	for _, factory := range r.agentFactories {
		factories = append(factories, factory)
	}

	sort.Slice(factories, func(i, j int) bool {
		return factories[i].ID() < factories[j].ID()
	})

	return factories
}

func loadPlugins[T any](ctx context.Context, logger *slog.Logger, pluginsPath string, symbolName string) ([]T, error) {
	rootPath := pluginsPath + "/agents"

	root := os.DirFS(rootPath)

	pluginPathList, err := fs.Glob(root, "**/*.so")
	if err != nil {
		return nil, err
	}

	l := logger.With(slog.String("path", pluginsPath), slog.String("type", symbolName))
	l.InfoContext(ctx, "Loading plugins")

	pluginList := make([]T, 0, len(pluginPathList))

	for _, p := range pluginPathList {
		plg, err := plugin.Open(rootPath + "/" + p)
		if err != nil {
			return nil, fmt.Errorf("failed to open plugin %s: %w", p, err)
		}

		v, err := plg.Lookup(symbolName)
		if err != nil {
			return nil, fmt.Errorf("plugin %s has no %s symbol: %w", p, symbolName, err)
		}

		castV, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("plugin %s symbol %s has unexpected type", p, symbolName)
		}

		pluginList = append(pluginList, castV)

		l.InfoContext(ctx, "Loaded agent plugin", slog.String("plugin", p))
	}

	return pluginList, nil
}
