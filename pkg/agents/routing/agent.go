// Package routing implements the least-cost routing optimization agent.
package routing

import (
	"context"

	"github.com/carrierops/chorus/pkg/agents/synth"
	"github.com/carrierops/chorus/pkg/models"
	"github.com/carrierops/chorus/pkg/protocol"
)

func NewAgentFactory() *AgentFactory {
	return &AgentFactory{}
}

type AgentFactory struct{}

func (*AgentFactory) ID() string {
	return "routing"
}

func (*AgentFactory) Name() string {
	return "Routing Optimizer"
}

func (*AgentFactory) Description() string {
	return "Compares active routes against rate decks and proposes reroutes"
}

func (*AgentFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"min_margin_percentage": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 100,
			},
		},
	}
}

func (f *AgentFactory) Create(ctx context.Context) (protocol.Agent, error) {
	return &Agent{}, nil
}

type Agent struct{}

func (a *Agent) Run(ctx context.Context, executionDate string, parameters map[string]any, progress protocol.ProgressCallback) (models.ResultPayload, error) {
	sampler := synth.NewSampler(executionDate, "routing")

	minMargin := 5.0
	if v, ok := parameters["min_margin_percentage"].(float64); ok {
		minMargin = v
	}

	progress(25, "loading active rate decks")

	routesEvaluated := sampler.IntBetween(200, 900)
	avgMargin := sampler.Percentage(1.0, 22.0)

	progress(80, "computing reroute candidates")

	rerouteSuggestions := 0
	if avgMargin < minMargin {
		rerouteSuggestions = sampler.IntBetween(1, routesEvaluated/10)
	}

	progress(100, "routing analysis finished")

	return models.ResultPayload{
		"routes_evaluated":      routesEvaluated,
		"avg_margin_percentage": avgMargin,
		"min_margin_percentage": minMargin,
		"reroute_suggestions":   rerouteSuggestions,
	}, nil
}
