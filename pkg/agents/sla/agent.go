// Package sla implements the SLA monitoring agent.
package sla

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
	return "sla"
}

func (*AgentFactory) Name() string {
	return "SLA Monitor"
}

func (*AgentFactory) Description() string {
	return "Evaluates per-route availability and latency against contracted service levels"
}

func (*AgentFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"availability_target": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 100,
			},
			"carriers": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}
}

func (f *AgentFactory) Create(ctx context.Context) (protocol.Agent, error) {
	return &Agent{}, nil
}

type Agent struct{}

func (a *Agent) Run(ctx context.Context, executionDate string, parameters map[string]any, progress protocol.ProgressCallback) (models.ResultPayload, error) {
	sampler := synth.NewSampler(executionDate, "sla")

	target := 99.5
	if v, ok := parameters["availability_target"].(float64); ok {
		target = v
	}

	progress(10, "loading route measurements")

	routesEvaluated := sampler.IntBetween(120, 480)
	availability := sampler.Percentage(97.0, 100.0)
	avgLatency := sampler.Percentage(18, 95)

	progress(60, "checking contracted service levels")

	breaches := 0
	if availability < target {
		breaches = sampler.IntBetween(1, 12)
	}

	progress(100, "SLA evaluation finished")

	return models.ResultPayload{
		"routes_evaluated":        routesEvaluated,
		"availability_percentage": availability,
		"availability_target":     target,
		"avg_latency_ms":          avgLatency,
		"sla_breaches":            breaches,
	}, nil
}
