// Package cost implements the interconnect cost analysis agent.
package cost

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
	return "cost"
}

func (*AgentFactory) Name() string {
	return "Cost Analyzer"
}

func (*AgentFactory) Description() string {
	return "Aggregates billed minutes and termination costs per destination"
}

func (*AgentFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"currency": map[string]any{
				"type": "string",
				"enum": []any{"USD", "EUR"},
			},
			"destinations": map[string]any{
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

var defaultDestinations = []string{"DE", "FR", "GB", "US", "IN", "BR"}

func (a *Agent) Run(ctx context.Context, executionDate string, parameters map[string]any, progress protocol.ProgressCallback) (models.ResultPayload, error) {
	sampler := synth.NewSampler(executionDate, "cost")

	destinations := defaultDestinations
	if raw, ok := parameters["destinations"].([]any); ok && len(raw) > 0 {
		destinations = make([]string, 0, len(raw))
		for _, d := range raw {
			if s, ok := d.(string); ok {
				destinations = append(destinations, s)
			}
		}
	}

	progress(15, "aggregating billed minutes")

	minutesBilled := sampler.IntBetween(50_000, 900_000)
	costPerMinute := sampler.Percentage(0.004, 0.06)
	totalCost := synth.Round2(float64(minutesBilled) * costPerMinute)

	progress(75, "ranking destinations by spend")

	topDestination := sampler.Pick(destinations)

	progress(100, "cost aggregation finished")

	return models.ResultPayload{
		"minutes_billed":       minutesBilled,
		"cost_per_minute_usd":  costPerMinute,
		"total_cost_usd":       totalCost,
		"top_cost_destination": topDestination,
	}, nil
}
