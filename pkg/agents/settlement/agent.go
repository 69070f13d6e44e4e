// Package settlement implements the partner settlement reconciliation agent.
package settlement

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
	return "settlement"
}

func (*AgentFactory) Name() string {
	return "Settlement Reconciler"
}

func (*AgentFactory) Description() string {
	return "Reconciles bilateral traffic records and computes settlement balances"
}

func (*AgentFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"partners": map[string]any{
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
	sampler := synth.NewSampler(executionDate, "settlement")

	partnersSettled := sampler.IntBetween(4, 28)
	if raw, ok := parameters["partners"].([]any); ok && len(raw) > 0 {
		partnersSettled = len(raw)
	}

	progress(30, "matching bilateral traffic records")

	recordsMatched := sampler.IntBetween(10_000, 400_000)
	disputedRecords := sampler.IntBetween(0, recordsMatched/200)

	progress(85, "computing settlement balances")

	settlementTotal := sampler.Percentage(5_000, 250_000)

	progress(100, "settlement reconciliation finished")

	return models.ResultPayload{
		"partners_settled":     partnersSettled,
		"records_matched":      recordsMatched,
		"disputed_records":     disputedRecords,
		"settlement_total_usd": settlementTotal,
	}, nil
}
