// Package compliance implements the regulatory compliance audit agent.
package compliance

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
	return "compliance"
}

func (*AgentFactory) Name() string {
	return "Compliance Auditor"
}

func (*AgentFactory) Description() string {
	return "Audits traffic records against regulatory and contractual obligations"
}

func (*AgentFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"regulations": map[string]any{
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
	sampler := synth.NewSampler(executionDate, "compliance")

	progress(20, "auditing traffic records")

	recordsAudited := sampler.IntBetween(20_000, 600_000)
	compliancePct := sampler.Percentage(88.0, 100.0)

	progress(70, "collecting violations")

	violations := 0
	if compliancePct < 100 {
		violations = sampler.IntBetween(1, 60)
	}

	progress(100, "compliance audit finished")

	return models.ResultPayload{
		"records_audited":       recordsAudited,
		"compliance_percentage": compliancePct,
		"violations":            violations,
	}, nil
}
