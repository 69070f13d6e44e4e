// Package fraud implements the traffic fraud detection agent.
package fraud

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
	return "fraud"
}

func (*AgentFactory) Name() string {
	return "Fraud Detector"
}

func (*AgentFactory) Description() string {
	return "Scores call patterns for SIM-box and wangiri style anomalies"
}

func (*AgentFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"alert_threshold": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
		},
	}
}

func (f *AgentFactory) Create(ctx context.Context) (protocol.Agent, error) {
	return &Agent{}, nil
}

type Agent struct{}

func (a *Agent) Run(ctx context.Context, executionDate string, parameters map[string]any, progress protocol.ProgressCallback) (models.ResultPayload, error) {
	sampler := synth.NewSampler(executionDate, "fraud")

	threshold := 0.8
	if v, ok := parameters["alert_threshold"].(float64); ok {
		threshold = v
	}

	progress(20, "scoring call detail records")

	callsScored := sampler.IntBetween(80_000, 1_200_000)
	fraudScore := sampler.Percentage(0.01, 0.99)

	progress(70, "correlating high risk numbers")

	alerts := 0
	highRiskCalls := 0
	blockedNumbers := 0

	if fraudScore >= threshold {
		alerts = sampler.IntBetween(1, 40)
		highRiskCalls = sampler.IntBetween(alerts, alerts*50)
		blockedNumbers = sampler.IntBetween(0, alerts)
	}

	progress(100, "fraud scan finished")

	return models.ResultPayload{
		"calls_scored":    callsScored,
		"fraud_score":     fraudScore,
		"alert_threshold": threshold,
		"fraud_alerts":    alerts,
		"high_risk_calls": highRiskCalls,
		"blocked_numbers": blockedNumbers,
	}, nil
}
