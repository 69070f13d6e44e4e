package fraud_test

import (
	"context"
	"testing"

	"github.com/carrierops/chorus/pkg/agents/fraud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentFactory_Metadata(t *testing.T) {
	t.Parallel()

	factory := fraud.NewAgentFactory()

	assert.Equal(t, "fraud", factory.ID())
	assert.NotEmpty(t, factory.Name())
	assert.NotEmpty(t, factory.Description())
	assert.Equal(t, "object", factory.Schema()["type"])
}

func TestAgent_RunProducesConventionKeys(t *testing.T) {
	t.Parallel()

	factory := fraud.NewAgentFactory()
	agent, err := factory.Create(context.Background())
	require.NoError(t, err)

	payload, err := agent.Run(context.Background(), "2026-08-29", nil, func(float64, string) {})
	require.NoError(t, err)

	for _, key := range []string{
		"calls_scored",
		"fraud_score",
		"alert_threshold",
		"fraud_alerts",
		"high_risk_calls",
		"blocked_numbers",
	} {
		assert.Contains(t, payload, key)
	}

	assert.Equal(t, 0.8, payload["alert_threshold"])
}

func TestAgent_RunThresholdGatesAlerts(t *testing.T) {
	t.Parallel()

	factory := fraud.NewAgentFactory()
	agent, err := factory.Create(context.Background())
	require.NoError(t, err)

	noop := func(float64, string) {}

	// A threshold above any possible score never raises alerts.
	quiet, err := agent.Run(context.Background(), "2026-08-29",
		map[string]any{"alert_threshold": 1.0}, noop)
	require.NoError(t, err)
	assert.Equal(t, 0, quiet["fraud_alerts"])
	assert.Equal(t, 0, quiet["high_risk_calls"])
	assert.Equal(t, 0, quiet["blocked_numbers"])

	// A threshold of zero always trips.
	noisy, err := agent.Run(context.Background(), "2026-08-29",
		map[string]any{"alert_threshold": 0.0}, noop)
	require.NoError(t, err)

	alerts, ok := noisy["fraud_alerts"].(int)
	require.True(t, ok)
	assert.Positive(t, alerts)

	highRisk, ok := noisy["high_risk_calls"].(int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, highRisk, alerts)
}

func TestAgent_RunIsDeterministicPerDate(t *testing.T) {
	t.Parallel()

	factory := fraud.NewAgentFactory()
	agent, err := factory.Create(context.Background())
	require.NoError(t, err)

	noop := func(float64, string) {}

	first, err := agent.Run(context.Background(), "2026-08-29", nil, noop)
	require.NoError(t, err)

	second, err := agent.Run(context.Background(), "2026-08-29", nil, noop)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
