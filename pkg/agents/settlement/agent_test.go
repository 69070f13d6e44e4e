package settlement_test

import (
	"context"
	"testing"

	"github.com/carrierops/chorus/pkg/agents/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentFactory_Metadata(t *testing.T) {
	t.Parallel()

	factory := settlement.NewAgentFactory()

	assert.Equal(t, "settlement", factory.ID())
	assert.NotEmpty(t, factory.Name())
	assert.NotEmpty(t, factory.Description())
	assert.Equal(t, "object", factory.Schema()["type"])
}

func TestAgent_RunProducesConventionKeys(t *testing.T) {
	t.Parallel()

	factory := settlement.NewAgentFactory()
	agent, err := factory.Create(context.Background())
	require.NoError(t, err)

	payload, err := agent.Run(context.Background(), "2026-08-29", nil, func(float64, string) {})
	require.NoError(t, err)

	for _, key := range []string{
		"partners_settled",
		"records_matched",
		"disputed_records",
		"settlement_total_usd",
	} {
		assert.Contains(t, payload, key)
	}

	matched, ok := payload["records_matched"].(int)
	require.True(t, ok)

	disputed, ok := payload["disputed_records"].(int)
	require.True(t, ok)

	assert.LessOrEqual(t, disputed, matched)
}

func TestAgent_RunUsesRequestedPartnerList(t *testing.T) {
	t.Parallel()

	factory := settlement.NewAgentFactory()
	agent, err := factory.Create(context.Background())
	require.NoError(t, err)

	payload, err := agent.Run(context.Background(), "2026-08-29",
		map[string]any{"partners": []any{"carrier-a", "carrier-b", "carrier-c"}},
		func(float64, string) {})
	require.NoError(t, err)

	assert.Equal(t, 3, payload["partners_settled"])
}

func TestAgent_RunIsDeterministicPerDate(t *testing.T) {
	t.Parallel()

	factory := settlement.NewAgentFactory()
	agent, err := factory.Create(context.Background())
	require.NoError(t, err)

	noop := func(float64, string) {}

	first, err := agent.Run(context.Background(), "2026-08-29", nil, noop)
	require.NoError(t, err)

	second, err := agent.Run(context.Background(), "2026-08-29", nil, noop)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
