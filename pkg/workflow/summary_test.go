package workflow_test

import (
	"testing"
	"time"

	"github.com/carrierops/chorus/pkg/models"
	"github.com/carrierops/chorus/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedExecution(steps []*models.StepResult) *models.WorkflowExecution {
	started := time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC)
	completed := started.Add(90 * time.Second)

	return &models.WorkflowExecution{
		ID:            "wf-summary",
		Status:        models.ExecutionStatusCompleted,
		ExecutionDate: "2026-08-29",
		StartedAt:     started,
		CompletedAt:   &completed,
		Steps:         steps,
	}
}

func TestComputeSummary_ExtractsConventionMetrics(t *testing.T) {
	t.Parallel()

	execution := finishedExecution([]*models.StepResult{
		{
			AgentName: "sla_compliance",
			Status:    models.StepStatusCompleted,
			Result: models.ResultPayload{
				"availability_percentage": 99.95,
				"sla_breaches":            0,
				"internal_detail":         "ignored",
			},
		},
		{
			AgentName: "cost_analysis",
			Status:    models.StepStatusCompleted,
			Result: models.ResultPayload{
				"total_cost_usd": 48211.20,
				"minutes_billed": 1250000,
			},
		},
	})

	summary := workflow.ComputeSummary(execution)

	assert.Equal(t, int64(90000), summary.ExecutionTimeMs)
	assert.Equal(t, 2, summary.AgentsExecuted)
	assert.InEpsilon(t, 100.0, summary.SuccessRate, 0.001)

	assert.Equal(t, 99.95, summary.KeyMetrics["availability_percentage"])
	assert.Equal(t, 0, summary.KeyMetrics["sla_breaches"])
	assert.Equal(t, 48211.20, summary.KeyMetrics["total_cost_usd"])
	assert.Equal(t, 1250000, summary.KeyMetrics["minutes_billed"])
	assert.NotContains(t, summary.KeyMetrics, "internal_detail")
	assert.Empty(t, summary.Recommendations)
}

func TestComputeSummary_SkipsFailedStepPayloads(t *testing.T) {
	t.Parallel()

	execution := finishedExecution([]*models.StepResult{
		{
			AgentName: "sla_compliance",
			Status:    models.StepStatusCompleted,
			Result:    models.ResultPayload{"sla_breaches": 0},
		},
		{
			AgentName:    "fraud_detection",
			Status:       models.StepStatusFailed,
			Result:       models.ResultPayload{"fraud_alerts": 99},
			ErrorMessage: "scoring backend timeout",
		},
	})
	execution.Status = models.ExecutionStatusFailed

	summary := workflow.ComputeSummary(execution)

	assert.Equal(t, 2, summary.AgentsExecuted)
	assert.InEpsilon(t, 50.0, summary.SuccessRate, 0.001)
	assert.NotContains(t, summary.KeyMetrics, "fraud_alerts")
}

func TestComputeSummary_Recommendations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  models.ResultPayload
		expected int
		contains string
	}{
		{
			name:     "low compliance",
			payload:  models.ResultPayload{"compliance_percentage": 91.2},
			expected: 1,
			contains: "compliance",
		},
		{
			name:     "compliance at target",
			payload:  models.ResultPayload{"compliance_percentage": 95.0},
			expected: 0,
		},
		{
			name:     "fraud alerts raised",
			payload:  models.ResultPayload{"fraud_alerts": 3},
			expected: 1,
			contains: "fraud",
		},
		{
			name:     "sla breaches",
			payload:  models.ResultPayload{"sla_breaches": 2},
			expected: 1,
			contains: "SLA",
		},
		{
			name:     "thin margins",
			payload:  models.ResultPayload{"avg_margin_percentage": 3.4},
			expected: 1,
			contains: "margin",
		},
		{
			name:     "disputed settlements",
			payload:  models.ResultPayload{"disputed_records": 7},
			expected: 1,
			contains: "disputed",
		},
		{
			name: "all clear",
			payload: models.ResultPayload{
				"compliance_percentage": 99.1,
				"fraud_alerts":          0,
				"sla_breaches":          0,
				"avg_margin_percentage": 12.5,
				"disputed_records":      0,
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			execution := finishedExecution([]*models.StepResult{
				{AgentName: "agent", Status: models.StepStatusCompleted, Result: tt.payload},
			})

			summary := workflow.ComputeSummary(execution)

			require.Len(t, summary.Recommendations, tt.expected)

			if tt.contains != "" {
				assert.Contains(t, summary.Recommendations[0], tt.contains)
			}
		})
	}
}

func TestComputeSummary_MetricsSurviveJSONNumbers(t *testing.T) {
	t.Parallel()

	// After a JSON round trip all numbers arrive as float64.
	execution := finishedExecution([]*models.StepResult{
		{
			AgentName: "fraud_detection",
			Status:    models.StepStatusCompleted,
			Result:    models.ResultPayload{"fraud_alerts": float64(2)},
		},
	})

	summary := workflow.ComputeSummary(execution)

	require.Len(t, summary.Recommendations, 1)
	assert.Contains(t, summary.Recommendations[0], "2 fraud alerts")
}

func TestComputeSummary_EmptyExecution(t *testing.T) {
	t.Parallel()

	execution := finishedExecution([]*models.StepResult{})

	summary := workflow.ComputeSummary(execution)

	assert.Zero(t, summary.SuccessRate)
	assert.Zero(t, summary.AgentsExecuted)
	assert.Empty(t, summary.KeyMetrics)
	assert.Empty(t, summary.Recommendations)
}

func TestComputeSummary_NoCompletedAtLeavesDurationZero(t *testing.T) {
	t.Parallel()

	execution := finishedExecution(nil)
	execution.CompletedAt = nil

	summary := workflow.ComputeSummary(execution)

	assert.Zero(t, summary.ExecutionTimeMs)
}
