package workflow

import (
	"fmt"

	"github.com/carrierops/chorus/pkg/models"
)

// summaryMetricKeys are the convention payload keys promoted into the
// summary's key_metrics map when an agent's payload carries them.
var summaryMetricKeys = []string{
	"availability_percentage",
	"avg_margin_percentage",
	"blocked_numbers",
	"compliance_percentage",
	"cost_per_minute_usd",
	"disputed_records",
	"fraud_alerts",
	"fraud_score",
	"minutes_billed",
	"records_audited",
	"reroute_suggestions",
	"routes_evaluated",
	"settlement_total_usd",
	"sla_breaches",
	"total_cost_usd",
	"violations",
}

const (
	complianceWarnThreshold = 95.0
	marginWarnThreshold     = 5.0
)

// ComputeSummary derives the workflow summary from a finished execution. It
// is a pure function and never fails: a convention key absent from every
// payload is simply omitted from key_metrics.
func ComputeSummary(execution *models.WorkflowExecution) *models.WorkflowSummary {
	summary := &models.WorkflowSummary{
		AgentsExecuted:  len(execution.Steps),
		KeyMetrics:      make(map[string]any),
		Recommendations: []string{},
	}

	if execution.CompletedAt != nil {
		summary.ExecutionTimeMs = execution.CompletedAt.Sub(execution.StartedAt).Milliseconds()
	}

	if len(execution.Steps) > 0 {
		summary.SuccessRate = float64(execution.CompletedSteps()) / float64(len(execution.Steps)) * 100
	}

	for _, step := range execution.Steps {
		if step.Status != models.StepStatusCompleted || step.Result == nil {
			continue
		}

		for _, key := range summaryMetricKeys {
			if value, ok := step.Result[key]; ok {
				summary.KeyMetrics[key] = value
			}
		}
	}

	summary.Recommendations = recommendations(summary.KeyMetrics)

	return summary
}

// recommendations applies simple threshold rules over the extracted metrics.
func recommendations(metrics map[string]any) []string {
	recs := []string{}

	if compliance, ok := numericMetric(metrics, "compliance_percentage"); ok && compliance < complianceWarnThreshold {
		recs = append(recs, fmt.Sprintf("compliance at %.1f%% is below the %.0f%% target; review flagged records", compliance, complianceWarnThreshold))
	}

	if alerts, ok := numericMetric(metrics, "fraud_alerts"); ok && alerts > 0 {
		recs = append(recs, fmt.Sprintf("%d fraud alerts raised; investigate high risk numbers", int(alerts)))
	}

	if breaches, ok := numericMetric(metrics, "sla_breaches"); ok && breaches > 0 {
		recs = append(recs, fmt.Sprintf("%d SLA breaches detected; review affected routes", int(breaches)))
	}

	if margin, ok := numericMetric(metrics, "avg_margin_percentage"); ok && margin < marginWarnThreshold {
		recs = append(recs, fmt.Sprintf("average route margin at %.1f%% is thin; consider reroute suggestions", margin))
	}

	if disputed, ok := numericMetric(metrics, "disputed_records"); ok && disputed > 0 {
		recs = append(recs, fmt.Sprintf("%d settlement records disputed; reconcile with partners", int(disputed)))
	}

	return recs
}

// numericMetric reads a metric that may arrive as int (in-memory payload) or
// float64 (after a JSON round trip).
func numericMetric(metrics map[string]any, key string) (float64, bool) {
	value, ok := metrics[key]
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
