package models

// WorkflowSummary is the aggregate produced after a workflow completes with
// every agent successful. KeyMetrics holds values extracted from step
// payloads by convention-based key lookup; a key absent from every payload
// is simply omitted.
type WorkflowSummary struct {
	ExecutionTimeMs int64          `json:"execution_time_ms"`
	AgentsExecuted  int            `json:"agents_executed"`
	SuccessRate     float64        `json:"success_rate"`
	KeyMetrics      map[string]any `json:"key_metrics"`
	Recommendations []string       `json:"recommendations"`
}
