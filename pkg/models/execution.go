// Package models defines the core domain records for agent workflow execution.
package models

import "time"

// ExecutionStatus represents the lifecycle state of a workflow execution.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// IsTerminal reports whether the status is final. A terminal execution is
// immutable and no longer present in the running-workflow registry.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// StepStatus represents the outcome of a single agent run within a workflow.
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// ResultPayload is the opaque structure an agent returns. The orchestrator
// never interprets it beyond the convention-based key lookup used for
// summary metrics.
type ResultPayload map[string]any

// StepResult is the outcome of running one agent within a workflow. It is
// owned exclusively by its parent WorkflowExecution.
type StepResult struct {
	AgentName    string        `json:"agent_name"`
	Status       StepStatus    `json:"status"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Result       ResultPayload `json:"result,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// WorkflowExecution represents one run of an agent workflow.
//
// OverallProgress advances in whole-agent increments (floor(100*k/n) with k
// completed agents) and is monotonically non-decreasing while the execution
// is running. Per-agent percentages are surfaced only through the event
// stream, never folded into this aggregate.
type WorkflowExecution struct {
	ID              string           `json:"id"                     validate:"required"`
	Status          ExecutionStatus  `json:"status"`
	ExecutionDate   string           `json:"execution_date"         validate:"required,datetime=2006-01-02"`
	RequestedAgents []string         `json:"requested_agents"       validate:"required,min=1,unique"`
	Parameters      map[string]any   `json:"parameters,omitempty"`
	StartedAt       time.Time        `json:"started_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	OverallProgress int              `json:"overall_progress"`
	Steps           []*StepResult    `json:"steps"`
	Summary         *WorkflowSummary `json:"summary,omitempty"`
}

// CompletedSteps returns the number of steps that finished successfully.
func (e *WorkflowExecution) CompletedSteps() int {
	count := 0

	for _, step := range e.Steps {
		if step.Status == StepStatusCompleted {
			count++
		}
	}

	return count
}

// FailedStep returns the failed step, if any. At most one step can fail
// because the orchestrator stops at the first agent error.
func (e *WorkflowExecution) FailedStep() *StepResult {
	for _, step := range e.Steps {
		if step.Status == StepStatusFailed {
			return step
		}
	}

	return nil
}
