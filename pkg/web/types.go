// Package web provides HTTP request and response types for the workflow API.
package web

// SubmitWorkflowRequest represents the request body for submitting a workflow.
type SubmitWorkflowRequest struct {
	WorkflowID    string         `json:"workflow_id,omitempty"`
	ExecutionDate string         `json:"execution_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Agents        []string       `json:"agents"                   validate:"required,min=1,unique,dive,min=1"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// SubmitWorkflowResponse is returned when a workflow has been accepted for
// asynchronous execution.
type SubmitWorkflowResponse struct {
	WorkflowID string `json:"workflow_id"`
	Status     string `json:"status"`
}

// CancelWorkflowResponse reports the outcome of a cancellation request.
type CancelWorkflowResponse struct {
	WorkflowID string `json:"workflow_id"`
	Cancelling bool   `json:"cancelling"`
}
