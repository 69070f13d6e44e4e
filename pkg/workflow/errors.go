// Package workflow implements the orchestration core: the running-workflow
// registry and the state machine that executes agent workflows.
package workflow

import "errors"

var (
	// ErrDuplicateWorkflow indicates a workflow ID is already registered as running.
	ErrDuplicateWorkflow = errors.New("workflow already running")

	// ErrWorkflowNotFound indicates no running workflow exists for the given
	// identifier. Terminal workflows leave the registry, so callers looking
	// for a finished run must query the result store instead.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrNoAgents indicates a request with an empty agent list.
	ErrNoAgents = errors.New("no agents requested")

	// ErrUnknownAgent indicates a requested agent name is not registered.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrDuplicateAgent indicates the same agent was requested twice.
	ErrDuplicateAgent = errors.New("duplicate agent in request")
)

// IsWorkflowNotFound checks if an error indicates a missing running workflow.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}
