// Package protocol defines the interfaces and contracts for pluggable analytics agents.
package protocol

import (
	"context"

	"github.com/carrierops/chorus/pkg/models"
)

// ProgressCallback receives an agent's own fractional progress. Agents may
// call it zero or more times; percent values are relayed as given, without
// monotonicity checks.
type ProgressCallback func(percent float64, message string)

// Agent is a unit of analytics work. Run computes against the given logical
// execution date (YYYY-MM-DD) and the workflow's shared parameters, and
// returns its payload. Expected "no data" conditions are encoded in the
// payload, not returned as errors.
//
// Agents are non-interruptible units: once started they run to completion or
// failure, and cancellation of the surrounding workflow only takes effect at
// the next agent boundary. An agent that needs to bound its own run time
// must enforce the timeout internally and fail through the normal error path.
type Agent interface {
	Run(ctx context.Context, executionDate string, parameters map[string]any, progress ProgressCallback) (models.ResultPayload, error)
}

// AgentFactory creates agent instances and provides metadata about the agent type.
type AgentFactory interface {
	// Create creates a new agent instance.
	Create(ctx context.Context) (Agent, error)

	// ID returns the unique name used to request this agent in a workflow.
	ID() string

	// Name returns the human-readable name for this agent type.
	Name() string

	// Description returns a description of what this agent computes.
	Description() string

	// Schema returns the JSON schema for the parameters this agent understands.
	Schema() map[string]any
}
