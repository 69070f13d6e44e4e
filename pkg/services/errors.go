// Package services provides the submission service between transport layers
// and the workflow orchestrator.
package services

import (
	"errors"

	"github.com/carrierops/chorus/pkg/workflow"
)

var (
	// ErrInvalidParameters indicates the submitted parameters failed schema
	// validation for one of the requested agents.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInvalidExecutionDate indicates the execution date is not a valid
	// YYYY-MM-DD date.
	ErrInvalidExecutionDate = errors.New("invalid execution date")
)

// IsValidationError checks if an error is a request validation error that
// should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidParameters) ||
		errors.Is(err, ErrInvalidExecutionDate) ||
		errors.Is(err, workflow.ErrNoAgents) ||
		errors.Is(err, workflow.ErrUnknownAgent) ||
		errors.Is(err, workflow.ErrDuplicateAgent)
}

// IsConflictError checks if an error is a conflict that should map to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, workflow.ErrDuplicateWorkflow)
}
