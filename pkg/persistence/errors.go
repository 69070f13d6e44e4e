// Package persistence provides standardized error types for result store operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard result store error types that all implementations should use.
var (
	// ErrExecutionNotFound indicates no execution record exists for the given identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrInvalidExecution indicates the execution record is malformed (e.g. empty ID).
	ErrInvalidExecution = errors.New("invalid execution record")
)

// ExecutionError wraps result store errors with additional context.
type ExecutionError struct {
	Op          string // Operation being performed (e.g., "Persist", "GetByID")
	ExecutionID string
	Err         error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s operation failed for execution %s: %v", e.Op, e.ExecutionID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExecutionError creates a new execution error with context.
func NewExecutionError(op, executionID string, err error) *ExecutionError {
	return &ExecutionError{
		Op:          op,
		ExecutionID: executionID,
		Err:         err,
	}
}

// IsExecutionNotFound checks if an error indicates an execution record was not found.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}
