// Package persistence provides the durable result store abstraction for workflow executions.
package persistence

import (
	"context"

	"github.com/carrierops/chorus/pkg/models"
)

// ResultStore persists finished (or partially finished) workflow executions.
//
// PersistExecution is an upsert keyed by the execution ID: persisting the
// same execution twice produces one stored record, never two. The
// orchestrator relies on this to re-persist a record it already wrote for a
// failing workflow without duplicating it.
type ResultStore interface {
	PersistExecution(ctx context.Context, execution *models.WorkflowExecution) error
	ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error)
	Executions(ctx context.Context) ([]*models.WorkflowExecution, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
