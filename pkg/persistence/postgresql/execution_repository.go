package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carrierops/chorus/pkg/models"
	"github.com/carrierops/chorus/pkg/persistence"
)

// ExecutionRepository handles execution-related database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// Upsert stores an execution and its steps atomically. Persisting the same
// execution ID twice overwrites the previous record.
func (er *ExecutionRepository) Upsert(ctx context.Context, execution *models.WorkflowExecution) error {
	if execution == nil || execution.ID == "" {
		return persistence.NewExecutionError("Persist", "", persistence.ErrInvalidExecution)
	}

	requestedAgents, err := json.Marshal(execution.RequestedAgents)
	if err != nil {
		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	parameters, err := marshalNullable(execution.Parameters)
	if err != nil {
		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	summary, err := marshalNullable(execution.Summary)
	if err != nil {
		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	transaction, err := er.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	upsertSQL := `
		INSERT INTO workflow_executions
			(id, status, execution_date, requested_agents, parameters, started_at, completed_at, overall_progress, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			execution_date = EXCLUDED.execution_date,
			requested_agents = EXCLUDED.requested_agents,
			parameters = EXCLUDED.parameters,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			overall_progress = EXCLUDED.overall_progress,
			summary = EXCLUDED.summary
	`

	_, err = transaction.ExecContext(ctx, upsertSQL,
		execution.ID,
		string(execution.Status),
		execution.ExecutionDate,
		requestedAgents,
		parameters,
		execution.StartedAt,
		nullableTime(execution.CompletedAt),
		execution.OverallProgress,
		summary,
	)
	if err != nil {
		_ = transaction.Rollback()

		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	_, err = transaction.ExecContext(ctx, "DELETE FROM workflow_steps WHERE execution_id = $1", execution.ID)
	if err != nil {
		_ = transaction.Rollback()

		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	insertStepSQL := `
		INSERT INTO workflow_steps
			(execution_id, position, agent_name, status, start_time, end_time, result, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for position, step := range execution.Steps {
		result, err := marshalNullable(step.Result)
		if err != nil {
			_ = transaction.Rollback()

			return persistence.NewExecutionError("Persist", execution.ID, err)
		}

		_, err = transaction.ExecContext(ctx, insertStepSQL,
			execution.ID,
			position,
			step.AgentName,
			string(step.Status),
			step.StartTime,
			step.EndTime,
			result,
			nullableString(step.ErrorMessage),
		)
		if err != nil {
			_ = transaction.Rollback()

			return persistence.NewExecutionError("Persist", execution.ID, err)
		}
	}

	err = transaction.Commit()
	if err != nil {
		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	return nil
}

// GetByID returns an execution record with its steps in request order.
func (er *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `
		SELECT id, status, execution_date, requested_agents, parameters, started_at, completed_at, overall_progress, summary
		FROM workflow_executions
		WHERE id = $1
	`

	execution, err := er.scanExecution(er.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	steps, err := er.stepsForExecution(ctx, id)
	if err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	execution.Steps = steps

	return execution, nil
}

// GetAll returns all execution records, most recent first.
func (er *ExecutionRepository) GetAll(ctx context.Context) ([]*models.WorkflowExecution, error) {
	query := `
		SELECT id, status, execution_date, requested_agents, parameters, started_at, completed_at, overall_progress, summary
		FROM workflow_executions
		ORDER BY started_at DESC
	`

	rows, err := er.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow executions: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			er.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	var executions []*models.WorkflowExecution

	for rows.Next() {
		execution, err := er.scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	for _, execution := range executions {
		steps, err := er.stepsForExecution(ctx, execution.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load steps for execution %s: %w", execution.ID, err)
		}

		execution.Steps = steps
	}

	return executions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (er *ExecutionRepository) scanExecution(row rowScanner) (*models.WorkflowExecution, error) {
	var (
		execution       models.WorkflowExecution
		requestedAgents []byte
		parameters      []byte
		summary         []byte
		completedAt     sql.NullTime
	)

	err := row.Scan(
		&execution.ID,
		&execution.Status,
		&execution.ExecutionDate,
		&requestedAgents,
		&parameters,
		&execution.StartedAt,
		&completedAt,
		&execution.OverallProgress,
		&summary,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(requestedAgents, &execution.RequestedAgents); err != nil {
		return nil, fmt.Errorf("failed to decode requested agents: %w", err)
	}

	if parameters != nil {
		if err := json.Unmarshal(parameters, &execution.Parameters); err != nil {
			return nil, fmt.Errorf("failed to decode parameters: %w", err)
		}
	}

	if summary != nil {
		execution.Summary = &models.WorkflowSummary{}
		if err := json.Unmarshal(summary, execution.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary: %w", err)
		}
	}

	if completedAt.Valid {
		t := completedAt.Time
		execution.CompletedAt = &t
	}

	return &execution, nil
}

func (er *ExecutionRepository) stepsForExecution(ctx context.Context, executionID string) ([]*models.StepResult, error) {
	query := `
		SELECT agent_name, status, start_time, end_time, result, error_message
		FROM workflow_steps
		WHERE execution_id = $1
		ORDER BY position
	`

	rows, err := er.db.QueryContext(ctx, query, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow steps: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			er.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	var steps []*models.StepResult

	for rows.Next() {
		var (
			step         models.StepResult
			result       []byte
			errorMessage sql.NullString
		)

		err := rows.Scan(&step.AgentName, &step.Status, &step.StartTime, &step.EndTime, &result, &errorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}

		if result != nil {
			if err := json.Unmarshal(result, &step.Result); err != nil {
				return nil, fmt.Errorf("failed to decode step result: %w", err)
			}
		}

		if errorMessage.Valid {
			step.ErrorMessage = errorMessage.String
		}

		steps = append(steps, &step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating steps: %w", err)
	}

	return steps, nil
}

func marshalNullable(v any) ([]byte, error) {
	switch value := v.(type) {
	case map[string]any:
		if value == nil {
			return nil, nil
		}
	case models.ResultPayload:
		if value == nil {
			return nil, nil
		}
	case *models.WorkflowSummary:
		if value == nil {
			return nil, nil
		}
	}

	return json.Marshal(v)
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: *t, Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}

	return sql.NullString{String: s, Valid: true}
}
