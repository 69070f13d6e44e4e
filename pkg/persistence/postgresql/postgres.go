// Package postgresql provides the PostgreSQL result store implementation.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/carrierops/chorus/pkg/models"
	"github.com/carrierops/chorus/pkg/persistence/sqlbase"
)

// ResultStore implements the result store on PostgreSQL.
type ResultStore struct {
	db            *sql.DB
	logger        *slog.Logger
	executionRepo *ExecutionRepository
}

// NewResultStore opens the database, runs migrations, and returns the store.
func NewResultStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*ResultStore, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &ResultStore{
		db:            database,
		logger:        logger,
		executionRepo: NewExecutionRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (s *ResultStore) Close(ctx context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (s *ResultStore) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// PersistExecution upserts an execution record and its steps.
func (s *ResultStore) PersistExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	return s.executionRepo.Upsert(ctx, execution)
}

// ExecutionByID returns an execution record by its ID.
func (s *ResultStore) ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	return s.executionRepo.GetByID(ctx, id)
}

// Executions returns all execution records, most recent first.
func (s *ResultStore) Executions(ctx context.Context) ([]*models.WorkflowExecution, error) {
	return s.executionRepo.GetAll(ctx)
}
