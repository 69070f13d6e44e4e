package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carrierops/chorus/pkg/models"
	"github.com/carrierops/chorus/pkg/persistence"
	"github.com/carrierops/chorus/pkg/protocol"
	"github.com/carrierops/chorus/pkg/registry"
	"github.com/carrierops/chorus/pkg/workflow"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

const dateLayout = "2006-01-02"

// SubmitRequest describes one workflow submission from any transport
// (HTTP, queue, scheduler).
type SubmitRequest struct {
	WorkflowID    string         `json:"workflow_id,omitempty"`
	ExecutionDate string         `json:"execution_date,omitempty"`
	AgentNames    []string       `json:"agents"                   validate:"required,min=1,unique"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// AgentInfo describes a registered agent for discovery endpoints.
type AgentInfo struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

// Submission validates workflow requests and hands them to the orchestrator
// asynchronously. It is the single entry point shared by the HTTP API, the
// Redis queue consumer, and the cron scheduler.
type Submission struct {
	logger       *slog.Logger
	agents       *registry.Registry
	orchestrator *workflow.Orchestrator
	store        persistence.ResultStore
}

func NewSubmission(
	logger *slog.Logger,
	agents *registry.Registry,
	orchestrator *workflow.Orchestrator,
	store persistence.ResultStore,
) *Submission {
	return &Submission{
		logger:       logger.With("module", "submission"),
		agents:       agents,
		orchestrator: orchestrator,
		store:        store,
	}
}

// Submit validates the request and registers the workflow synchronously,
// then runs it in its own goroutine and returns the workflow ID immediately.
// Validation failures, including a workflow ID that is already running, mean
// no workflow was created, registered, or persisted.
func (s *Submission) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	executionDate := req.ExecutionDate
	if executionDate == "" {
		executionDate = time.Now().UTC().Format(dateLayout)
	}

	if _, err := time.Parse(dateLayout, executionDate); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidExecutionDate, executionDate)
	}

	workflowID := req.WorkflowID
	if workflowID == "" {
		workflowID = "wf-" + uuid.New().String()
	}

	orchestratorReq := workflow.Request{
		WorkflowID:    workflowID,
		ExecutionDate: executionDate,
		AgentNames:    req.AgentNames,
		Parameters:    req.Parameters,
	}

	if err := s.validate(orchestratorReq); err != nil {
		return "", err
	}

	// Execution is detached from the submitting request's lifetime: an HTTP
	// client disconnecting must not cancel a running workflow.
	runCtx := context.WithoutCancel(ctx)

	if err := s.orchestrator.Start(runCtx, orchestratorReq); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "Workflow submitted",
		"workflow_id", workflowID, "agents", req.AgentNames)

	return workflowID, nil
}

// Status looks up a workflow in the live registry first and falls back to
// the result store for terminal runs.
func (s *Submission) Status(ctx context.Context, workflowID string) (*models.WorkflowExecution, error) {
	execution, err := s.orchestrator.Status(workflowID)
	if err == nil {
		return execution, nil
	}

	if !errors.Is(err, workflow.ErrWorkflowNotFound) {
		return nil, err
	}

	return s.store.ExecutionByID(ctx, workflowID)
}

// Cancel flags a running workflow for cooperative cancellation. Returns
// whether a running workflow was found.
func (s *Submission) Cancel(workflowID string) bool {
	return s.orchestrator.Cancel(workflowID)
}

// Executions lists persisted execution records, most recent first.
func (s *Submission) Executions(ctx context.Context) ([]*models.WorkflowExecution, error) {
	return s.store.Executions(ctx)
}

// Agents lists the registered agents with their parameter schemas.
func (s *Submission) Agents() []AgentInfo {
	factories := s.agents.AvailableAgents()

	infos := make([]AgentInfo, 0, len(factories))
	for _, factory := range factories {
		infos = append(infos, agentInfo(factory))
	}

	return infos
}

func agentInfo(factory protocol.AgentFactory) AgentInfo {
	return AgentInfo{
		ID:          factory.ID(),
		Name:        factory.Name(),
		Description: factory.Description(),
		Schema:      factory.Schema(),
	}
}

// validate runs the orchestrator's fail-fast checks plus per-agent JSON
// schema validation of the shared parameters.
func (s *Submission) validate(req workflow.Request) error {
	if len(req.AgentNames) == 0 {
		return workflow.ErrNoAgents
	}

	seen := make(map[string]struct{}, len(req.AgentNames))

	for _, name := range req.AgentNames {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s", workflow.ErrDuplicateAgent, name)
		}

		seen[name] = struct{}{}

		if !s.agents.IsAgentRegistered(name) {
			return fmt.Errorf("%w: %s", workflow.ErrUnknownAgent, name)
		}
	}

	if len(req.Parameters) == 0 {
		return nil
	}

	for _, factory := range s.agents.AvailableAgents() {
		if _, requested := seen[factory.ID()]; !requested {
			continue
		}

		schema := factory.Schema()
		if schema == nil {
			continue
		}

		if err := validateAgainstSchema(schema, req.Parameters); err != nil {
			return fmt.Errorf("%w: agent %s: %s", ErrInvalidParameters, factory.ID(), err.Error())
		}
	}

	return nil
}

func validateAgainstSchema(schema map[string]any, parameters map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(parameters)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		return errors.New(strings.Join(details, "; "))
	}

	return nil
}
