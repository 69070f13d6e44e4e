package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carrierops/chorus/pkg/eventbus"
	"github.com/carrierops/chorus/pkg/events"
	"github.com/carrierops/chorus/pkg/models"
	"github.com/carrierops/chorus/pkg/otelhelper"
	"github.com/carrierops/chorus/pkg/persistence"
	"github.com/carrierops/chorus/pkg/protocol"
	"github.com/carrierops/chorus/pkg/registry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "chorus/orchestrator"

// Request describes one workflow submission.
type Request struct {
	WorkflowID    string
	ExecutionDate string
	AgentNames    []string
	Parameters    map[string]any
}

// Orchestrator runs agent workflows sequentially against a shared execution
// context, aggregates progress, and finalizes each run as completed, failed
// or cancelled. Distinct workflows run concurrently as independent
// goroutines; the running-workflow registry is the only state shared between
// them, and no lock is held across an agent invocation.
type Orchestrator struct {
	logger  *slog.Logger
	agents  *registry.Registry
	running *Registry
	sink    eventbus.EventPublisher
	store   persistence.ResultStore
	tracer  trace.Tracer
}

func NewOrchestrator(
	logger *slog.Logger,
	agents *registry.Registry,
	running *Registry,
	sink eventbus.EventPublisher,
	store persistence.ResultStore,
) *Orchestrator {
	if sink == nil {
		sink = eventbus.NoopPublisher{}
	}

	return &Orchestrator{
		logger:  logger.With("module", "orchestrator"),
		agents:  agents,
		running: running,
		sink:    sink,
		store:   store,
		tracer:  otel.Tracer(tracerName),
	}
}

// Execute runs the requested agents in order and returns the terminal
// execution record. Request validation failures (empty or unresolvable agent
// list, duplicate names, reused workflow ID) are returned as errors before
// any agent runs. Agent failures and cancellation are not errors: they are
// encoded in the returned record's status.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (*models.WorkflowExecution, error) {
	execution, handle, err := o.begin(req)
	if err != nil {
		return nil, err
	}

	return o.run(ctx, execution, handle), nil
}

// Start validates and registers the workflow in the caller's frame, then
// runs the agent loop in its own goroutine. Validation failures and a reused
// workflow ID are returned before anything runs, so submitting callers can
// reject them synchronously; once Start returns nil the workflow is live.
func (o *Orchestrator) Start(ctx context.Context, req Request) error {
	execution, handle, err := o.begin(req)
	if err != nil {
		return err
	}

	go o.run(ctx, execution, handle)

	return nil
}

// begin performs the synchronous phase of a workflow: fail-fast request
// validation and registration of the execution as running.
func (o *Orchestrator) begin(req Request) (*models.WorkflowExecution, *Handle, error) {
	if err := o.validateRequest(req); err != nil {
		return nil, nil, err
	}

	execution := &models.WorkflowExecution{
		ID:              req.WorkflowID,
		Status:          models.ExecutionStatusRunning,
		ExecutionDate:   req.ExecutionDate,
		RequestedAgents: req.AgentNames,
		Parameters:      req.Parameters,
		StartedAt:       time.Now().UTC(),
		Steps:           make([]*models.StepResult, 0, len(req.AgentNames)),
	}

	handle, err := o.running.Register(execution)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register workflow %s: %w", req.WorkflowID, err)
	}

	return execution, handle, nil
}

// run executes the agent loop for a registered workflow and always finalizes
// it into a terminal state.
func (o *Orchestrator) run(ctx context.Context, execution *models.WorkflowExecution, handle *Handle) *models.WorkflowExecution {
	logger := o.logger.With("workflow_id", execution.ID, "execution_date", execution.ExecutionDate)
	logger.InfoContext(ctx, "Starting workflow execution", "agents", execution.RequestedAgents)

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, execution.ID),
		attribute.String(otelhelper.ExecutionDateKey, execution.ExecutionDate),
		attribute.Int(otelhelper.AgentCountKey, len(execution.RequestedAgents)),
	)
	defer span.End()

	started := events.WorkflowStarted{
		BaseEvent:       events.NewBaseEvent(events.WorkflowStartedEvent, execution.ID),
		ExecutionDate:   execution.ExecutionDate,
		RequestedAgents: execution.RequestedAgents,
	}
	o.emit(ctx, logger, execution.ID, started)

	total := len(execution.RequestedAgents)
	completed := 0

	for _, agentName := range execution.RequestedAgents {
		// Cancellation checkpoint: observed only at the agent boundary. An
		// agent already running is never interrupted.
		if handle.CancelRequested() {
			return o.finalizeCancelled(ctx, logger, handle, execution)
		}

		agentLogger := logger.With("agent", agentName)

		agentStarted := events.AgentStarted{
			BaseEvent: events.NewBaseEvent(events.AgentStartedEvent, execution.ID),
			AgentName: agentName,
		}
		o.emit(ctx, agentLogger, execution.ID, agentStarted)

		step, runErr := o.runAgent(ctx, agentLogger, execution, agentName)
		handle.AppendStep(step)

		if runErr != nil {
			agentLogger.ErrorContext(ctx, "Agent failed, aborting workflow", "error", runErr)

			return o.finalizeFailed(ctx, logger, handle, execution, step)
		}

		completed++
		handle.SetProgress(overallProgress(completed, total))

		agentCompleted := events.AgentCompleted{
			BaseEvent:       events.NewBaseEvent(events.AgentCompletedEvent, execution.ID),
			AgentName:       agentName,
			DurationMs:      step.EndTime.Sub(step.StartTime).Milliseconds(),
			OverallProgress: execution.OverallProgress,
			Result:          step.Result,
		}
		o.emit(ctx, agentLogger, execution.ID, agentCompleted)
	}

	return o.finalizeCompleted(ctx, logger, handle, execution)
}

// Cancel flags a running workflow for cooperative cancellation. Returns
// whether a running workflow was found. It does not block waiting for the
// orchestrator loop to notice; cancellation takes effect at the next
// agent-boundary checkpoint.
func (o *Orchestrator) Cancel(workflowID string) bool {
	return o.running.RequestCancel(workflowID)
}

// Status returns a snapshot of a running workflow. Terminal workflows have
// left the registry; callers needing those must query the result store.
func (o *Orchestrator) Status(workflowID string) (*models.WorkflowExecution, error) {
	return o.running.Get(workflowID)
}

func (o *Orchestrator) validateRequest(req Request) error {
	if len(req.AgentNames) == 0 {
		return ErrNoAgents
	}

	seen := make(map[string]struct{}, len(req.AgentNames))

	for _, name := range req.AgentNames {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAgent, name)
		}

		seen[name] = struct{}{}

		if !o.agents.IsAgentRegistered(name) {
			return fmt.Errorf("%w: %s", ErrUnknownAgent, name)
		}
	}

	return nil
}

// runAgent executes one agent and returns its step result. The step is
// always returned, finalized as completed or failed; the error is non-nil
// only in the failed case. A panicking agent is converted into a failed
// step rather than crashing the workflow's goroutine.
func (o *Orchestrator) runAgent(ctx context.Context, logger *slog.Logger, execution *models.WorkflowExecution, agentName string) (step *models.StepResult, err error) {
	step = &models.StepResult{
		AgentName: agentName,
		StartTime: time.Now().UTC(),
	}

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "agent.run",
		attribute.String(otelhelper.AgentNameKey, agentName))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent %s panicked: %v", agentName, r)
		}

		step.EndTime = time.Now().UTC()

		if err != nil {
			step.Status = models.StepStatusFailed
			step.ErrorMessage = err.Error()
			otelhelper.SetError(span, err, attribute.String(otelhelper.AgentNameKey, agentName))
		} else {
			step.Status = models.StepStatusCompleted
		}
	}()

	agent, err := o.agents.CreateAgent(ctx, agentName)
	if err != nil {
		return step, fmt.Errorf("failed to create agent %s: %w", agentName, err)
	}

	progress := o.progressCallback(ctx, logger, execution, agentName)

	payload, err := agent.Run(ctx, execution.ExecutionDate, execution.Parameters, progress)
	if err != nil {
		return step, err
	}

	step.Result = payload

	return step, nil
}

// progressCallback relays an agent's fractional progress into the event
// stream. Percent values are forwarded exactly as reported; the overall
// aggregate advances only in whole-agent increments.
func (o *Orchestrator) progressCallback(ctx context.Context, logger *slog.Logger, execution *models.WorkflowExecution, agentName string) protocol.ProgressCallback {
	return func(percent float64, message string) {
		event := events.AgentProgress{
			BaseEvent:       events.NewBaseEvent(events.AgentProgressEvent, execution.ID),
			AgentName:       agentName,
			Percent:         percent,
			Message:         message,
			OverallProgress: execution.OverallProgress,
		}
		o.emit(ctx, logger, execution.ID, event)
	}
}

func (o *Orchestrator) finalizeCompleted(ctx context.Context, logger *slog.Logger, handle *Handle, execution *models.WorkflowExecution) *models.WorkflowExecution {
	completedAt := time.Now().UTC()

	handle.SetProgress(100)
	handle.Finalize(models.ExecutionStatusCompleted, completedAt)
	handle.SetSummary(ComputeSummary(execution))

	o.persist(ctx, logger, execution)
	o.running.Remove(execution.ID)

	completed := events.WorkflowCompleted{
		BaseEvent:      events.NewBaseEvent(events.WorkflowCompletedEvent, execution.ID),
		DurationMs:     completedAt.Sub(execution.StartedAt).Milliseconds(),
		AgentsExecuted: len(execution.Steps),
		Summary:        execution.Summary,
	}
	o.emit(ctx, logger, execution.ID, completed)

	logger.InfoContext(ctx, "Workflow completed", "agents_executed", len(execution.Steps))

	return execution
}

func (o *Orchestrator) finalizeFailed(ctx context.Context, logger *slog.Logger, handle *Handle, execution *models.WorkflowExecution, failedStep *models.StepResult) *models.WorkflowExecution {
	completedAt := time.Now().UTC()
	handle.Finalize(models.ExecutionStatusFailed, completedAt)

	o.running.Remove(execution.ID)

	failed := events.WorkflowFailed{
		BaseEvent:      events.NewBaseEvent(events.WorkflowFailedEvent, execution.ID),
		AgentName:      failedStep.AgentName,
		Error:          failedStep.ErrorMessage,
		DurationMs:     completedAt.Sub(execution.StartedAt).Milliseconds(),
		AgentsExecuted: execution.CompletedSteps(),
	}
	o.emit(ctx, logger, execution.ID, failed)

	// Partial record: completed steps plus the failing one, so the failure
	// is diagnosable after the fact.
	o.persist(ctx, logger, execution)

	logger.WarnContext(ctx, "Workflow failed",
		"failed_agent", failedStep.AgentName,
		"completed_agents", execution.CompletedSteps(),
	)

	return execution
}

func (o *Orchestrator) finalizeCancelled(ctx context.Context, logger *slog.Logger, handle *Handle, execution *models.WorkflowExecution) *models.WorkflowExecution {
	completedAt := time.Now().UTC()
	handle.Finalize(models.ExecutionStatusCancelled, completedAt)

	o.running.Remove(execution.ID)

	cancelled := events.WorkflowCancelled{
		BaseEvent:      events.NewBaseEvent(events.WorkflowCancelledEvent, execution.ID),
		DurationMs:     completedAt.Sub(execution.StartedAt).Milliseconds(),
		AgentsExecuted: execution.CompletedSteps(),
	}
	o.emit(ctx, logger, execution.ID, cancelled)

	// No success summary for a cancelled run, but the partial record shows
	// exactly which agents completed before cancellation took effect.
	o.persist(ctx, logger, execution)

	logger.InfoContext(ctx, "Workflow cancelled", "completed_agents", execution.CompletedSteps())

	return execution
}

// emit pushes an event into the progress sink. Delivery is best-effort: a
// sink failure is logged and never changes the workflow's outcome.
func (o *Orchestrator) emit(ctx context.Context, logger *slog.Logger, key string, event eventbus.Event) {
	if err := o.sink.Publish(ctx, key, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish progress event", "event_type", event.GetType(), "error", err)
	}
}

// persist writes the execution to the result store. Store failures are
// logged and swallowed: persistence is a side effect, not part of the
// business outcome.
func (o *Orchestrator) persist(ctx context.Context, logger *slog.Logger, execution *models.WorkflowExecution) {
	if o.store == nil {
		return
	}

	if err := o.store.PersistExecution(ctx, execution); err != nil {
		logger.ErrorContext(ctx, "Failed to persist execution record", "error", err)
	}
}

// overallProgress advances in whole-agent increments: floor(100*k/n) with k
// completed agents of n requested. Per-agent percentages are deliberately
// not folded in; agents are not known to take equal time and interpolating
// would suggest a precision the aggregate does not have.
func overallProgress(completed, total int) int {
	return 100 * completed / total
}
