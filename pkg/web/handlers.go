// Package web provides HTTP handlers and REST API endpoints for workflow
// submission, status tracking, and cancellation.
package web

import (
	"net/http"
	"time"

	"github.com/carrierops/chorus/pkg/models"
	"github.com/carrierops/chorus/pkg/persistence"
	"github.com/carrierops/chorus/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	submission *services.Submission
	store      persistence.ResultStore
	validator  *validator.Validate
}

func NewAPIHandlers(
	submission *services.Submission,
	store persistence.ResultStore,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		submission: submission,
		store:      store,
		validator:  validator,
	}
}

// SubmitWorkflow validates the request synchronously and starts the
// workflow asynchronously, returning 202 with the workflow ID.
func (h *APIHandlers) SubmitWorkflow(c fiber.Ctx) error {
	var req SubmitWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflowID, err := h.submission.Submit(c.Context(), services.SubmitRequest{
		WorkflowID:    req.WorkflowID,
		ExecutionDate: req.ExecutionDate,
		AgentNames:    req.Agents,
		Parameters:    req.Parameters,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(SubmitWorkflowResponse{
		WorkflowID: workflowID,
		Status:     string(models.ExecutionStatusRunning),
	})
}

// GetWorkflow returns the live status of a running workflow, falling back
// to the persisted record once the workflow has reached a terminal state.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	execution, err := h.submission.Status(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

// CancelWorkflow flags a running workflow for cancellation. The workflow
// stops at the next agent boundary, so the response is 202 rather than 200.
func (h *APIHandlers) CancelWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if !h.submission.Cancel(id) {
		return notFound(c, "No running workflow with this ID")
	}

	return c.Status(fiber.StatusAccepted).JSON(CancelWorkflowResponse{
		WorkflowID: id,
		Cancelling: true,
	})
}

// GetExecutions lists persisted execution records, most recent first.
func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	executions, err := h.submission.Executions(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}

// GetExecution returns a single persisted execution record.
func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.store.ExecutionByID(c.Context(), id)
	if err != nil {
		if persistence.IsExecutionNotFound(err) {
			return notFound(c, "Execution not found")
		}

		return internalError(c, err)
	}

	return c.JSON(execution)
}

// GetAgents lists the registered agents with their parameter schemas.
func (h *APIHandlers) GetAgents(c fiber.Ctx) error {
	agents := h.submission.Agents()

	return c.JSON(fiber.Map{
		"agents":      agents,
		"total_count": len(agents),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	storeErr := h.store.HealthCheck(c.Context())

	status := "healthy"
	message := "Chorus API is healthy"
	httpStatus := http.StatusOK
	storeCheck := "ok"

	if storeErr != nil {
		status = "unhealthy"
		message = "Chorus API is unhealthy"
		httpStatus = http.StatusInternalServerError
		storeCheck = storeErr.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"result_store": storeCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
