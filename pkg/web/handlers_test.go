package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carrierops/chorus/pkg/models"
	"github.com/carrierops/chorus/pkg/persistence/file"
	"github.com/carrierops/chorus/pkg/protocol"
	"github.com/carrierops/chorus/pkg/registry"
	"github.com/carrierops/chorus/pkg/services"
	"github.com/carrierops/chorus/pkg/web"
	"github.com/carrierops/chorus/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAgent struct{}

func (a *testAgent) Run(_ context.Context, _ string, _ map[string]any, _ protocol.ProgressCallback) (models.ResultPayload, error) {
	return models.ResultPayload{"total_cost_usd": 99.5}, nil
}

type testAgentFactory struct {
	id string
}

func (f *testAgentFactory) Create(_ context.Context) (protocol.Agent, error) {
	return &testAgent{}, nil
}

func (f *testAgentFactory) ID() string             { return f.id }
func (f *testAgentFactory) Name() string           { return f.id }
func (f *testAgentFactory) Description() string    { return "test agent " + f.id }
func (f *testAgentFactory) Schema() map[string]any { return map[string]any{"type": "object"} }

// stallingAgent holds its workflow open until released, so conflict tests
// can submit while a run is still in flight.
type stallingAgent struct {
	started chan struct{}
	release chan struct{}
}

func (a *stallingAgent) Run(_ context.Context, _ string, _ map[string]any, _ protocol.ProgressCallback) (models.ResultPayload, error) {
	close(a.started)
	<-a.release

	return models.ResultPayload{}, nil
}

type stallingAgentFactory struct {
	agent *stallingAgent
}

func (f *stallingAgentFactory) Create(_ context.Context) (protocol.Agent, error) {
	return f.agent, nil
}

func (f *stallingAgentFactory) ID() string             { return "fraud_detection" }
func (f *stallingAgentFactory) Name() string           { return "fraud_detection" }
func (f *stallingAgentFactory) Description() string    { return "stalling test agent" }
func (f *stallingAgentFactory) Schema() map[string]any { return map[string]any{"type": "object"} }

func setupTestApp(t *testing.T) (*fiber.App, *file.ResultStore) {
	t.Helper()

	logger := slog.Default()

	agents := registry.NewRegistry(logger)
	agents.RegisterAgent(&testAgentFactory{id: "cost_analysis"})
	agents.RegisterAgent(&testAgentFactory{id: "sla_compliance"})

	store := file.NewResultStore(t.TempDir())
	running := workflow.NewRegistry()
	orchestrator := workflow.NewOrchestrator(logger, agents, running, nil, store)
	submission := services.NewSubmission(logger, agents, orchestrator, store)

	validate := validator.New(validator.WithRequiredStructEnabled())
	handlers := web.NewAPIHandlers(submission, store, validate)

	app := fiber.New()

	w := app.Group("/workflows")
	w.Post("/", handlers.SubmitWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Delete("/:id", handlers.CancelWorkflow)

	e := app.Group("/executions")
	e.Get("/", handlers.GetExecutions)
	e.Get("/:id", handlers.GetExecution)

	app.Get("/agents", handlers.GetAgents)
	app.Get("/health", handlers.HealthCheck)

	return app, store
}

func TestAPIHandlers_SubmitWorkflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name: "accepted",
			requestBody: web.SubmitWorkflowRequest{
				ExecutionDate: "2026-08-29",
				Agents:        []string{"cost_analysis", "sla_compliance"},
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not-json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing agents",
			requestBody: web.SubmitWorkflowRequest{
				ExecutionDate: "2026-08-29",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate agents",
			requestBody: web.SubmitWorkflowRequest{
				Agents: []string{"cost_analysis", "cost_analysis"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown agent",
			requestBody: web.SubmitWorkflowRequest{
				Agents: []string{"margin_wizard"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "malformed execution date",
			requestBody: web.SubmitWorkflowRequest{
				ExecutionDate: "tomorrow",
				Agents:        []string{"cost_analysis"},
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _ := setupTestApp(t)

			var (
				body []byte
				err  error
			)

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusAccepted {
				respBody, err := io.ReadAll(resp.Body)
				require.NoError(t, err)

				var accepted web.SubmitWorkflowResponse
				require.NoError(t, json.Unmarshal(respBody, &accepted))
				assert.NotEmpty(t, accepted.WorkflowID)
				assert.Equal(t, "running", accepted.Status)
			}
		})
	}
}

func TestAPIHandlers_SubmitWorkflowConflict(t *testing.T) {
	t.Parallel()

	agent := &stallingAgent{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	logger := slog.Default()
	agents := registry.NewRegistry(logger)
	agents.RegisterAgent(&stallingAgentFactory{agent: agent})

	store := file.NewResultStore(t.TempDir())
	orchestrator := workflow.NewOrchestrator(logger, agents, workflow.NewRegistry(), nil, store)
	submission := services.NewSubmission(logger, agents, orchestrator, store)
	handlers := web.NewAPIHandlers(submission, store, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	app.Post("/workflows", handlers.SubmitWorkflow)

	body, err := json.Marshal(web.SubmitWorkflowRequest{
		WorkflowID:    "wf-conflict",
		ExecutionDate: "2026-08-29",
		Agents:        []string{"fraud_detection"},
	})
	require.NoError(t, err)

	submit := func() *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)

		return resp
	}

	first := submit()
	defer func() { _ = first.Body.Close() }()
	require.Equal(t, http.StatusAccepted, first.StatusCode)

	<-agent.started

	second := submit()
	defer func() { _ = second.Body.Close() }()
	assert.Equal(t, http.StatusConflict, second.StatusCode)

	close(agent.release)
}

func TestAPIHandlers_GetWorkflowNotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/workflows/wf-missing", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_GetWorkflowFromStore(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)

	completedAt := time.Now().UTC()
	execution := &models.WorkflowExecution{
		ID:              "wf-done",
		Status:          models.ExecutionStatusCompleted,
		ExecutionDate:   "2026-08-28",
		RequestedAgents: []string{"cost_analysis"},
		StartedAt:       completedAt.Add(-time.Minute),
		CompletedAt:     &completedAt,
		OverallProgress: 100,
	}
	require.NoError(t, store.PersistExecution(context.Background(), execution))

	req := httptest.NewRequest(http.MethodGet, "/workflows/wf-done", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var loaded models.WorkflowExecution
	require.NoError(t, json.Unmarshal(body, &loaded))
	assert.Equal(t, "wf-done", loaded.ID)
	assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)
	assert.Equal(t, 100, loaded.OverallProgress)
}

func TestAPIHandlers_CancelWorkflowNotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodDelete, "/workflows/wf-missing", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_GetExecutions(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)

	completedAt := time.Now().UTC()
	for _, id := range []string{"wf-a", "wf-b"} {
		execution := &models.WorkflowExecution{
			ID:              id,
			Status:          models.ExecutionStatusCompleted,
			ExecutionDate:   "2026-08-28",
			RequestedAgents: []string{"cost_analysis"},
			StartedAt:       completedAt.Add(-time.Minute),
			CompletedAt:     &completedAt,
		}
		require.NoError(t, store.PersistExecution(context.Background(), execution))
	}

	req := httptest.NewRequest(http.MethodGet, "/executions/", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var listing struct {
		Executions []*models.WorkflowExecution `json:"executions"`
		TotalCount int                         `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Equal(t, 2, listing.TotalCount)
	assert.Len(t, listing.Executions, 2)
}

func TestAPIHandlers_GetExecutionNotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/executions/wf-missing", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_GetAgents(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var listing struct {
		Agents     []services.AgentInfo `json:"agents"`
		TotalCount int                  `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(body, &listing))
	require.Equal(t, 2, listing.TotalCount)
	assert.Equal(t, "cost_analysis", listing.Agents[0].ID)
	assert.Equal(t, "sla_compliance", listing.Agents[1].ID)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
