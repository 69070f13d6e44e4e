package workflow

import (
	"maps"
	"sync"
	"time"

	"github.com/carrierops/chorus/pkg/models"
)

// Handle is the registry's view of one running workflow. The orchestrator
// goroutine that owns the workflow is the only writer of the underlying
// execution; external callers get consistent snapshots and may only flag
// cancellation. All mutation goes through Handle methods so that a
// concurrent Status read never observes a half-updated record.
type Handle struct {
	mu              sync.Mutex
	execution       *models.WorkflowExecution
	cancelRequested bool
}

// CancelRequested reports whether cancellation was flagged for this
// workflow. The orchestrator checks it at the boundary before starting each
// agent; setting the flag never interrupts an agent mid-run.
func (h *Handle) CancelRequested() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.cancelRequested
}

// SetProgress raises overall progress. Values below the current progress are
// ignored, keeping the aggregate monotonically non-decreasing while running.
func (h *Handle) SetProgress(progress int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if progress > h.execution.OverallProgress {
		h.execution.OverallProgress = progress
	}
}

// AppendStep records the outcome of one agent run.
func (h *Handle) AppendStep(step *models.StepResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.execution.Steps = append(h.execution.Steps, step)
}

// Finalize transitions the execution into a terminal status and stamps the
// completion time. The record is immutable afterwards.
func (h *Handle) Finalize(status models.ExecutionStatus, completedAt time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.execution.Status = status
	h.execution.CompletedAt = &completedAt
}

// SetSummary attaches the computed summary to the execution.
func (h *Handle) SetSummary(summary *models.WorkflowSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.execution.Summary = summary
}

// Snapshot returns a copy of the execution safe to hand to readers while the
// orchestrator keeps mutating the original. The steps slice and parameters
// map are copied; step results are shared but are never mutated after being
// appended.
func (h *Handle) Snapshot() *models.WorkflowExecution {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.snapshotLocked()
}

func (h *Handle) snapshotLocked() *models.WorkflowExecution {
	copied := *h.execution
	copied.Steps = make([]*models.StepResult, len(h.execution.Steps))
	copy(copied.Steps, h.execution.Steps)
	copied.Parameters = maps.Clone(h.execution.Parameters)

	return &copied
}

// Registry tracks workflows currently running so that status queries and
// cancellation requests can find them in O(1) without touching the result
// store. Purely in-memory; entries are removed the moment a workflow reaches
// a terminal state.
type Registry struct {
	mu      sync.RWMutex
	running map[string]*Handle
}

func NewRegistry() *Registry {
	return &Registry{
		running: make(map[string]*Handle),
	}
}

// Register inserts a running execution and returns its handle. Fails with
// ErrDuplicateWorkflow if the ID is already present, guarding against a
// caller reusing an ID for a second concurrent run.
func (r *Registry) Register(execution *models.WorkflowExecution) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.running[execution.ID]; exists {
		return nil, ErrDuplicateWorkflow
	}

	handle := &Handle{execution: execution}
	r.running[execution.ID] = handle

	return handle, nil
}

// Get returns a snapshot of a running workflow, or ErrWorkflowNotFound. A
// not-found result is expected for terminal workflows and is not an error
// condition for callers that fall back to the result store.
func (r *Registry) Get(workflowID string) (*models.WorkflowExecution, error) {
	r.mu.RLock()
	handle, exists := r.running[workflowID]
	r.mu.RUnlock()

	if !exists {
		return nil, ErrWorkflowNotFound
	}

	return handle.Snapshot(), nil
}

// Remove deletes a workflow from the registry. Idempotent; removing an
// absent ID is a no-op.
func (r *Registry) Remove(workflowID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.running, workflowID)
}

// RequestCancel flags a running workflow for cooperative cancellation.
// Returns true if the workflow was found and flagged. Setting the flag does
// not itself stop execution; the orchestrator observes it at the checkpoint
// before starting each agent.
func (r *Registry) RequestCancel(workflowID string) bool {
	r.mu.RLock()
	handle, exists := r.running[workflowID]
	r.mu.RUnlock()

	if !exists {
		return false
	}

	handle.mu.Lock()
	handle.cancelRequested = true
	handle.mu.Unlock()

	return true
}

// Running returns snapshots of all currently running workflows.
func (r *Registry) Running() []*models.WorkflowExecution {
	r.mu.RLock()
	handles := make([]*Handle, 0, len(r.running))

	for _, handle := range r.running {
		handles = append(handles, handle)
	}
	r.mu.RUnlock()

	executions := make([]*models.WorkflowExecution, 0, len(handles))
	for _, handle := range handles {
		executions = append(executions, handle.Snapshot())
	}

	return executions
}
