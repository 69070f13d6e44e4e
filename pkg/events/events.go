// Package events defines event types and structures for workflow progress notifications.
package events

import (
	"time"

	"github.com/carrierops/chorus/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Kafka topic carrying all workflow progress events.
const Topic = "chorus.workflow.progress"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowStartedEvent   EventType = "workflow.execution.started"
	AgentStartedEvent      EventType = "agent.started"
	AgentProgressEvent     EventType = "agent.progress"
	AgentCompletedEvent    EventType = "agent.completed"
	WorkflowCompletedEvent EventType = "workflow.execution.completed"
	WorkflowFailedEvent    EventType = "workflow.execution.failed"
	WorkflowCancelledEvent EventType = "workflow.execution.cancelled"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
}

type WorkflowStarted struct {
	BaseEvent

	ExecutionDate   string   `json:"execution_date"`
	RequestedAgents []string `json:"requested_agents"`
}

func (w WorkflowStarted) GetType() EventType {
	return WorkflowStartedEvent
}

type AgentStarted struct {
	BaseEvent

	AgentName string `json:"agent_name"`
}

func (a AgentStarted) GetType() EventType {
	return AgentStartedEvent
}

// AgentProgress carries an agent's own fractional progress. Percent is
// relayed exactly as reported, including non-monotonic values from a buggy
// agent; OverallProgress is the workflow-level whole-agent aggregate.
type AgentProgress struct {
	BaseEvent

	AgentName       string  `json:"agent_name"`
	Percent         float64 `json:"percent"`
	Message         string  `json:"message,omitempty"`
	OverallProgress int     `json:"overall_progress"`
}

func (a AgentProgress) GetType() EventType {
	return AgentProgressEvent
}

type AgentCompleted struct {
	BaseEvent

	AgentName       string               `json:"agent_name"`
	DurationMs      int64                `json:"duration_ms"`
	OverallProgress int                  `json:"overall_progress"`
	Result          models.ResultPayload `json:"result,omitempty"`
}

func (a AgentCompleted) GetType() EventType {
	return AgentCompletedEvent
}

type WorkflowCompleted struct {
	BaseEvent

	DurationMs     int64                   `json:"duration_ms"`
	AgentsExecuted int                     `json:"agents_executed"`
	Summary        *models.WorkflowSummary `json:"summary,omitempty"`
}

func (w WorkflowCompleted) GetType() EventType {
	return WorkflowCompletedEvent
}

type WorkflowFailed struct {
	BaseEvent

	AgentName      string `json:"agent_name"`
	Error          string `json:"error"`
	DurationMs     int64  `json:"duration_ms"`
	AgentsExecuted int    `json:"agents_executed"`
}

func (w WorkflowFailed) GetType() EventType {
	return WorkflowFailedEvent
}

type WorkflowCancelled struct {
	BaseEvent

	DurationMs     int64 `json:"duration_ms"`
	AgentsExecuted int   `json:"agents_executed"`
}

func (w WorkflowCancelled) GetType() EventType {
	return WorkflowCancelledEvent
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}
