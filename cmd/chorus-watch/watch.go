// Package main provides chorus-watch: a console tail of the workflow
// progress event stream.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/carrierops/chorus/pkg/eventbus"
	"github.com/carrierops/chorus/pkg/events"
)

type Watcher struct {
	logger   *slog.Logger
	eventBus eventbus.EventBus
}

func NewWatcher(logger *slog.Logger, eventBus eventbus.EventBus) *Watcher {
	return &Watcher{
		logger:   logger,
		eventBus: eventBus,
	}
}

// Start registers handlers for every workflow event type and blocks until
// SIGINT or SIGTERM.
func (w *Watcher) Start(ctx context.Context) error {
	handlers := map[events.EventType]eventbus.EventHandler{
		events.WorkflowStartedEvent:   w.handleWorkflowStarted,
		events.AgentStartedEvent:      w.handleAgentStarted,
		events.AgentProgressEvent:     w.handleAgentProgress,
		events.AgentCompletedEvent:    w.handleAgentCompleted,
		events.WorkflowCompletedEvent: w.handleWorkflowCompleted,
		events.WorkflowFailedEvent:    w.handleWorkflowFailed,
		events.WorkflowCancelledEvent: w.handleWorkflowCancelled,
	}

	for eventType, handler := range handlers {
		if err := w.eventBus.Handle(eventType, handler); err != nil {
			return fmt.Errorf("failed to register handler for %s: %w", eventType, err)
		}
	}

	if err := w.eventBus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to event stream: %w", err)
	}

	w.logger.InfoContext(ctx, "Watching workflow events")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	w.logger.InfoContext(ctx, "Shutting down watcher", "signal", sig.String())

	return nil
}

func (w *Watcher) handleWorkflowStarted(ctx context.Context, event any) error {
	e, ok := event.(*events.WorkflowStarted)
	if !ok {
		return fmt.Errorf("unexpected event payload type %T", event)
	}

	w.logger.InfoContext(ctx, "Workflow started",
		"workflow_id", e.WorkflowID,
		"execution_date", e.ExecutionDate,
		"agents", e.RequestedAgents,
	)

	return nil
}

func (w *Watcher) handleAgentStarted(ctx context.Context, event any) error {
	e, ok := event.(*events.AgentStarted)
	if !ok {
		return fmt.Errorf("unexpected event payload type %T", event)
	}

	w.logger.InfoContext(ctx, "Agent started",
		"workflow_id", e.WorkflowID,
		"agent", e.AgentName,
	)

	return nil
}

func (w *Watcher) handleAgentProgress(ctx context.Context, event any) error {
	e, ok := event.(*events.AgentProgress)
	if !ok {
		return fmt.Errorf("unexpected event payload type %T", event)
	}

	w.logger.InfoContext(ctx, "Agent progress",
		"workflow_id", e.WorkflowID,
		"agent", e.AgentName,
		"percent", e.Percent,
		"message", e.Message,
		"overall_progress", e.OverallProgress,
	)

	return nil
}

func (w *Watcher) handleAgentCompleted(ctx context.Context, event any) error {
	e, ok := event.(*events.AgentCompleted)
	if !ok {
		return fmt.Errorf("unexpected event payload type %T", event)
	}

	w.logger.InfoContext(ctx, "Agent completed",
		"workflow_id", e.WorkflowID,
		"agent", e.AgentName,
		"duration_ms", e.DurationMs,
		"overall_progress", e.OverallProgress,
	)

	return nil
}

func (w *Watcher) handleWorkflowCompleted(ctx context.Context, event any) error {
	e, ok := event.(*events.WorkflowCompleted)
	if !ok {
		return fmt.Errorf("unexpected event payload type %T", event)
	}

	w.logger.InfoContext(ctx, "Workflow completed",
		"workflow_id", e.WorkflowID,
		"duration_ms", e.DurationMs,
		"agents_executed", e.AgentsExecuted,
	)

	return nil
}

func (w *Watcher) handleWorkflowFailed(ctx context.Context, event any) error {
	e, ok := event.(*events.WorkflowFailed)
	if !ok {
		return fmt.Errorf("unexpected event payload type %T", event)
	}

	w.logger.WarnContext(ctx, "Workflow failed",
		"workflow_id", e.WorkflowID,
		"agent", e.AgentName,
		"error", e.Error,
		"agents_executed", e.AgentsExecuted,
	)

	return nil
}

func (w *Watcher) handleWorkflowCancelled(ctx context.Context, event any) error {
	e, ok := event.(*events.WorkflowCancelled)
	if !ok {
		return fmt.Errorf("unexpected event payload type %T", event)
	}

	w.logger.InfoContext(ctx, "Workflow cancelled",
		"workflow_id", e.WorkflowID,
		"agents_executed", e.AgentsExecuted,
	)

	return nil
}
