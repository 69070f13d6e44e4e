// Package main provides the Chorus runner: the daemon that executes
// scheduled and queued workflow submissions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/carrierops/chorus/pkg/eventbus"
	"github.com/carrierops/chorus/pkg/persistence"
	"github.com/carrierops/chorus/pkg/queue"
	"github.com/carrierops/chorus/pkg/registry"
	"github.com/carrierops/chorus/pkg/schedule"
	"github.com/carrierops/chorus/pkg/services"
	"github.com/carrierops/chorus/pkg/workflow"
)

type Runner struct {
	id        string
	logger    *slog.Logger
	scheduler *schedule.Scheduler
	consumer  *queue.Consumer
}

func NewRunner(
	id string,
	logger *slog.Logger,
	agents *registry.Registry,
	store persistence.ResultStore,
	eventBus eventbus.EventBus,
	schedulesPath string,
	redisConfig queue.Config,
) (*Runner, error) {
	running := workflow.NewRegistry()
	orchestrator := workflow.NewOrchestrator(logger, agents, running, eventBus, store)
	submission := services.NewSubmission(logger, agents, orchestrator, store)

	entries, err := loadScheduleEntries(schedulesPath)
	if err != nil {
		return nil, err
	}

	scheduler, err := schedule.NewScheduler(submission, entries, logger)
	if err != nil {
		return nil, err
	}

	return &Runner{
		id:        id,
		logger:    logger,
		scheduler: scheduler,
		consumer:  queue.NewConsumer(submission, redisConfig, logger),
	}, nil
}

// loadScheduleEntries reads the recurring-workflow definitions from a JSON
// file. An empty path means no schedules, which is valid for queue-only
// deployments.
func loadScheduleEntries(path string) ([]schedule.Entry, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedules file %s: %w", path, err)
	}

	var entries []schedule.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse schedules file %s: %w", path, err)
	}

	return entries, nil
}

// Start launches the scheduler and queue consumer and blocks until SIGINT
// or SIGTERM.
func (r *Runner) Start(ctx context.Context) error {
	if err := r.scheduler.Start(ctx); err != nil {
		return err
	}

	if err := r.consumer.Start(ctx); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Runner started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	r.logger.InfoContext(ctx, "Shutting down runner", "signal", sig.String())

	if err := r.scheduler.Stop(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to stop scheduler", "error", err)
	}

	if err := r.consumer.Stop(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to stop queue consumer", "error", err)
	}

	return nil
}
