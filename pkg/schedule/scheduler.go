// Package schedule submits recurring workflows on cron expressions.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carrierops/chorus/pkg/services"
	"github.com/robfig/cron/v3"
)

// Entry defines one recurring workflow submission.
type Entry struct {
	ID         string         `json:"id"`
	CronExpr   string         `json:"cron"`
	AgentNames []string       `json:"agents"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

func (e Entry) validate() error {
	if e.ID == "" {
		return errors.New("schedule entry ID is required")
	}

	if e.CronExpr == "" {
		return errors.New("schedule entry cron expression is required")
	}

	if _, err := cron.ParseStandard(e.CronExpr); err != nil {
		return fmt.Errorf("invalid cron expression for entry %s: %w", e.ID, err)
	}

	if len(e.AgentNames) == 0 {
		return fmt.Errorf("schedule entry %s has no agents", e.ID)
	}

	return nil
}

// Scheduler submits workflows on cron schedules. Each firing submits a
// workflow for the previous UTC day, the usual window for daily analytics.
type Scheduler struct {
	entries    []Entry
	submission *services.Submission
	cron       *cron.Cron
	logger     *slog.Logger
}

func NewScheduler(submission *services.Submission, entries []Entry, logger *slog.Logger) (*Scheduler, error) {
	for _, entry := range entries {
		if err := entry.validate(); err != nil {
			return nil, err
		}
	}

	return &Scheduler{
		entries:    entries,
		submission: submission,
		logger:     logger.With("module", "scheduler"),
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting scheduler", "entries", len(s.entries))

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	for _, entry := range s.entries {
		entry := entry

		id, err := s.cron.AddFunc(entry.CronExpr, func() {
			s.run(entry)
		})
		if err != nil {
			return fmt.Errorf("failed to add cron job for entry %s: %w", entry.ID, err)
		}

		s.logger.InfoContext(ctx, "Added cron job",
			"entry", entry.ID, "cron", entry.CronExpr, "job_id", id)
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) run(entry Entry) {
	executionDate := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	s.logger.Info("Cron job fired", "entry", entry.ID, "execution_date", executionDate)

	workflowID, err := s.submission.Submit(context.Background(), services.SubmitRequest{
		ExecutionDate: executionDate,
		AgentNames:    entry.AgentNames,
		Parameters:    entry.Parameters,
	})
	if err != nil {
		s.logger.Error("Error submitting scheduled workflow",
			"entry", entry.ID, "error", err)

		return
	}

	s.logger.Info("Submitted scheduled workflow",
		"entry", entry.ID, "workflow_id", workflowID)
}

func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping scheduler")

	if s.cron != nil {
		s.cron.Stop()
	}

	return nil
}
