package schedule_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/carrierops/chorus/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewScheduler_ValidEntries(t *testing.T) {
	t.Parallel()

	entries := []schedule.Entry{
		{ID: "nightly-sla", CronExpr: "0 2 * * *", AgentNames: []string{"sla", "cost"}},
		{ID: "hourly-fraud", CronExpr: "@hourly", AgentNames: []string{"fraud"}},
	}

	scheduler, err := schedule.NewScheduler(nil, entries, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, scheduler)
}

func TestNewScheduler_RejectsInvalidEntries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		entry       schedule.Entry
		expectedErr string
	}{
		{
			name:        "missing ID",
			entry:       schedule.Entry{CronExpr: "0 2 * * *", AgentNames: []string{"sla"}},
			expectedErr: "ID is required",
		},
		{
			name:        "missing cron expression",
			entry:       schedule.Entry{ID: "nightly", AgentNames: []string{"sla"}},
			expectedErr: "cron expression is required",
		},
		{
			name:        "malformed cron expression",
			entry:       schedule.Entry{ID: "nightly", CronExpr: "every day at 2", AgentNames: []string{"sla"}},
			expectedErr: "invalid cron expression for entry nightly",
		},
		{
			name:        "no agents",
			entry:       schedule.Entry{ID: "nightly", CronExpr: "0 2 * * *"},
			expectedErr: "entry nightly has no agents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			scheduler, err := schedule.NewScheduler(nil, []schedule.Entry{tt.entry}, testLogger())
			require.Error(t, err)
			assert.Nil(t, scheduler)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}
