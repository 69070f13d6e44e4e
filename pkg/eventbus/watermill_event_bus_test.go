package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/carrierops/chorus/pkg/channels/gochannel"
	"github.com/carrierops/chorus/pkg/eventbus"
	"github.com/carrierops/chorus/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEventBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() {
		require.NoError(t, bus.Close())
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := setupEventBus(t)

	received := make(chan any, 1)
	err := bus.Handle(events.AgentProgressEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	progress := events.AgentProgress{
		BaseEvent:       events.NewBaseEvent(events.AgentProgressEvent, "wf-42"),
		AgentName:       "fraud",
		Percent:         60,
		Message:         "scoring call batches",
		OverallProgress: 25,
	}
	require.NoError(t, bus.Publish(ctx, "wf-42", progress))

	select {
	case event := <-received:
		decoded, ok := event.(*events.AgentProgress)
		require.True(t, ok)
		assert.Equal(t, "wf-42", decoded.WorkflowID)
		assert.Equal(t, "fraud", decoded.AgentName)
		assert.Equal(t, 60.0, decoded.Percent)
		assert.Equal(t, "scoring call batches", decoded.Message)
		assert.Equal(t, 25, decoded.OverallProgress)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for agent progress event")
	}
}

func TestWatermillEventBus_RoutesByEventType(t *testing.T) {
	bus := setupEventBus(t)

	started := make(chan *events.WorkflowStarted, 1)
	completed := make(chan *events.WorkflowCompleted, 1)

	err := bus.Handle(events.WorkflowStartedEvent, func(_ context.Context, event any) error {
		started <- event.(*events.WorkflowStarted)

		return nil
	})
	require.NoError(t, err)

	err = bus.Handle(events.WorkflowCompletedEvent, func(_ context.Context, event any) error {
		completed <- event.(*events.WorkflowCompleted)

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	err = bus.Publish(ctx, "wf-1", events.WorkflowStarted{
		BaseEvent:       events.NewBaseEvent(events.WorkflowStartedEvent, "wf-1"),
		ExecutionDate:   "2026-08-29",
		RequestedAgents: []string{"sla"},
	})
	require.NoError(t, err)

	err = bus.Publish(ctx, "wf-1", events.WorkflowCompleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowCompletedEvent, "wf-1"),
	})
	require.NoError(t, err)

	select {
	case event := <-started:
		assert.Equal(t, []string{"sla"}, event.RequestedAgents)
		assert.Equal(t, "2026-08-29", event.ExecutionDate)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for workflow started event")
	}

	select {
	case event := <-completed:
		assert.Equal(t, "wf-1", event.WorkflowID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for workflow completed event")
	}
}

func TestWatermillEventBus_UnhandledEventTypeIsAcked(t *testing.T) {
	bus := setupEventBus(t)

	received := make(chan any, 2)
	err := bus.Handle(events.WorkflowCancelledEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for this type: the message must be acked and
	// skipped without stalling the subscription.
	err = bus.Publish(ctx, "wf-9", events.AgentCompleted{
		BaseEvent: events.NewBaseEvent(events.AgentCompletedEvent, "wf-9"),
		AgentName: "routing",
	})
	require.NoError(t, err)

	err = bus.Publish(ctx, "wf-9", events.WorkflowCancelled{
		BaseEvent: events.NewBaseEvent(events.WorkflowCancelledEvent, "wf-9"),
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		decoded, ok := event.(*events.WorkflowCancelled)
		require.True(t, ok)
		assert.Equal(t, "wf-9", decoded.WorkflowID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for workflow cancelled event")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := setupEventBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
