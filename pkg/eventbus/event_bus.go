// Package eventbus provides the progress event transport for workflow orchestration.
package eventbus

import (
	"context"

	"github.com/carrierops/chorus/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

// EventPublisher is the progress sink the orchestrator pushes events into.
// Delivery is best-effort: a failed Send must never fail the workflow that
// produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}

// NoopPublisher discards all events. It is the default sink when no
// observability transport is wired up, so the orchestrator's core loop never
// branches on whether a sink exists.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ string, _ Event) error {
	return nil
}
