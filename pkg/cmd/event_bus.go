package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/carrierops/chorus/pkg/channels/gochannel"
	"github.com/carrierops/chorus/pkg/channels/kafka"
	"github.com/carrierops/chorus/pkg/eventbus"
)

// NewEventBus creates the progress event bus for the given provider.
// "gochannel" keeps events in-process and is the default for single-binary
// deployments; "kafka" fans them out to external consumers. The service name
// becomes the Kafka consumer group, so each service sees the full stream.
func NewEventBus(provider string, serviceName string, logger *slog.Logger) eventbus.EventBus {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, serviceName)
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	case "gochannel", "":
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			panic(fmt.Errorf("failed to create GoChannel pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
