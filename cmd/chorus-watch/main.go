package main

import (
	"context"
	"os"

	"github.com/carrierops/chorus/pkg/cmd"
	"github.com/carrierops/chorus/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "chorus-watch",
		EnableShellCompletion: true,
		Usage:                 "Tail the workflow progress event stream",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka)",
				Value:    "kafka",
				Required: false,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("chorus-watch")

			logger.InfoContext(ctx, "Initializing Chorus Watch")

			eventBus := cmd.NewEventBus(command.String("event-bus"), "watch", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			watcher := NewWatcher(logger, eventBus)

			err := watcher.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start watcher", "error", err)
			}

			return nil
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
