// Package main provides the Chorus API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/carrierops/chorus/pkg/eventbus"
	"github.com/carrierops/chorus/pkg/persistence"
	"github.com/carrierops/chorus/pkg/registry"
	"github.com/carrierops/chorus/pkg/services"
	"github.com/carrierops/chorus/pkg/web"
	"github.com/carrierops/chorus/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	store    persistence.ResultStore
	registry *registry.Registry
	eventBus eventbus.EventBus
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.ResultStore,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:   logger,
		store:    store,
		registry: registry,
		eventBus: eventBus,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	running := workflow.NewRegistry()
	orchestrator := workflow.NewOrchestrator(a.logger, a.registry, running, a.eventBus, a.store)
	submission := services.NewSubmission(a.logger, a.registry, orchestrator, a.store)

	handlers := web.NewAPIHandlers(submission, a.store, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Chorus API")
	})

	w := app.Group("/workflows")
	w.Post("/", handlers.SubmitWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Delete("/:id", handlers.CancelWorkflow)

	e := app.Group("/executions")
	e.Get("/", handlers.GetExecutions)
	e.Get("/:id", handlers.GetExecution)

	app.Get("/agents", handlers.GetAgents)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
