// Package workflow wires the order workflow engine into the application: the
// stage registry, transition ledger, reconciliation engine, and board view.
package workflow

import (
	"context"
	"fmt"

	apphttp "familyhub_backend/internal/http"

	"familyhub_backend/internal/events"
	"familyhub_backend/internal/workflow/handler"
	"familyhub_backend/internal/workflow/repository"
	"familyhub_backend/internal/workflow/service"
	"familyhub_backend/platform/logger"
	"familyhub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the workflow engine's components.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// New creates the workflow module and subscribes it to domain events.
func New(pool *pgxpool.Pool, pusher service.StatusPusher, syncer handler.Syncer, bus events.Bus, v *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, pusher, bus, log)

	m := &Module{
		handler: handler.New(svc, syncer, v, log),
		service: svc,
		log:     log,
	}

	// Account provisioning flows that publish FamilyCreated get their default
	// pipeline eagerly; everyone else gets it lazily on the first pipeline
	// read (see Service.ListStages).
	bus.Subscribe(events.FamilyCreated{}.EventName(), events.HandlerFunc(
		func(ctx context.Context, event events.Event) error {
			created, ok := event.(events.FamilyCreated)
			if !ok {
				return fmt.Errorf("unexpected event type %T", event)
			}
			return svc.SeedDefaultStages(ctx, created.FamilyID)
		}))

	return m
}

// Name returns the module identifier.
func (m *Module) Name() string { return "workflow" }

// Service exposes the engine for in-process collaborators (the import
// pipeline reconciles through it).
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts the workflow routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/workflow")
	{
		group.GET("/stages", m.handler.ListStages)
		group.PUT("/stages", m.handler.ReplaceStages)
		group.POST("/items/:orderId/move", m.handler.MoveItem)
		group.PATCH("/items/:orderId", m.handler.UpdateItem)
		group.GET("/items/:orderId/history", m.handler.History)
		group.GET("/board", m.handler.Board)
		group.GET("/board/filter-options", m.handler.FilterOptions)
		group.POST("/sync", m.handler.Sync)
	}
}
