// Package orders wires the order cache module: snapshot persistence, the
// import pipeline, and customization extraction.
package orders

import (
	apphttp "familyhub_backend/internal/http"

	"familyhub_backend/internal/events"
	"familyhub_backend/internal/orders/handler"
	"familyhub_backend/internal/orders/repository"
	"familyhub_backend/internal/orders/service"
	"familyhub_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the order cache components.
type Module struct {
	handler  *handler.Handler
	service  *service.Service
	importer *service.ImportService
	repo     *repository.Repo
}

// New creates the orders module. The enqueuer may be nil when no job queue is
// configured.
func New(pool *pgxpool.Pool, store service.StoreClient, creds service.CredentialsProvider, reconciler service.Reconciler, enqueuer handler.ImportEnqueuer, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	importer := service.NewImport(repo, store, creds, reconciler, bus, log)

	return &Module{
		handler:  handler.New(svc, importer, enqueuer, log),
		service:  svc,
		importer: importer,
		repo:     repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "orders" }

// Service exposes the order cache service for in-process collaborators.
func (m *Module) Service() *service.Service { return m.service }

// Importer exposes the import pipeline for the scheduler and adapters.
func (m *Module) Importer() *service.ImportService { return m.importer }

// Repository exposes the order reader for adapters that resolve external ids.
func (m *Module) Repository() repository.Repository { return m.repo }

// RegisterRoutes mounts the order routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/orders")
	{
		group.GET("", m.handler.List)
		group.GET("/:id", m.handler.Get)
		group.POST("/import", m.handler.Import)
	}

	ctx.Admin.POST("/orders/backfill-customization", m.handler.Backfill)
}
