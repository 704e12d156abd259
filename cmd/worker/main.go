// Command worker runs the background job server: it processes order import
// tasks and schedules the periodic import for the connected store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"familyhub_backend/internal/adapters"
	"familyhub_backend/internal/events"
	ordersrepo "familyhub_backend/internal/orders/repository"
	ordersservice "familyhub_backend/internal/orders/service"
	"familyhub_backend/internal/scheduler"
	"familyhub_backend/internal/woo"
	workflowrepo "familyhub_backend/internal/workflow/repository"
	workflowservice "familyhub_backend/internal/workflow/service"
	"familyhub_backend/platform/config"
	"familyhub_backend/platform/db"
	"familyhub_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.GetRedisURL() == "" {
		os.Stderr.WriteString("REDIS_URL is required for the worker\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	bus := events.NewInMemoryBus(log)
	wooClient := woo.NewClient(log)
	creds := adapters.NewConfigCredentials(cfg)

	workflowSvc := workflowservice.New(
		workflowrepo.New(pool),
		adapters.NewStorePusher(ordersrepo.New(pool), wooClient, creds),
		bus, log,
	)
	importer := ordersservice.NewImport(
		ordersrepo.New(pool), wooClient, creds,
		adapters.NewWorkflowReconciler(workflowSvc),
		bus, log,
	)

	redisOpt, err := scheduler.RedisOpt(cfg)
	if err != nil {
		log.Error("redis configuration invalid", "error", err)
		os.Exit(1)
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.GetAsynqConcurrency(),
		Queues:      map[string]int{cfg.GetAsynqQueueName(): 1},
	})
	mux := asynq.NewServeMux()
	scheduler.NewWorker(importer, cfg.GetOrderSyncInterval(), log).Register(mux)

	periodic := asynq.NewScheduler(redisOpt, nil)
	if err := registerPeriodicImport(periodic, cfg, log); err != nil {
		log.Error("periodic import registration failed", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(mux)
	})
	g.Go(func() error {
		return periodic.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		periodic.Shutdown()
		srv.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Error("worker failed", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}

// registerPeriodicImport schedules the recurring import for the family that
// owns the configured store connection. Without a store there is nothing to
// import and the worker only serves manually enqueued tasks.
func registerPeriodicImport(periodic *asynq.Scheduler, cfg *config.Config, log *logger.Logger) error {
	if !cfg.IsStoreEnabled() || cfg.GetStoreTenantID() == "" {
		log.Info("no store connection configured, periodic import disabled")
		return nil
	}

	familyID, err := uuid.Parse(cfg.GetStoreTenantID())
	if err != nil {
		return fmt.Errorf("STORE_TENANT_ID is not a valid uuid: %w", err)
	}

	task, err := scheduler.NewOrderImportTask(familyID)
	if err != nil {
		return err
	}

	spec := fmt.Sprintf("@every %s", cfg.GetOrderSyncInterval())
	if _, err := periodic.Register(spec, task, asynq.Queue(cfg.GetAsynqQueueName())); err != nil {
		return fmt.Errorf("register periodic import: %w", err)
	}

	log.Info("periodic order import scheduled", "familyId", familyID, "interval", cfg.GetOrderSyncInterval())
	return nil
}
