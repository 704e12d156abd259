// Command api runs the HTTP API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"familyhub_backend/internal/adapters"
	"familyhub_backend/internal/events"
	apphttp "familyhub_backend/internal/http"
	"familyhub_backend/internal/http/router"
	"familyhub_backend/internal/orders"
	ordershandler "familyhub_backend/internal/orders/handler"
	ordersrepo "familyhub_backend/internal/orders/repository"
	"familyhub_backend/internal/scheduler"
	"familyhub_backend/internal/woo"
	"familyhub_backend/internal/workflow"
	"familyhub_backend/platform/config"
	"familyhub_backend/platform/db"
	"familyhub_backend/platform/logger"
	"familyhub_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := connectWithRetry(ctx, cfg, log)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	bus := events.NewInMemoryBus(log)
	v := validator.New()

	wooClient := woo.NewClient(log)
	creds := adapters.NewConfigCredentials(cfg)
	pusher := adapters.NewStorePusher(ordersrepo.New(pool), wooClient, creds)

	// With redis configured, manual imports are queued for the worker
	// instead of blocking the request on a full store fetch.
	var enqueuer ordershandler.ImportEnqueuer
	if cfg.GetRedisURL() != "" {
		redisOpt, err := scheduler.RedisOpt(cfg)
		if err != nil {
			log.Error("invalid redis configuration", "error", err)
			os.Exit(1)
		}
		queueClient := scheduler.NewClient(redisOpt, cfg.GetAsynqQueueName())
		defer queueClient.Close()
		enqueuer = queueClient
	}

	// The workflow module is built first; the orders module reconciles
	// through its service, and the syncer is bound once the importer exists.
	syncer := adapters.NewImportSyncer()
	workflowModule := workflow.New(pool, pusher, syncer, bus, v, log)
	ordersModule := orders.New(pool, wooClient, creds, adapters.NewWorkflowReconciler(workflowModule.Service()), enqueuer, bus, log)
	syncer.Bind(ordersModule.Importer())

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: bus,
		Modules:  []apphttp.Module{workflowModule, ordersModule},
	}

	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", cfg.GetHTTPAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

// connectWithRetry gives the database a short grace period on startup, where
// the container may come up before Postgres accepts connections.
func connectWithRetry(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	const attempts = 5

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := db.NewPool(ctx, cfg)
		if err == nil {
			return pool, nil
		}
		lastErr = err
		log.Warn("database not ready, retrying", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return nil, lastErr
}
