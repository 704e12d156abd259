// Command customization-backfill recomputes the customization records of all
// cached orders for one family. Extraction is deterministic, so the backfill
// is safe to run after the alias lists change.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	ordersrepo "familyhub_backend/internal/orders/repository"
	ordersservice "familyhub_backend/internal/orders/service"
	"familyhub_backend/platform/config"
	"familyhub_backend/platform/db"
	"familyhub_backend/platform/logger"
)

func main() {
	familyFlag := flag.String("family", "", "family id to backfill (defaults to STORE_TENANT_ID)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	raw := *familyFlag
	if raw == "" {
		raw = cfg.GetStoreTenantID()
	}
	familyID, err := uuid.Parse(raw)
	if err != nil {
		log.Error("a valid -family uuid is required", "value", raw)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := ordersservice.New(ordersrepo.New(pool), log)

	updated, err := svc.BackfillCustomization(ctx, familyID)
	if err != nil {
		log.Error("backfill failed", "familyId", familyID, "updated", updated, "error", err)
		os.Exit(1)
	}

	log.Info("backfill finished", "familyId", familyID, "updated", updated)
}
