package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	ordersservice "familyhub_backend/internal/orders/service"
	"familyhub_backend/platform/logger"
)

// importRunner is the slice of the import pipeline the worker needs.
type importRunner interface {
	Run(ctx context.Context, familyID uuid.UUID, since time.Time) (ordersservice.ImportResult, error)
}

// Worker processes background tasks.
type Worker struct {
	importer importRunner
	window   time.Duration
	log      *logger.Logger
}

// NewWorker creates a worker. The window bounds how far back each periodic
// import looks; it overlaps the previous run so no modification is missed
// between ticks.
func NewWorker(importer importRunner, syncInterval time.Duration, log *logger.Logger) *Worker {
	return &Worker{
		importer: importer,
		window:   2 * syncInterval,
		log:      log,
	}
}

// Register mounts the worker's handlers on the asynq mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskOrderImport, w.HandleOrderImport)
}

// HandleOrderImport runs one import cycle for the family in the payload.
// Errors are returned so asynq retries with backoff.
func (w *Worker) HandleOrderImport(ctx context.Context, task *asynq.Task) error {
	var payload OrderImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal import payload: %w", err)
	}

	since := time.Now().UTC().Add(-w.window)
	result, err := w.importer.Run(ctx, payload.FamilyID, since)
	if err != nil {
		return fmt.Errorf("order import for family %s: %w", payload.FamilyID, err)
	}

	w.log.Info("periodic order import finished",
		"familyId", payload.FamilyID,
		"fetched", result.Fetched,
		"created", result.Created,
		"updated", result.Updated,
		"failed", result.Failed,
	)
	return nil
}
