package adapters

import (
	"context"
	"time"

	"github.com/google/uuid"

	ordersservice "familyhub_backend/internal/orders/service"
	workflowtransport "familyhub_backend/internal/workflow/transport"
	"familyhub_backend/platform/apperr"
)

// importRunner is the slice of the import pipeline the syncer needs.
type importRunner interface {
	Run(ctx context.Context, familyID uuid.UUID, since time.Time) (ordersservice.ImportResult, error)
}

// ImportSyncer lets the workflow module trigger a full import cycle. The
// importer is bound after construction: the workflow module is built before
// the orders module because the orders module reconciles through it.
type ImportSyncer struct {
	importer importRunner
}

// NewImportSyncer creates an unbound syncer.
func NewImportSyncer() *ImportSyncer {
	return &ImportSyncer{}
}

// Bind attaches the import pipeline.
func (s *ImportSyncer) Bind(importer importRunner) {
	s.importer = importer
}

// Sync runs a full import-and-reconcile cycle.
func (s *ImportSyncer) Sync(ctx context.Context, familyID uuid.UUID) (workflowtransport.SyncResponse, error) {
	if s.importer == nil {
		return workflowtransport.SyncResponse{}, apperr.Internal("import pipeline not wired")
	}

	result, err := s.importer.Run(ctx, familyID, time.Time{})
	if err != nil {
		return workflowtransport.SyncResponse{}, err
	}
	return workflowtransport.SyncResponse{
		Fetched:       result.Fetched,
		Created:       result.Created,
		Updated:       result.Updated,
		Failed:        result.Failed,
		ItemsCreated:  result.ItemsCreated,
		ItemsMoved:    result.ItemsMoved,
		StagesCreated: result.StagesCreated,
	}, nil
}
