package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"familyhub_backend/internal/events"
	"familyhub_backend/internal/orders/customization"
	"familyhub_backend/internal/orders/repository"
	"familyhub_backend/internal/woo"
	"familyhub_backend/platform/logger"
)

// importConcurrency bounds the number of snapshots upserted in parallel.
const importConcurrency = 4

// StoreClient fetches order snapshots from the external store.
type StoreClient interface {
	FetchOrders(ctx context.Context, creds woo.Credentials, since time.Time) ([]woo.Order, error)
}

// CredentialsProvider resolves a family's store connection.
type CredentialsProvider interface {
	Credentials(ctx context.Context, familyID uuid.UUID) (woo.Credentials, error)
}

// StatusObservation is one imported order's externally observed status,
// handed to the workflow engine for inbound reconciliation.
type StatusObservation struct {
	OrderID uuid.UUID
	Status  string
}

// ReconcileSummary reports what the workflow engine changed for a batch.
type ReconcileSummary struct {
	ItemsCreated  int
	ItemsMoved    int
	StagesCreated int
	Failed        int
}

// Reconciler is the workflow engine as seen from the import pipeline.
type Reconciler interface {
	BulkReconcile(ctx context.Context, familyID uuid.UUID, observations []StatusObservation) (ReconcileSummary, error)
}

// ImportResult summarizes one import cycle.
type ImportResult struct {
	Fetched       int
	Created       int
	Updated       int
	Failed        int
	ItemsCreated  int
	ItemsMoved    int
	StagesCreated int
}

// ImportService runs the order import pipeline: fetch snapshots from the
// store, extract customization, refresh the local cache, then reconcile the
// board through the workflow engine.
type ImportService struct {
	repo       repository.Repository
	store      StoreClient
	creds      CredentialsProvider
	reconciler Reconciler
	bus        events.Bus
	log        *logger.Logger
}

// NewImport creates a new import service.
func NewImport(repo repository.Repository, store StoreClient, creds CredentialsProvider, reconciler Reconciler, bus events.Bus, log *logger.Logger) *ImportService {
	return &ImportService{
		repo:       repo,
		store:      store,
		creds:      creds,
		reconciler: reconciler,
		bus:        bus,
		log:        log,
	}
}

// Run imports all orders modified since the given time. One snapshot's
// failure is counted and logged without aborting the rest of the batch.
func (s *ImportService) Run(ctx context.Context, familyID uuid.UUID, since time.Time) (ImportResult, error) {
	creds, err := s.creds.Credentials(ctx, familyID)
	if err != nil {
		return ImportResult{}, err
	}

	snapshots, err := s.store.FetchOrders(ctx, creds, since)
	if err != nil {
		s.log.SyncEvent("order_fetch", familyID.String(), false, err.Error())
		return ImportResult{}, err
	}

	result := ImportResult{Fetched: len(snapshots)}

	var mu sync.Mutex
	observations := make([]StatusObservation, 0, len(snapshots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)
	for _, snapshot := range snapshots {
		snapshot := snapshot
		g.Go(func() error {
			order, created, err := s.repo.Upsert(gctx, snapshotToParams(familyID, snapshot))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Error("order upsert failed",
					"familyId", familyID, "externalId", snapshot.ID, "error", err)
				result.Failed++
				return nil
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			observations = append(observations, StatusObservation{OrderID: order.ID, Status: snapshot.Status})
			return nil
		})
	}
	_ = g.Wait()

	summary, err := s.reconciler.BulkReconcile(ctx, familyID, observations)
	if err != nil {
		return result, err
	}
	result.ItemsCreated = summary.ItemsCreated
	result.ItemsMoved = summary.ItemsMoved
	result.StagesCreated = summary.StagesCreated
	result.Failed += summary.Failed

	s.log.SyncEvent("order_import", familyID.String(), result.Failed == 0, "")
	s.bus.Publish(ctx, events.OrderImportCompleted{
		BaseEvent: events.NewBaseEvent(),
		FamilyID:  familyID,
		Created:   result.Created,
		Updated:   result.Updated,
		Failed:    result.Failed,
	})

	return result, nil
}

// snapshotToParams flattens a store snapshot into cache row fields. Line-item
// metadata from every item is concatenated before extraction: stores attach
// customization to the purchased product, not the order.
func snapshotToParams(familyID uuid.UUID, snapshot woo.Order) repository.UpsertParams {
	var meta []customization.MetaEntry
	for _, item := range snapshot.LineItems {
		for _, entry := range item.MetaData {
			meta = append(meta, customization.MetaEntry{Key: entry.Key, Value: entry.Value})
		}
	}

	return repository.UpsertParams{
		FamilyID:      familyID,
		ExternalID:    snapshot.ID,
		Number:        snapshot.Number,
		Status:        snapshot.Status,
		CustomerName:  snapshot.Customer,
		TotalCents:    parseTotalCents(snapshot.Total),
		Currency:      snapshot.Currency,
		RawMetadata:   meta,
		Customization: customization.Extract(meta),
		CreatedAt:     snapshot.CreatedAt,
	}
}

// parseTotalCents converts the store's decimal money string to cents.
// Unparseable totals degrade to zero; the raw value stays available in the
// snapshot for manual inspection.
func parseTotalCents(total string) int64 {
	trimmed := strings.TrimSpace(total)
	if trimmed == "" {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(value * 100))
}
