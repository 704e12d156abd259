package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"familyhub_backend/internal/events"
	"familyhub_backend/internal/orders/customization"
	"familyhub_backend/internal/orders/repository"
	"familyhub_backend/internal/woo"
	"familyhub_backend/platform/apperr"
	"familyhub_backend/platform/logger"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]repository.Order

	upsertErr map[int64]error
	setErr    error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:    make(map[int64]repository.Order),
		upsertErr: make(map[int64]error),
	}
}

var _ repository.Repository = (*fakeOrderRepo)(nil)

func (f *fakeOrderRepo) GetByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.ID == id {
			return order, nil
		}
	}
	return repository.Order{}, apperr.NotFound("order not found")
}

func (f *fakeOrderRepo) GetByExternalID(_ context.Context, _ uuid.UUID, externalID int64) (repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[externalID]
	if !ok {
		return repository.Order{}, apperr.NotFound("order not found")
	}
	return order, nil
}

func (f *fakeOrderRepo) List(_ context.Context, params repository.ListParams) ([]repository.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make([]repository.Order, 0, len(f.orders))
	for _, order := range f.orders {
		all = append(all, order)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ExternalID < all[j].ExternalID })

	total := len(all)
	if params.Offset >= total {
		return nil, total, nil
	}
	end := params.Offset + params.Limit
	if end > total {
		end = total
	}
	return all[params.Offset:end], total, nil
}

func (f *fakeOrderRepo) Upsert(_ context.Context, params repository.UpsertParams) (repository.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.upsertErr[params.ExternalID]; err != nil {
		return repository.Order{}, false, err
	}

	existing, ok := f.orders[params.ExternalID]
	order := repository.Order{
		ID:            uuid.New(),
		FamilyID:      params.FamilyID,
		ExternalID:    params.ExternalID,
		Number:        params.Number,
		Status:        params.Status,
		CustomerName:  params.CustomerName,
		TotalCents:    params.TotalCents,
		Currency:      params.Currency,
		RawMetadata:   params.RawMetadata,
		Customization: params.Customization,
		CreatedAt:     params.CreatedAt,
		ImportedAt:    time.Now(),
	}
	if ok {
		order.ID = existing.ID
	}
	f.orders[params.ExternalID] = order
	return order, !ok, nil
}

func (f *fakeOrderRepo) SetCustomization(_ context.Context, _ uuid.UUID, id uuid.UUID, record *customization.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	for externalID, order := range f.orders {
		if order.ID == id {
			order.Customization = record
			f.orders[externalID] = order
			return nil
		}
	}
	return apperr.NotFound("order not found")
}

type fakeStore struct {
	orders []woo.Order
	err    error
	since  time.Time
}

func (f *fakeStore) FetchOrders(_ context.Context, _ woo.Credentials, since time.Time) ([]woo.Order, error) {
	f.since = since
	return f.orders, f.err
}

type fakeCreds struct {
	err error
}

func (f *fakeCreds) Credentials(_ context.Context, _ uuid.UUID) (woo.Credentials, error) {
	if f.err != nil {
		return woo.Credentials{}, f.err
	}
	return woo.Credentials{BaseURL: "https://shop.example"}, nil
}

type fakeReconciler struct {
	observations []StatusObservation
	summary      ReconcileSummary
	err          error
}

func (f *fakeReconciler) BulkReconcile(_ context.Context, _ uuid.UUID, observations []StatusObservation) (ReconcileSummary, error) {
	f.observations = observations
	return f.summary, f.err
}

type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	f.Publish(context.Background(), event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func storeOrder(id int64, status string, meta []woo.MetaEntry) woo.Order {
	return woo.Order{
		ID:        id,
		Number:    "1000",
		Status:    status,
		Total:     "59.90",
		Currency:  "EUR",
		Customer:  "Jane Doe",
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		LineItems: []woo.LineItem{{Name: "Nameplate", Quantity: 1, MetaData: meta}},
	}
}

func newImportHarness(store *fakeStore) (*ImportService, *fakeOrderRepo, *fakeReconciler, *fakeBus) {
	repo := newFakeOrderRepo()
	reconciler := &fakeReconciler{}
	bus := &fakeBus{}
	svc := NewImport(repo, store, &fakeCreds{}, reconciler, bus, logger.New("development"))
	return svc, repo, reconciler, bus
}

func TestImportRun_UpsertsAndReconciles(t *testing.T) {
	store := &fakeStore{orders: []woo.Order{
		storeOrder(1, "processing", []woo.MetaEntry{{Key: "Font", Value: "Serif"}}),
		storeOrder(2, "completed", nil),
	}}
	svc, repo, reconciler, _ := newImportHarness(store)
	reconciler.summary = ReconcileSummary{ItemsCreated: 2, StagesCreated: 1}

	result, err := svc.Run(context.Background(), uuid.New(), time.Time{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Fetched != 2 || result.Created != 2 || result.Updated != 0 || result.Failed != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.ItemsCreated != 2 || result.StagesCreated != 1 {
		t.Errorf("reconcile summary not folded into result: %+v", result)
	}

	if len(reconciler.observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(reconciler.observations))
	}

	cached, err := repo.GetByExternalID(context.Background(), uuid.Nil, 1)
	if err != nil {
		t.Fatalf("cached order: %v", err)
	}
	if cached.TotalCents != 5990 {
		t.Errorf("expected total 5990 cents, got %d", cached.TotalCents)
	}
	if cached.Customization == nil || cached.Customization.Font == nil || *cached.Customization.Font != "Serif" {
		t.Errorf("expected extracted customization, got %+v", cached.Customization)
	}
}

func TestImportRun_SecondRunUpdates(t *testing.T) {
	store := &fakeStore{orders: []woo.Order{storeOrder(1, "processing", nil)}}
	svc, _, _, _ := newImportHarness(store)
	familyID := uuid.New()

	if _, err := svc.Run(context.Background(), familyID, time.Time{}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	store.orders[0].Status = "completed"
	result, err := svc.Run(context.Background(), familyID, time.Time{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Created != 0 || result.Updated != 1 {
		t.Errorf("expected a pure update, got %+v", result)
	}
}

func TestImportRun_IsolatesRowFailures(t *testing.T) {
	store := &fakeStore{orders: []woo.Order{
		storeOrder(1, "processing", nil),
		storeOrder(2, "processing", nil),
	}}
	svc, repo, reconciler, _ := newImportHarness(store)
	repo.upsertErr[1] = errors.New("constraint violation")

	result, err := svc.Run(context.Background(), uuid.New(), time.Time{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Failed != 1 || result.Created != 1 {
		t.Errorf("expected one failure and one creation, got %+v", result)
	}
	if len(reconciler.observations) != 1 {
		t.Errorf("failed row must not reach reconciliation, got %d observations", len(reconciler.observations))
	}
}

func TestImportRun_FetchFailureAborts(t *testing.T) {
	store := &fakeStore{err: &woo.SyncError{Op: "fetch orders", StatusCode: 503}}
	svc, _, reconciler, bus := newImportHarness(store)

	_, err := svc.Run(context.Background(), uuid.New(), time.Time{})
	var syncErr *woo.SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("expected SyncError, got %v", err)
	}
	if reconciler.observations != nil {
		t.Error("expected no reconciliation after fetch failure")
	}
	if len(bus.published) != 0 {
		t.Error("expected no completion event after fetch failure")
	}
}

func TestImportRun_MissingCredentials(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewImport(repo, &fakeStore{}, &fakeCreds{err: apperr.Configuration("store connection not configured")},
		&fakeReconciler{}, &fakeBus{}, logger.New("development"))

	_, err := svc.Run(context.Background(), uuid.New(), time.Time{})
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestImportRun_PublishesCompletionEvent(t *testing.T) {
	store := &fakeStore{orders: []woo.Order{storeOrder(1, "processing", nil)}}
	svc, _, _, bus := newImportHarness(store)
	familyID := uuid.New()

	if _, err := svc.Run(context.Background(), familyID, time.Time{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.published))
	}
	event, ok := bus.published[0].(events.OrderImportCompleted)
	if !ok {
		t.Fatalf("expected OrderImportCompleted, got %T", bus.published[0])
	}
	if event.FamilyID != familyID || event.Created != 1 {
		t.Errorf("unexpected event payload %+v", event)
	}
}

func TestParseTotalCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"59.90", 5990},
		{"0", 0},
		{"100", 10000},
		{"12.345", 1235},
		{"", 0},
		{"abc", 0},
		{" 7.5 ", 750},
	}
	for _, tc := range cases {
		if got := parseTotalCents(tc.in); got != tc.want {
			t.Errorf("parseTotalCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
