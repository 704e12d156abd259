package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"familyhub_backend/internal/events"
	"familyhub_backend/internal/workflow/repository"
	"familyhub_backend/platform/apperr"
	"familyhub_backend/platform/logger"
)

// fakeRepo is an in-memory Repository for exercising the engine without a
// database.
type fakeRepo struct {
	stages      []repository.Stage
	items       map[uuid.UUID]repository.WorkItem
	transitions []repository.TransitionRecord
	boardItems  []repository.BoardItem
	options     repository.FilterOptions

	lastFilters repository.BoardFilters
	moveErr     map[uuid.UUID]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:   make(map[uuid.UUID]repository.WorkItem),
		moveErr: make(map[uuid.UUID]error),
	}
}

var _ repository.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) ListStages(_ context.Context, _ uuid.UUID) ([]repository.Stage, error) {
	out := make([]repository.Stage, len(f.stages))
	copy(out, f.stages)
	return out, nil
}

func (f *fakeRepo) GetStage(_ context.Context, _ uuid.UUID, stageID uuid.UUID) (repository.Stage, error) {
	for _, stage := range f.stages {
		if stage.ID == stageID {
			return stage, nil
		}
	}
	return repository.Stage{}, apperr.NotFound("stage not found")
}

func (f *fakeRepo) ReplaceStages(_ context.Context, familyID uuid.UUID, specs []repository.StageSpec) ([]repository.Stage, error) {
	f.stages = f.stages[:0]
	for position, spec := range specs {
		f.stages = append(f.stages, repository.Stage{
			ID:             uuid.New(),
			FamilyID:       familyID,
			Name:           spec.Name,
			Color:          spec.Color,
			Position:       position,
			ExternalStatus: spec.ExternalStatus,
			Hidden:         spec.Hidden,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		})
	}
	out := make([]repository.Stage, len(f.stages))
	copy(out, f.stages)
	return out, nil
}

func (f *fakeRepo) EnsureStageForExternalStatus(_ context.Context, familyID uuid.UUID, spec repository.StageSpec) (repository.Stage, bool, error) {
	for _, stage := range f.stages {
		if stage.ExternalStatus != nil && *stage.ExternalStatus == *spec.ExternalStatus {
			return stage, false, nil
		}
	}
	stage := repository.Stage{
		ID:             uuid.New(),
		FamilyID:       familyID,
		Name:           spec.Name,
		Color:          spec.Color,
		Position:       len(f.stages),
		ExternalStatus: spec.ExternalStatus,
		Hidden:         spec.Hidden,
	}
	f.stages = append(f.stages, stage)
	return stage, true, nil
}

func (f *fakeRepo) GetItemByOrder(_ context.Context, _ uuid.UUID, orderID uuid.UUID) (repository.WorkItem, error) {
	item, ok := f.items[orderID]
	if !ok {
		return repository.WorkItem{}, apperr.NotFound("work item not found")
	}
	return item, nil
}

func (f *fakeRepo) CreateItemWithTransition(_ context.Context, _ uuid.UUID, orderID, stageID uuid.UUID, actor repository.Actor, note string) (repository.WorkItem, error) {
	item := repository.WorkItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		StageID:   stageID,
		UpdatedAt: time.Now(),
	}
	f.items[orderID] = item
	f.transitions = append(f.transitions, repository.TransitionRecord{
		ID:        uuid.New(),
		OrderID:   orderID,
		ToStageID: stageID,
		Actor:     actor,
		Note:      note,
		CreatedAt: time.Now(),
	})
	return item, nil
}

func (f *fakeRepo) MoveItemWithTransition(_ context.Context, _ uuid.UUID, orderID, toStageID uuid.UUID, actor repository.Actor, note string) (repository.WorkItem, bool, error) {
	if err := f.moveErr[orderID]; err != nil {
		return repository.WorkItem{}, false, err
	}

	item, ok := f.items[orderID]
	if !ok {
		return repository.WorkItem{}, false, apperr.NotFound("work item not found")
	}
	if item.StageID == toStageID {
		return item, false, nil
	}

	fromStageID := item.StageID
	item.StageID = toStageID
	item.UpdatedAt = time.Now()
	f.items[orderID] = item
	f.transitions = append(f.transitions, repository.TransitionRecord{
		ID:          uuid.New(),
		OrderID:     orderID,
		FromStageID: &fromStageID,
		ToStageID:   toStageID,
		Actor:       actor,
		Note:        note,
		CreatedAt:   time.Now(),
	})
	return item, true, nil
}

func (f *fakeRepo) UpdateItem(_ context.Context, _ uuid.UUID, orderID uuid.UUID, params repository.UpdateItemParams) (repository.WorkItem, error) {
	item, ok := f.items[orderID]
	if !ok {
		return repository.WorkItem{}, apperr.NotFound("work item not found")
	}

	if params.Priority != nil {
		item.Priority = *params.Priority
	}
	if params.Notes != nil {
		item.Notes = *params.Notes
	}
	switch {
	case params.ClearAssignee:
		item.AssigneeID = nil
	case params.AssigneeID != nil:
		item.AssigneeID = params.AssigneeID
	}
	item.UpdatedAt = time.Now()
	f.items[orderID] = item
	return item, nil
}

func (f *fakeRepo) History(_ context.Context, _ uuid.UUID, orderID uuid.UUID) ([]repository.TransitionRecord, error) {
	var records []repository.TransitionRecord
	for i := len(f.transitions) - 1; i >= 0; i-- {
		if f.transitions[i].OrderID == orderID {
			records = append(records, f.transitions[i])
		}
	}
	return records, nil
}

func (f *fakeRepo) BoardItems(_ context.Context, _ uuid.UUID, filters repository.BoardFilters) ([]repository.BoardItem, error) {
	f.lastFilters = filters
	out := make([]repository.BoardItem, len(f.boardItems))
	copy(out, f.boardItems)
	return out, nil
}

func (f *fakeRepo) FilterOptions(_ context.Context, _ uuid.UUID) (repository.FilterOptions, error) {
	return f.options, nil
}

func (f *fakeRepo) transitionsFor(orderID uuid.UUID) []repository.TransitionRecord {
	var records []repository.TransitionRecord
	for _, record := range f.transitions {
		if record.OrderID == orderID {
			records = append(records, record)
		}
	}
	return records
}

// fakePusher records status pushes and optionally fails them.
type fakePusher struct {
	pushes []pushCall
	err    error
}

type pushCall struct {
	orderID uuid.UUID
	status  string
}

func (f *fakePusher) PushStatus(_ context.Context, _ uuid.UUID, orderID uuid.UUID, status string) error {
	f.pushes = append(f.pushes, pushCall{orderID: orderID, status: status})
	return f.err
}

// fakeBus records published events synchronously.
type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func newTestService() (*Service, *fakeRepo, *fakePusher, *fakeBus) {
	repo := newFakeRepo()
	pusher := &fakePusher{}
	bus := &fakeBus{}
	svc := New(repo, pusher, bus, logger.New("development"))
	return svc, repo, pusher, bus
}
