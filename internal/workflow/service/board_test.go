package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"familyhub_backend/internal/workflow/repository"
	"familyhub_backend/internal/workflow/transport"
	"familyhub_backend/platform/apperr"
)

func TestGetBoard_GroupsItemsByStage(t *testing.T) {
	svc, repo, _, _ := newTestService()
	familyID := uuid.New()

	active := seedStage(repo, "Active", strPtr("processing"))
	hidden := seedStage(repo, "Archive", strPtr("completed"))
	repo.stages[1].Hidden = true

	repo.boardItems = []repository.BoardItem{
		{Item: repository.WorkItem{ID: uuid.New(), StageID: active.ID}, OrderNumber: "1001"},
		{Item: repository.WorkItem{ID: uuid.New(), StageID: active.ID}, OrderNumber: "1002"},
		{Item: repository.WorkItem{ID: uuid.New(), StageID: hidden.ID}, OrderNumber: "900"},
	}

	board, err := svc.GetBoard(context.Background(), familyID, transport.BoardQuery{})
	if err != nil {
		t.Fatalf("get board: %v", err)
	}

	if len(board.Columns) != 2 {
		t.Fatalf("expected hidden stages in the board, got %d columns", len(board.Columns))
	}
	if len(board.Columns[0].Items) != 2 {
		t.Errorf("expected 2 items in first column, got %d", len(board.Columns[0].Items))
	}
	if len(board.Columns[1].Items) != 1 {
		t.Errorf("expected 1 item in hidden column, got %d", len(board.Columns[1].Items))
	}
}

func TestGetBoard_EmptyStageGetsEmptySlice(t *testing.T) {
	svc, repo, _, _ := newTestService()
	seedStage(repo, "Empty", nil)

	board, err := svc.GetBoard(context.Background(), uuid.New(), transport.BoardQuery{})
	if err != nil {
		t.Fatalf("get board: %v", err)
	}
	if board.Columns[0].Items == nil {
		t.Error("expected empty slice, not nil, for a stage without items")
	}
}

func TestGetBoard_SeedsDefaultPipelineOnFirstRead(t *testing.T) {
	svc, _, _, _ := newTestService()

	board, err := svc.GetBoard(context.Background(), uuid.New(), transport.BoardQuery{})
	if err != nil {
		t.Fatalf("get board: %v", err)
	}
	if len(board.Columns) != len(defaultPipeline) {
		t.Fatalf("expected %d default columns, got %d", len(defaultPipeline), len(board.Columns))
	}
}

func TestGetBoard_DateRangeIsHalfOpen(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.GetBoard(context.Background(), uuid.New(), transport.BoardQuery{
		From: "2026-01-10",
		To:   "2026-01-20",
	})
	if err != nil {
		t.Fatalf("get board: %v", err)
	}

	wantFrom := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)
	if repo.lastFilters.CreatedFrom == nil || !repo.lastFilters.CreatedFrom.Equal(wantFrom) {
		t.Errorf("expected from %v, got %v", wantFrom, repo.lastFilters.CreatedFrom)
	}
	if repo.lastFilters.CreatedTo == nil || !repo.lastFilters.CreatedTo.Equal(wantTo) {
		t.Errorf("expected exclusive to %v, got %v", wantTo, repo.lastFilters.CreatedTo)
	}
}

func TestGetBoard_InvalidDate(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.GetBoard(context.Background(), uuid.New(), transport.BoardQuery{From: "10-01-2026"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetBoard_InvertedRange(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.GetBoard(context.Background(), uuid.New(), transport.BoardQuery{
		From: "2026-02-01",
		To:   "2026-01-01",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetBoard_PassesCustomizationFilters(t *testing.T) {
	svc, repo, _, _ := newTestService()

	style, font := "Modern", "Serif"
	_, err := svc.GetBoard(context.Background(), uuid.New(), transport.BoardQuery{
		Style: &style,
		Font:  &font,
	})
	if err != nil {
		t.Fatalf("get board: %v", err)
	}
	if repo.lastFilters.Style == nil || *repo.lastFilters.Style != "Modern" {
		t.Errorf("style filter not passed: %v", repo.lastFilters.Style)
	}
	if repo.lastFilters.Font == nil || *repo.lastFilters.Font != "Serif" {
		t.Errorf("font filter not passed: %v", repo.lastFilters.Font)
	}
	if repo.lastFilters.Color != nil {
		t.Errorf("unexpected color filter: %v", repo.lastFilters.Color)
	}
}

func TestGetFilterOptions_NilBecomesEmpty(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.options = repository.FilterOptions{Styles: []string{"Classic"}}

	options, err := svc.GetFilterOptions(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("filter options: %v", err)
	}
	if len(options.Styles) != 1 || options.Styles[0] != "Classic" {
		t.Errorf("unexpected styles: %v", options.Styles)
	}
	if options.Fonts == nil || options.Colors == nil {
		t.Error("expected empty slices for absent option sets")
	}
}

func TestHistory_MapsLedgerEntries(t *testing.T) {
	svc, repo, _, _ := newTestService()
	familyID, orderID := uuid.New(), uuid.New()

	stage := seedStage(repo, "New", strPtr("pending"))
	if _, _, err := svc.ReconcileFromExternal(context.Background(), familyID, orderID, "pending"); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	history, err := svc.History(context.Background(), familyID, orderID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one entry, got %d", len(history))
	}
	if history[0].ToStageID != stage.ID {
		t.Errorf("expected entry pointing at seeded stage")
	}
	if history[0].ActorType != string(repository.ActorSystem) {
		t.Errorf("expected system actor, got %q", history[0].ActorType)
	}
}

func TestHistory_SameInstantMovesReplayNewestFirst(t *testing.T) {
	svc, repo, _, _ := newTestService()
	familyID, orderID, userID := uuid.New(), uuid.New(), uuid.New()

	first := seedStage(repo, "New", strPtr("pending"))
	second := seedStage(repo, "Active", strPtr("processing"))
	third := seedStage(repo, "Done", strPtr("completed"))
	seedItem(repo, orderID, first.ID)

	// Two moves inside the same clock tick must still replay in the order
	// they were recorded.
	if _, err := svc.MoveStage(context.Background(), familyID, orderID, second.ID, userID, ""); err != nil {
		t.Fatalf("first move: %v", err)
	}
	if _, err := svc.MoveStage(context.Background(), familyID, orderID, third.ID, userID, ""); err != nil {
		t.Fatalf("second move: %v", err)
	}
	stamp := time.Now()
	for i := range repo.transitions {
		repo.transitions[i].CreatedAt = stamp
	}

	history, err := svc.History(context.Background(), familyID, orderID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two entries, got %d", len(history))
	}
	if history[0].ToStageID != third.ID || history[1].ToStageID != second.ID {
		t.Error("expected the later move first")
	}
}
