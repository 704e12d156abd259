package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"familyhub_backend/internal/events"
	"familyhub_backend/internal/workflow/transport"
	"familyhub_backend/platform/apperr"
)

func TestSeedDefaultStages(t *testing.T) {
	svc, repo, _, _ := newTestService()
	familyID := uuid.New()

	if err := svc.SeedDefaultStages(context.Background(), familyID); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if len(repo.stages) != len(defaultPipeline) {
		t.Fatalf("expected %d stages, got %d", len(defaultPipeline), len(repo.stages))
	}
	if repo.stages[0].Name != "Pending Payment" {
		t.Errorf("expected first stage Pending Payment, got %q", repo.stages[0].Name)
	}
	if !repo.stages[len(repo.stages)-1].Hidden {
		t.Error("expected terminal stages to be seeded hidden")
	}

	// Seeding again must not duplicate an existing pipeline.
	if err := svc.SeedDefaultStages(context.Background(), familyID); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if len(repo.stages) != len(defaultPipeline) {
		t.Errorf("reseed duplicated stages: got %d", len(repo.stages))
	}
}

func TestListStages_SeedsDefaultPipelineOnFirstRead(t *testing.T) {
	svc, repo, _, _ := newTestService()
	familyID := uuid.New()

	stages, err := svc.ListStages(context.Background(), familyID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stages) != len(defaultPipeline) {
		t.Fatalf("expected %d seeded stages, got %d", len(defaultPipeline), len(stages))
	}
	if len(repo.stages) != len(defaultPipeline) {
		t.Fatalf("expected the seeded pipeline to be persisted")
	}

	// A second read must serve the persisted pipeline, not reseed it.
	again, err := svc.ListStages(context.Background(), familyID)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if again[0].ID != stages[0].ID {
		t.Error("expected the same stages on the second read")
	}
}

func TestReplaceStages_AssignsPositionsFromListOrder(t *testing.T) {
	svc, _, _, _ := newTestService()

	status := "processing"
	stages, err := svc.ReplaceStages(context.Background(), uuid.New(), transport.ReplaceStagesRequest{
		Stages: []transport.StageSpecRequest{
			{Name: "Todo"},
			{Name: "Doing", ExternalStatus: &status},
			{Name: "Done", Hidden: true},
		},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if len(stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(stages))
	}
	for i, stage := range stages {
		if stage.Position != i {
			t.Errorf("stage %q: expected position %d, got %d", stage.Name, i, stage.Position)
		}
	}
	if stages[1].ExternalStatus == nil || *stages[1].ExternalStatus != "processing" {
		t.Errorf("expected external status on middle stage, got %v", stages[1].ExternalStatus)
	}
	if !stages[2].Hidden {
		t.Error("expected hidden flag to survive replacement")
	}
}

func TestReplaceStages_RejectsBlankName(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.ReplaceStages(context.Background(), uuid.New(), transport.ReplaceStagesRequest{
		Stages: []transport.StageSpecRequest{{Name: "  "}},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReplaceStages_RejectsDuplicateExternalStatus(t *testing.T) {
	svc, _, _, _ := newTestService()

	first := "completed"
	second := "Completed" // normalizes to the same key
	_, err := svc.ReplaceStages(context.Background(), uuid.New(), transport.ReplaceStagesRequest{
		Stages: []transport.StageSpecRequest{
			{Name: "A", ExternalStatus: &first},
			{Name: "B", ExternalStatus: &second},
		},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnsureStageForExternalStatus_KnownStatusUsesCatalog(t *testing.T) {
	svc, _, _, bus := newTestService()
	familyID := uuid.New()

	stage, created, err := svc.EnsureStageForExternalStatus(context.Background(), familyID, "on-hold")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !created {
		t.Fatal("expected stage to be created")
	}
	if stage.Name != "On Hold" || stage.Color != "#f97316" {
		t.Errorf("expected catalog name/color, got %q %q", stage.Name, stage.Color)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.published))
	}
	event, ok := bus.published[0].(events.StageAutoCreated)
	if !ok {
		t.Fatalf("expected StageAutoCreated, got %T", bus.published[0])
	}
	if event.ExternalStatus != "on-hold" || event.StageID != stage.ID {
		t.Errorf("unexpected event payload: %+v", event)
	}
}

func TestEnsureStageForExternalStatus_UnknownStatusTitleCased(t *testing.T) {
	svc, _, _, _ := newTestService()

	stage, created, err := svc.EnsureStageForExternalStatus(context.Background(), uuid.New(), "awaiting-stock")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !created {
		t.Fatal("expected stage to be created")
	}
	if stage.Name != "Awaiting Stock" {
		t.Errorf("expected title-cased name, got %q", stage.Name)
	}
	if stage.Color != defaultStageColor {
		t.Errorf("expected default color, got %q", stage.Color)
	}
}

func TestEnsureStageForExternalStatus_IsIdempotent(t *testing.T) {
	svc, _, _, bus := newTestService()
	familyID := uuid.New()

	first, _, err := svc.EnsureStageForExternalStatus(context.Background(), familyID, "processing")
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}

	second, created, err := svc.EnsureStageForExternalStatus(context.Background(), familyID, "Processing ")
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if created {
		t.Error("expected no second creation")
	}
	if second.ID != first.ID {
		t.Errorf("expected the existing stage back, got %s vs %s", second.ID, first.ID)
	}
	if len(bus.published) != 1 {
		t.Errorf("expected a single creation event, got %d", len(bus.published))
	}
}

func TestEnsureStageForExternalStatus_RejectsBlank(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, _, err := svc.EnsureStageForExternalStatus(context.Background(), uuid.New(), "  ")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
