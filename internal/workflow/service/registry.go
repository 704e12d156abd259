package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"familyhub_backend/internal/events"
	"familyhub_backend/internal/workflow/repository"
	"familyhub_backend/internal/workflow/transport"
	"familyhub_backend/platform/apperr"
)

// ListStages returns the family's pipeline in presentation order. A family
// that has never touched its pipeline gets the default one on first read.
func (s *Service) ListStages(ctx context.Context, familyID uuid.UUID) ([]transport.StageResponse, error) {
	stages, err := s.stagesWithLazySeed(ctx, familyID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.StageResponse, len(stages))
	for i, stage := range stages {
		responses[i] = toStageResponse(stage)
	}
	return responses, nil
}

// stagesWithLazySeed lists the pipeline, installing the default stages first
// when the family has none. A concurrent first read may win the seed; the
// unique status index rejects the loser, which then reads the winner's rows.
func (s *Service) stagesWithLazySeed(ctx context.Context, familyID uuid.UUID) ([]repository.Stage, error) {
	stages, err := s.repo.ListStages(ctx, familyID)
	if err != nil || len(stages) > 0 {
		return stages, err
	}

	if seedErr := s.SeedDefaultStages(ctx, familyID); seedErr != nil {
		stages, err = s.repo.ListStages(ctx, familyID)
		if err == nil && len(stages) > 0 {
			return stages, nil
		}
		return nil, seedErr
	}
	return s.repo.ListStages(ctx, familyID)
}

// ReplaceStages swaps the family's entire pipeline for the submitted list.
// Positions follow list order. Work items pointing at removed stages are left
// as-is; the next inbound reconciliation reassigns them.
func (s *Service) ReplaceStages(ctx context.Context, familyID uuid.UUID, req transport.ReplaceStagesRequest) ([]transport.StageResponse, error) {
	specs := make([]repository.StageSpec, 0, len(req.Stages))
	seenStatuses := make(map[string]struct{})

	for i, stageReq := range req.Stages {
		name := strings.TrimSpace(stageReq.Name)
		if name == "" {
			return nil, apperr.Validation(fmt.Sprintf("stage %d: name is required", i+1))
		}

		spec := repository.StageSpec{
			Name:   name,
			Color:  stageReq.Color,
			Hidden: stageReq.Hidden,
		}
		if spec.Color == "" {
			spec.Color = defaultStageColor
		}

		if stageReq.ExternalStatus != nil {
			status := strings.ToLower(strings.TrimSpace(*stageReq.ExternalStatus))
			if status != "" {
				if _, dup := seenStatuses[status]; dup {
					return nil, apperr.Validation(fmt.Sprintf("external status %q mapped to more than one stage", status))
				}
				seenStatuses[status] = struct{}{}
				spec.ExternalStatus = &status
			}
		}

		specs = append(specs, spec)
	}

	stages, err := s.repo.ReplaceStages(ctx, familyID, specs)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.StageResponse, len(stages))
	for i, stage := range stages {
		responses[i] = toStageResponse(stage)
	}
	return responses, nil
}

// EnsureStageForExternalStatus returns the stage mapped to an external
// status, materializing one at the end of the pipeline when no mapping
// exists. The returned flag reports whether a stage was created.
func (s *Service) EnsureStageForExternalStatus(ctx context.Context, familyID uuid.UUID, status string) (repository.Stage, bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(status))
	if normalized == "" {
		return repository.Stage{}, false, apperr.Validation("external status is required")
	}

	stage, created, err := s.repo.EnsureStageForExternalStatus(ctx, familyID, stageSpecForStatus(normalized))
	if err != nil {
		return repository.Stage{}, false, err
	}

	if created {
		s.log.Info("stage auto-created for external status",
			"familyId", familyID, "stageId", stage.ID, "externalStatus", normalized)
		s.bus.Publish(ctx, events.StageAutoCreated{
			BaseEvent:      events.NewBaseEvent(),
			FamilyID:       familyID,
			StageID:        stage.ID,
			ExternalStatus: normalized,
		})
	}
	return stage, created, nil
}

// SeedDefaultStages installs the default pipeline for a new family. Families
// that already have stages are left untouched.
func (s *Service) SeedDefaultStages(ctx context.Context, familyID uuid.UUID) error {
	existing, err := s.repo.ListStages(ctx, familyID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	specs := make([]repository.StageSpec, 0, len(defaultPipeline))
	for _, entry := range defaultPipeline {
		spec := stageSpecForStatus(entry.status)
		spec.Hidden = entry.hidden
		specs = append(specs, spec)
	}

	if _, err := s.repo.ReplaceStages(ctx, familyID, specs); err != nil {
		return fmt.Errorf("seed default stages: %w", err)
	}

	s.log.Info("default pipeline seeded", "familyId", familyID, "stages", len(specs))
	return nil
}
