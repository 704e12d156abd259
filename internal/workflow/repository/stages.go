package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"familyhub_backend/platform/apperr"
)

const stageColumns = `id, family_id, name, color, position, external_status, hidden, created_at, updated_at`

// ListStages returns the family's pipeline ordered by position.
func (r *Repo) ListStages(ctx context.Context, familyID uuid.UUID) ([]Stage, error) {
	query := `SELECT ` + stageColumns + `
		FROM fh_pipeline_stages
		WHERE family_id = $1
		ORDER BY position, created_at`

	rows, err := r.pool.Query(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var stages []Stage
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, stage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stages: %w", err)
	}
	return stages, nil
}

// GetStage retrieves a single stage.
func (r *Repo) GetStage(ctx context.Context, familyID, stageID uuid.UUID) (Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM fh_pipeline_stages WHERE id = $1 AND family_id = $2`

	stage, err := scanStage(r.pool.QueryRow(ctx, query, stageID, familyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Stage{}, apperr.NotFound("stage not found")
		}
		return Stage{}, fmt.Errorf("get stage: %w", err)
	}
	return stage, nil
}

// ReplaceStages swaps the family's entire pipeline in one transaction.
// Positions follow list order. Existing work items keep their stage ids and
// are not repaired here.
func (r *Repo) ReplaceStages(ctx context.Context, familyID uuid.UUID, specs []StageSpec) ([]Stage, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin replace stages: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM fh_pipeline_stages WHERE family_id = $1`, familyID,
	); err != nil {
		return nil, fmt.Errorf("clear stages: %w", err)
	}

	stages := make([]Stage, 0, len(specs))
	for position, spec := range specs {
		query := `
			INSERT INTO fh_pipeline_stages (family_id, name, color, position, external_status, hidden)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + stageColumns

		stage, err := scanStage(tx.QueryRow(ctx, query,
			familyID, spec.Name, spec.Color, position, spec.ExternalStatus, spec.Hidden,
		))
		if err != nil {
			return nil, fmt.Errorf("insert stage %q: %w", spec.Name, err)
		}
		stages = append(stages, stage)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit replace stages: %w", err)
	}
	return stages, nil
}

// EnsureStageForExternalStatus maps an external status to a stage, creating
// one at the end of the pipeline when no mapping exists. Concurrent creation
// for the same status is arbitrated by the partial unique index: the loser's
// insert affects no rows and the winner's row is read back instead.
func (r *Repo) EnsureStageForExternalStatus(ctx context.Context, familyID uuid.UUID, spec StageSpec) (Stage, bool, error) {
	if spec.ExternalStatus == nil || *spec.ExternalStatus == "" {
		return Stage{}, false, apperr.Validation("external status is required")
	}

	insert := `
		INSERT INTO fh_pipeline_stages (family_id, name, color, position, external_status, hidden)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM fh_pipeline_stages WHERE family_id = $1),
			$4, $5)
		ON CONFLICT (family_id, external_status) WHERE external_status IS NOT NULL DO NOTHING
		RETURNING ` + stageColumns

	stage, err := scanStage(r.pool.QueryRow(ctx, insert,
		familyID, spec.Name, spec.Color, spec.ExternalStatus, spec.Hidden,
	))
	if err == nil {
		return stage, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Stage{}, false, fmt.Errorf("ensure stage: %w", err)
	}

	query := `SELECT ` + stageColumns + `
		FROM fh_pipeline_stages
		WHERE family_id = $1 AND external_status = $2`

	stage, err = scanStage(r.pool.QueryRow(ctx, query, familyID, *spec.ExternalStatus))
	if err != nil {
		return Stage{}, false, fmt.Errorf("read mapped stage: %w", err)
	}
	return stage, false, nil
}

func scanStage(row pgx.Row) (Stage, error) {
	var stage Stage
	err := row.Scan(
		&stage.ID, &stage.FamilyID, &stage.Name, &stage.Color, &stage.Position,
		&stage.ExternalStatus, &stage.Hidden, &stage.CreatedAt, &stage.UpdatedAt,
	)
	return stage, err
}
