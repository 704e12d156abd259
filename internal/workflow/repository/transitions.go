package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// History returns an order's transition ledger, newest first. Ordering uses
// the insertion sequence, not timestamps, so same-instant transitions replay
// deterministically. Stage names are resolved best-effort: entries referencing
// stages removed by a pipeline replace keep their ids but carry no name.
func (r *Repo) History(ctx context.Context, familyID, orderID uuid.UUID) ([]TransitionRecord, error) {
	query := `
		SELECT t.id, t.order_id, t.from_stage_id, t.to_stage_id,
			fs.name, ts.name, t.actor_type, t.actor_id, t.note, t.created_at
		FROM fh_stage_transitions t
		JOIN fh_orders o ON o.id = t.order_id
		LEFT JOIN fh_pipeline_stages fs ON fs.id = t.from_stage_id
		LEFT JOIN fh_pipeline_stages ts ON ts.id = t.to_stage_id
		WHERE t.order_id = $1 AND o.family_id = $2
		ORDER BY t.seq DESC`

	rows, err := r.pool.Query(ctx, query, orderID, familyID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var records []TransitionRecord
	for rows.Next() {
		var record TransitionRecord
		var actorType string
		if err := rows.Scan(
			&record.ID, &record.OrderID, &record.FromStageID, &record.ToStageID,
			&record.FromStageName, &record.ToStageName,
			&actorType, &record.Actor.ID, &record.Note, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		record.Actor.Type = ActorType(actorType)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return records, nil
}
