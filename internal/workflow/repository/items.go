package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"familyhub_backend/platform/apperr"
)

const itemColumns = `wi.id, wi.order_id, wi.stage_id, wi.assignee_id, wi.priority, wi.notes, wi.updated_at`

// GetItemByOrder retrieves the work item tracking an order.
func (r *Repo) GetItemByOrder(ctx context.Context, familyID, orderID uuid.UUID) (WorkItem, error) {
	query := `SELECT ` + itemColumns + `
		FROM fh_work_items wi
		JOIN fh_orders o ON o.id = wi.order_id
		WHERE wi.order_id = $1 AND o.family_id = $2`

	item, err := scanItem(r.pool.QueryRow(ctx, query, orderID, familyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WorkItem{}, apperr.NotFound("work item not found")
		}
		return WorkItem{}, fmt.Errorf("get work item: %w", err)
	}
	return item, nil
}

// CreateItemWithTransition places an order onto the board and records the
// initial ledger entry in the same transaction.
func (r *Repo) CreateItemWithTransition(ctx context.Context, familyID, orderID, stageID uuid.UUID, actor Actor, note string) (WorkItem, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return WorkItem{}, fmt.Errorf("begin create item: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM fh_orders WHERE id = $1 AND family_id = $2)`,
		orderID, familyID,
	).Scan(&exists); err != nil {
		return WorkItem{}, fmt.Errorf("check order: %w", err)
	}
	if !exists {
		return WorkItem{}, apperr.NotFound("order not found")
	}

	var item WorkItem
	if err := tx.QueryRow(ctx,
		`INSERT INTO fh_work_items (order_id, stage_id)
		VALUES ($1, $2)
		RETURNING id, order_id, stage_id, assignee_id, priority, notes, updated_at`,
		orderID, stageID,
	).Scan(&item.ID, &item.OrderID, &item.StageID, &item.AssigneeID, &item.Priority, &item.Notes, &item.UpdatedAt); err != nil {
		return WorkItem{}, fmt.Errorf("insert work item: %w", err)
	}

	if err := insertTransition(ctx, tx, orderID, nil, stageID, actor, note); err != nil {
		return WorkItem{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return WorkItem{}, fmt.Errorf("commit create item: %w", err)
	}
	return item, nil
}

// MoveItemWithTransition moves a work item to another stage and appends the
// ledger entry in the same transaction. Moving to the current stage changes
// nothing and writes no ledger entry.
func (r *Repo) MoveItemWithTransition(ctx context.Context, familyID, orderID, toStageID uuid.UUID, actor Actor, note string) (WorkItem, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return WorkItem{}, false, fmt.Errorf("begin move item: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + itemColumns + `
		FROM fh_work_items wi
		JOIN fh_orders o ON o.id = wi.order_id
		WHERE wi.order_id = $1 AND o.family_id = $2
		FOR UPDATE OF wi`

	item, err := scanItem(tx.QueryRow(ctx, query, orderID, familyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WorkItem{}, false, apperr.NotFound("work item not found")
		}
		return WorkItem{}, false, fmt.Errorf("lock work item: %w", err)
	}

	if item.StageID == toStageID {
		return item, false, nil
	}

	fromStageID := item.StageID
	if err := tx.QueryRow(ctx,
		`UPDATE fh_work_items SET stage_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING stage_id, updated_at`,
		item.ID, toStageID,
	).Scan(&item.StageID, &item.UpdatedAt); err != nil {
		return WorkItem{}, false, fmt.Errorf("update work item stage: %w", err)
	}

	if err := insertTransition(ctx, tx, orderID, &fromStageID, toStageID, actor, note); err != nil {
		return WorkItem{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return WorkItem{}, false, fmt.Errorf("commit move item: %w", err)
	}
	return item, true, nil
}

// UpdateItem patches the planning fields of the work item tracking an order.
// Omitted fields keep their values.
func (r *Repo) UpdateItem(ctx context.Context, familyID, orderID uuid.UUID, params UpdateItemParams) (WorkItem, error) {
	sets := []string{"updated_at = now()"}
	args := []any{orderID, familyID}

	if params.Priority != nil {
		args = append(args, *params.Priority)
		sets = append(sets, fmt.Sprintf("priority = $%d", len(args)))
	}
	if params.Notes != nil {
		args = append(args, *params.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}
	switch {
	case params.ClearAssignee:
		sets = append(sets, "assignee_id = NULL")
	case params.AssigneeID != nil:
		args = append(args, *params.AssigneeID)
		sets = append(sets, fmt.Sprintf("assignee_id = $%d", len(args)))
	}

	query := `UPDATE fh_work_items wi SET ` + strings.Join(sets, ", ") + `
		FROM fh_orders o
		WHERE wi.order_id = $1 AND o.id = wi.order_id AND o.family_id = $2
		RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WorkItem{}, apperr.NotFound("work item not found")
		}
		return WorkItem{}, fmt.Errorf("update work item: %w", err)
	}
	return item, nil
}

func insertTransition(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, fromStageID *uuid.UUID, toStageID uuid.UUID, actor Actor, note string) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO fh_stage_transitions (order_id, from_stage_id, to_stage_id, actor_type, actor_id, note)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		orderID, fromStageID, toStageID, string(actor.Type), actor.ID, note,
	); err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

func scanItem(row pgx.Row) (WorkItem, error) {
	var item WorkItem
	err := row.Scan(
		&item.ID, &item.OrderID, &item.StageID, &item.AssigneeID,
		&item.Priority, &item.Notes, &item.UpdatedAt,
	)
	return item, err
}
