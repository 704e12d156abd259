package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"familyhub_backend/internal/workflow/repository"
	"familyhub_backend/internal/workflow/transport"
	"familyhub_backend/platform/apperr"
)

// StatusObservation is one externally observed order status, as seen during
// an import cycle.
type StatusObservation struct {
	OrderID uuid.UUID
	Status  string
}

// BulkResult summarizes a bulk reconciliation pass.
type BulkResult struct {
	ItemsCreated  int
	ItemsMoved    int
	StagesCreated int
	Failed        int
}

// MoveStage moves an order's work item to another stage on behalf of a user
// and records the transition. After the local move commits, the new stage's
// external status (if mapped) is pushed to the store; a push failure is
// logged and swallowed, it never undoes the local move.
func (s *Service) MoveStage(ctx context.Context, familyID, orderID, stageID, userID uuid.UUID, note string) (transport.WorkItemResponse, error) {
	stage, err := s.repo.GetStage(ctx, familyID, stageID)
	if err != nil {
		return transport.WorkItemResponse{}, err
	}

	item, moved, err := s.repo.MoveItemWithTransition(ctx, familyID, orderID, stageID, repository.UserActor(userID), note)
	if err != nil {
		return transport.WorkItemResponse{}, err
	}
	if !moved {
		return toItemResponse(item), nil
	}

	if stage.ExternalStatus == nil {
		s.log.Info("status push skipped: stage has no external status mapping",
			"familyId", familyID, "orderId", orderID, "stageId", stageID)
		return toItemResponse(item), nil
	}

	if err := s.pusher.PushStatus(ctx, familyID, orderID, *stage.ExternalStatus); err != nil {
		s.log.SyncEvent("status_push", familyID.String(), false, err.Error())
	} else {
		s.log.SyncEvent("status_push", familyID.String(), true, "")
	}
	return toItemResponse(item), nil
}

// ReconcileFromExternal applies an externally observed status to the local
// board: the mapped stage is ensured, and the order's work item is created at
// it or moved to it by the system actor. Applying a status the item already
// reflects changes nothing.
func (s *Service) ReconcileFromExternal(ctx context.Context, familyID, orderID uuid.UUID, externalStatus string) (created, moved bool, err error) {
	stage, _, err := s.EnsureStageForExternalStatus(ctx, familyID, externalStatus)
	if err != nil {
		return false, false, err
	}

	note := fmt.Sprintf("synchronized from store status %q", externalStatus)

	_, err = s.repo.GetItemByOrder(ctx, familyID, orderID)
	if apperr.Is(err, apperr.KindNotFound) {
		if _, err := s.repo.CreateItemWithTransition(ctx, familyID, orderID, stage.ID, repository.SystemActor(), note); err != nil {
			return false, false, err
		}
		return true, false, nil
	}
	if err != nil {
		return false, false, err
	}

	_, moved, err = s.repo.MoveItemWithTransition(ctx, familyID, orderID, stage.ID, repository.SystemActor(), note)
	if err != nil {
		return false, false, err
	}
	return false, moved, nil
}

// BulkReconcile applies a batch of observed statuses. Stages for all distinct
// statuses are ensured up front so a batch touching a new status pays the
// creation cost once, then each order is reconciled independently: one
// order's failure is logged and counted, never aborting the rest.
func (s *Service) BulkReconcile(ctx context.Context, familyID uuid.UUID, observations []StatusObservation) (BulkResult, error) {
	var result BulkResult

	seen := make(map[string]struct{})
	for _, obs := range observations {
		if _, ok := seen[obs.Status]; ok {
			continue
		}
		seen[obs.Status] = struct{}{}

		_, created, err := s.EnsureStageForExternalStatus(ctx, familyID, obs.Status)
		if err != nil {
			return result, fmt.Errorf("ensure stage for status %q: %w", obs.Status, err)
		}
		if created {
			result.StagesCreated++
		}
	}

	for _, obs := range observations {
		created, moved, err := s.ReconcileFromExternal(ctx, familyID, obs.OrderID, obs.Status)
		if err != nil {
			s.log.Error("reconciliation failed for order",
				"familyId", familyID, "orderId", obs.OrderID, "status", obs.Status, "error", err)
			result.Failed++
			continue
		}
		if created {
			result.ItemsCreated++
		}
		if moved {
			result.ItemsMoved++
		}
	}

	return result, nil
}
