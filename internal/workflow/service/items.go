package service

import (
	"context"

	"github.com/google/uuid"

	"familyhub_backend/internal/workflow/repository"
	"familyhub_backend/internal/workflow/transport"
)

// UpdateItem patches the planning fields of an order's work item: assignee,
// priority, and notes. The stage is untouched; moves go through MoveStage so
// they land in the transition ledger.
func (s *Service) UpdateItem(ctx context.Context, familyID, orderID uuid.UUID, req transport.UpdateItemRequest) (transport.WorkItemResponse, error) {
	item, err := s.repo.UpdateItem(ctx, familyID, orderID, repository.UpdateItemParams{
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		Priority:      req.Priority,
		Notes:         req.Notes,
	})
	if err != nil {
		return transport.WorkItemResponse{}, err
	}
	return toItemResponse(item), nil
}
