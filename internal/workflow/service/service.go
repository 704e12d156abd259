// Package service implements the order workflow engine: the stage registry,
// the reconciliation between pipeline stages and external order statuses, and
// the board read model.
package service

import (
	"context"

	"github.com/google/uuid"

	"familyhub_backend/internal/events"
	"familyhub_backend/internal/workflow/repository"
	"familyhub_backend/internal/workflow/transport"
	"familyhub_backend/platform/logger"
)

// StatusPusher propagates a stage change to the external order system. The
// concrete implementation resolves store credentials and the order's external
// id; the engine only decides when to push.
type StatusPusher interface {
	PushStatus(ctx context.Context, familyID, orderID uuid.UUID, externalStatus string) error
}

// Service is the workflow engine.
type Service struct {
	repo   repository.Repository
	pusher StatusPusher
	bus    events.Bus
	log    *logger.Logger
}

// New creates a new workflow service.
func New(repo repository.Repository, pusher StatusPusher, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, pusher: pusher, bus: bus, log: log}
}

func toStageResponse(stage repository.Stage) transport.StageResponse {
	return transport.StageResponse{
		ID:             stage.ID,
		Name:           stage.Name,
		Color:          stage.Color,
		Position:       stage.Position,
		ExternalStatus: stage.ExternalStatus,
		Hidden:         stage.Hidden,
	}
}

func toItemResponse(item repository.WorkItem) transport.WorkItemResponse {
	return transport.WorkItemResponse{
		ID:         item.ID,
		OrderID:    item.OrderID,
		StageID:    item.StageID,
		AssigneeID: item.AssigneeID,
		Priority:   item.Priority,
		Notes:      item.Notes,
		UpdatedAt:  item.UpdatedAt,
	}
}
