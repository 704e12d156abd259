package adapters

import (
	"context"

	"github.com/google/uuid"

	ordersservice "familyhub_backend/internal/orders/service"
	workflowservice "familyhub_backend/internal/workflow/service"
)

// WorkflowReconciler adapts the workflow engine to the import pipeline's
// Reconciler interface.
type WorkflowReconciler struct {
	svc *workflowservice.Service
}

// NewWorkflowReconciler creates a reconciler adapter over the engine.
func NewWorkflowReconciler(svc *workflowservice.Service) *WorkflowReconciler {
	return &WorkflowReconciler{svc: svc}
}

// BulkReconcile forwards a batch of observed statuses to the engine.
func (a *WorkflowReconciler) BulkReconcile(ctx context.Context, familyID uuid.UUID, observations []ordersservice.StatusObservation) (ordersservice.ReconcileSummary, error) {
	converted := make([]workflowservice.StatusObservation, len(observations))
	for i, obs := range observations {
		converted[i] = workflowservice.StatusObservation{OrderID: obs.OrderID, Status: obs.Status}
	}

	result, err := a.svc.BulkReconcile(ctx, familyID, converted)
	if err != nil {
		return ordersservice.ReconcileSummary{}, err
	}
	return ordersservice.ReconcileSummary{
		ItemsCreated:  result.ItemsCreated,
		ItemsMoved:    result.ItemsMoved,
		StagesCreated: result.StagesCreated,
		Failed:        result.Failed,
	}, nil
}
