// Package scheduler runs background jobs over asynq: the periodic order
// import per connected family.
package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskOrderImport imports orders from a family's external store.
const TaskOrderImport = "order:import"

// OrderImportPayload identifies which family to import for.
type OrderImportPayload struct {
	FamilyID uuid.UUID `json:"familyId"`
}

// NewOrderImportTask builds an order import task.
func NewOrderImportTask(familyID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(OrderImportPayload{FamilyID: familyID})
	if err != nil {
		return nil, fmt.Errorf("marshal import payload: %w", err)
	}
	return asynq.NewTask(TaskOrderImport, payload), nil
}
