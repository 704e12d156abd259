package events

import "github.com/google/uuid"

// FamilyCreated is published by the identity collaborator when a new family
// (tenant) is provisioned. The workflow module seeds a default pipeline.
type FamilyCreated struct {
	BaseEvent
	FamilyID uuid.UUID `json:"familyId"`
}

// EventName returns the event identifier.
func (FamilyCreated) EventName() string { return "family.created" }

// StageAutoCreated is published when inbound reconciliation materializes a
// pipeline stage for a previously unseen external status.
type StageAutoCreated struct {
	BaseEvent
	FamilyID       uuid.UUID `json:"familyId"`
	StageID        uuid.UUID `json:"stageId"`
	ExternalStatus string    `json:"externalStatus"`
}

// EventName returns the event identifier.
func (StageAutoCreated) EventName() string { return "workflow.stage_auto_created" }

// OrderImportCompleted is published after an import cycle finishes for a family.
type OrderImportCompleted struct {
	BaseEvent
	FamilyID uuid.UUID `json:"familyId"`
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	Failed   int       `json:"failed"`
}

// EventName returns the event identifier.
func (OrderImportCompleted) EventName() string { return "orders.import_completed" }
