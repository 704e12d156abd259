package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"familyhub_backend/internal/orders/customization"
)

// Stage is one column of a family's order pipeline.
type Stage struct {
	ID             uuid.UUID
	FamilyID       uuid.UUID
	Name           string
	Color          string
	Position       int
	ExternalStatus *string
	Hidden         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StageSpec describes a stage to be created. Position is assigned by the
// repository from list order or the current maximum.
type StageSpec struct {
	Name           string
	Color          string
	ExternalStatus *string
	Hidden         bool
}

// ActorType discriminates who caused a transition.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
)

// Actor identifies the originator of a stage transition. ID is set only for
// user actors; automated reconciliation never impersonates a user.
type Actor struct {
	Type ActorType
	ID   *uuid.UUID
}

// UserActor builds an actor for a human-initiated transition.
func UserActor(id uuid.UUID) Actor {
	return Actor{Type: ActorUser, ID: &id}
}

// SystemActor builds an actor for an automated transition.
func SystemActor() Actor {
	return Actor{Type: ActorSystem}
}

// WorkItem tracks a single order's progress through the pipeline. There is at
// most one item per order.
type WorkItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	StageID    uuid.UUID
	AssigneeID *uuid.UUID
	Priority   int16
	Notes      string
	UpdatedAt  time.Time
}

// UpdateItemParams patches a work item's planning fields. Nil fields are left
// unchanged; ClearAssignee removes the assignee and wins over AssigneeID.
type UpdateItemParams struct {
	AssigneeID    *uuid.UUID
	ClearAssignee bool
	Priority      *int16
	Notes         *string
}

// TransitionRecord is one entry of the append-only transition ledger, joined
// with stage names where the stages still exist.
type TransitionRecord struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	FromStageID   *uuid.UUID
	ToStageID     uuid.UUID
	FromStageName *string
	ToStageName   *string
	Actor         Actor
	Note          string
	CreatedAt     time.Time
}

// BoardFilters narrows the board query. Nil fields are ignored. The creation
// date range is half-open: CreatedFrom inclusive, CreatedTo exclusive.
type BoardFilters struct {
	Style       *string
	Font        *string
	Color       *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// BoardItem is a work item joined with its order snapshot for board rendering.
type BoardItem struct {
	Item          WorkItem
	OrderNumber   string
	OrderStatus   string
	CustomerName  string
	TotalCents    int64
	Currency      string
	Customization *customization.Record
	OrderedAt     time.Time
}

// FilterOptions lists the distinct customization values present on a family's
// board, for populating filter dropdowns.
type FilterOptions struct {
	Styles []string
	Fonts  []string
	Colors []string
}

// StageStore manages the pipeline stage registry.
type StageStore interface {
	ListStages(ctx context.Context, familyID uuid.UUID) ([]Stage, error)
	GetStage(ctx context.Context, familyID, stageID uuid.UUID) (Stage, error)
	// ReplaceStages atomically swaps the family's pipeline for the given
	// specs, assigning positions from list order.
	ReplaceStages(ctx context.Context, familyID uuid.UUID, specs []StageSpec) ([]Stage, error)
	// EnsureStageForExternalStatus returns the stage mapped to the external
	// status, creating it at the end of the pipeline when absent. The
	// returned flag reports whether a new stage was created. Safe under
	// concurrent calls for the same status.
	EnsureStageForExternalStatus(ctx context.Context, familyID uuid.UUID, spec StageSpec) (Stage, bool, error)
}

// ItemStore manages work items and writes their transitions in the same
// transaction as the item mutation.
type ItemStore interface {
	GetItemByOrder(ctx context.Context, familyID, orderID uuid.UUID) (WorkItem, error)
	// CreateItemWithTransition places an order onto the board for the first
	// time and records the initial transition (from-stage absent).
	CreateItemWithTransition(ctx context.Context, familyID, orderID, stageID uuid.UUID, actor Actor, note string) (WorkItem, error)
	// MoveItemWithTransition moves an existing item and records the
	// transition. Moving to the current stage is a no-op: the returned flag
	// reports whether anything changed.
	MoveItemWithTransition(ctx context.Context, familyID, orderID, toStageID uuid.UUID, actor Actor, note string) (WorkItem, bool, error)
	// UpdateItem patches the item's planning fields without touching its
	// stage. Stage changes go through MoveItemWithTransition so they land
	// in the ledger.
	UpdateItem(ctx context.Context, familyID, orderID uuid.UUID, params UpdateItemParams) (WorkItem, error)
}

// TransitionStore reads the transition ledger.
type TransitionStore interface {
	History(ctx context.Context, familyID, orderID uuid.UUID) ([]TransitionRecord, error)
}

// BoardStore serves the board read model.
type BoardStore interface {
	BoardItems(ctx context.Context, familyID uuid.UUID, filters BoardFilters) ([]BoardItem, error)
	FilterOptions(ctx context.Context, familyID uuid.UUID) (FilterOptions, error)
}

// Repository combines all workflow storage operations.
type Repository interface {
	StageStore
	ItemStore
	TransitionStore
	BoardStore
}
