package transport

import (
	"time"

	"github.com/google/uuid"

	"familyhub_backend/internal/orders/customization"
)

// StageSpecRequest describes one stage in a pipeline replacement.
type StageSpecRequest struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Color          string  `json:"color" validate:"omitempty,hexcolor"`
	ExternalStatus *string `json:"externalStatus" validate:"omitempty,max=100"`
	Hidden         bool    `json:"hidden"`
}

// ReplaceStagesRequest replaces a family's entire pipeline.
type ReplaceStagesRequest struct {
	Stages []StageSpecRequest `json:"stages" validate:"required,min=1,max=50,dive"`
}

// StageResponse is the API representation of a pipeline stage.
type StageResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Color          string    `json:"color"`
	Position       int       `json:"position"`
	ExternalStatus *string   `json:"externalStatus,omitempty"`
	Hidden         bool      `json:"hidden"`
}

// MoveItemRequest moves an order's work item to another stage.
type MoveItemRequest struct {
	StageID uuid.UUID `json:"stageId" validate:"required"`
	Note    string    `json:"note" validate:"max=500"`
}

// UpdateItemRequest patches a work item's planning fields. Omitted fields
// keep their values; clearAssignee removes the assignee.
type UpdateItemRequest struct {
	AssigneeID    *uuid.UUID `json:"assigneeId"`
	ClearAssignee bool       `json:"clearAssignee"`
	Priority      *int16     `json:"priority" validate:"omitempty,gte=0,lte=100"`
	Notes         *string    `json:"notes" validate:"omitempty,max=2000"`
}

// WorkItemResponse is the API representation of a work item.
type WorkItemResponse struct {
	ID         uuid.UUID  `json:"id"`
	OrderID    uuid.UUID  `json:"orderId"`
	StageID    uuid.UUID  `json:"stageId"`
	AssigneeID *uuid.UUID `json:"assigneeId,omitempty"`
	Priority   int16      `json:"priority"`
	Notes      string     `json:"notes"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// TransitionResponse is one ledger entry in an order's history.
type TransitionResponse struct {
	ID            uuid.UUID  `json:"id"`
	FromStageID   *uuid.UUID `json:"fromStageId,omitempty"`
	ToStageID     uuid.UUID  `json:"toStageId"`
	FromStageName *string    `json:"fromStageName,omitempty"`
	ToStageName   *string    `json:"toStageName,omitempty"`
	ActorType     string     `json:"actorType"`
	ActorID       *uuid.UUID `json:"actorId,omitempty"`
	Note          string     `json:"note,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// BoardQuery narrows the board view. Dates are day-granular in the family's
// submitted form; the range is applied half-open in UTC.
type BoardQuery struct {
	Style *string `form:"style"`
	Font  *string `form:"font"`
	Color *string `form:"color"`
	From  string  `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string  `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

// BoardItemResponse is a work item with its order snapshot, ready to render.
type BoardItemResponse struct {
	ID            uuid.UUID             `json:"id"`
	OrderID       uuid.UUID             `json:"orderId"`
	StageID       uuid.UUID             `json:"stageId"`
	AssigneeID    *uuid.UUID            `json:"assigneeId,omitempty"`
	Priority      int16                 `json:"priority"`
	Notes         string                `json:"notes"`
	OrderNumber   string                `json:"orderNumber"`
	OrderStatus   string                `json:"orderStatus"`
	CustomerName  string                `json:"customerName"`
	TotalCents    int64                 `json:"totalCents"`
	Currency      string                `json:"currency"`
	Customization *customization.Record `json:"customization,omitempty"`
	OrderedAt     time.Time             `json:"orderedAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// BoardColumnResponse is one stage with its (filtered) items.
type BoardColumnResponse struct {
	Stage StageResponse       `json:"stage"`
	Items []BoardItemResponse `json:"items"`
}

// BoardResponse is the full board view: every stage of the pipeline, hidden
// ones included, each carrying the items that matched the query.
type BoardResponse struct {
	Columns []BoardColumnResponse `json:"columns"`
}

// FilterOptionsResponse lists the distinct filterable customization values.
type FilterOptionsResponse struct {
	Styles []string `json:"styles"`
	Fonts  []string `json:"fonts"`
	Colors []string `json:"colors"`
}

// SyncResponse reports the outcome of a manually triggered synchronization.
type SyncResponse struct {
	Fetched       int `json:"fetched"`
	Created       int `json:"created"`
	Updated       int `json:"updated"`
	Failed        int `json:"failed"`
	ItemsCreated  int `json:"itemsCreated"`
	ItemsMoved    int `json:"itemsMoved"`
	StagesCreated int `json:"stagesCreated"`
}
