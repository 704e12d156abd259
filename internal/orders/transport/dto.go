package transport

import (
	"time"

	"github.com/google/uuid"

	"familyhub_backend/internal/orders/customization"
)

// ListOrdersRequest contains pagination parameters for order listing.
type ListOrdersRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// OrderResponse is the API representation of a cached order.
type OrderResponse struct {
	ID            uuid.UUID             `json:"id"`
	ExternalID    int64                 `json:"externalId"`
	Number        string                `json:"number"`
	Status        string                `json:"status"`
	CustomerName  string                `json:"customerName"`
	TotalCents    int64                 `json:"totalCents"`
	Currency      string                `json:"currency"`
	Customization *customization.Record `json:"customization,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	ImportedAt    time.Time             `json:"importedAt"`
}

// OrderListResponse is a paginated page of orders.
type OrderListResponse struct {
	Items    []OrderResponse `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// ImportResponse reports the outcome of a synchronization run.
type ImportResponse struct {
	Fetched       int `json:"fetched"`
	Created       int `json:"created"`
	Updated       int `json:"updated"`
	Failed        int `json:"failed"`
	ItemsCreated  int `json:"itemsCreated"`
	ItemsMoved    int `json:"itemsMoved"`
	StagesCreated int `json:"stagesCreated"`
}

// ImportQueuedResponse acknowledges an import handed to the background worker.
type ImportQueuedResponse struct {
	Queued bool `json:"queued"`
}

// BackfillResponse reports how many cached orders were re-extracted.
type BackfillResponse struct {
	Updated int `json:"updated"`
}
