package repository

import (
	"context"
	"time"

	"familyhub_backend/internal/orders/customization"

	"github.com/google/uuid"
)

// Order is a cached snapshot of an externally-sourced order, annotated with
// the customization attributes extracted at import time.
type Order struct {
	ID            uuid.UUID
	FamilyID      uuid.UUID
	ExternalID    int64
	Number        string
	Status        string
	CustomerName  string
	TotalCents    int64
	Currency      string
	RawMetadata   []customization.MetaEntry
	Customization *customization.Record
	CreatedAt     time.Time
	ImportedAt    time.Time
}

// UpsertParams contains the snapshot fields written during import.
type UpsertParams struct {
	FamilyID      uuid.UUID
	ExternalID    int64
	Number        string
	Status        string
	CustomerName  string
	TotalCents    int64
	Currency      string
	RawMetadata   []customization.MetaEntry
	Customization *customization.Record
	CreatedAt     time.Time
}

// ListParams contains pagination settings for order listing.
type ListParams struct {
	FamilyID uuid.UUID
	Limit    int
	Offset   int
}

// OrderReader provides read access to the order cache.
type OrderReader interface {
	GetByID(ctx context.Context, familyID, id uuid.UUID) (Order, error)
	GetByExternalID(ctx context.Context, familyID uuid.UUID, externalID int64) (Order, error)
	List(ctx context.Context, params ListParams) ([]Order, int, error)
}

// OrderWriter provides write access to the order cache.
type OrderWriter interface {
	// Upsert inserts or refreshes a snapshot keyed on (family, external id).
	// The returned flag reports whether a new row was created.
	Upsert(ctx context.Context, params UpsertParams) (Order, bool, error)
	// SetCustomization replaces the cached customization record for an order.
	// A nil record clears it.
	SetCustomization(ctx context.Context, familyID, id uuid.UUID, record *customization.Record) error
}

// Repository combines all order cache operations.
type Repository interface {
	OrderReader
	OrderWriter
}
