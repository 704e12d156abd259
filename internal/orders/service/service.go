package service

import (
	"context"

	"github.com/google/uuid"

	"familyhub_backend/internal/orders/customization"
	"familyhub_backend/internal/orders/repository"
	"familyhub_backend/internal/orders/transport"
	"familyhub_backend/platform/logger"
)

// Service provides read access to the order cache and maintenance operations
// over the derived customization records.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new orders service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a cached order.
func (s *Service) GetByID(ctx context.Context, familyID, id uuid.UUID) (transport.OrderResponse, error) {
	order, err := s.repo.GetByID(ctx, familyID, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	return toResponse(order), nil
}

// List retrieves cached orders with pagination.
func (s *Service) List(ctx context.Context, familyID uuid.UUID, req transport.ListOrdersRequest) (transport.OrderListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	orders, total, err := s.repo.List(ctx, repository.ListParams{
		FamilyID: familyID,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		return transport.OrderListResponse{}, err
	}

	items := make([]transport.OrderResponse, len(orders))
	for i, order := range orders {
		items[i] = toResponse(order)
	}

	return transport.OrderListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// BackfillCustomization re-runs attribute extraction over every cached order
// of a family. Extraction is pure, so this is safe to repeat at any time.
func (s *Service) BackfillCustomization(ctx context.Context, familyID uuid.UUID) (int, error) {
	const batchSize = 200

	updated := 0
	for offset := 0; ; offset += batchSize {
		orders, _, err := s.repo.List(ctx, repository.ListParams{
			FamilyID: familyID,
			Limit:    batchSize,
			Offset:   offset,
		})
		if err != nil {
			return updated, err
		}
		if len(orders) == 0 {
			return updated, nil
		}

		for _, order := range orders {
			record := customization.Extract(order.RawMetadata)
			if err := s.repo.SetCustomization(ctx, familyID, order.ID, record); err != nil {
				s.log.Error("customization backfill failed for order", "orderId", order.ID, "error", err)
				continue
			}
			updated++
		}

		if len(orders) < batchSize {
			return updated, nil
		}
	}
}

func toResponse(order repository.Order) transport.OrderResponse {
	resp := transport.OrderResponse{
		ID:           order.ID,
		ExternalID:   order.ExternalID,
		Number:       order.Number,
		Status:       order.Status,
		CustomerName: order.CustomerName,
		TotalCents:   order.TotalCents,
		Currency:     order.Currency,
		CreatedAt:    order.CreatedAt,
		ImportedAt:   order.ImportedAt,
	}

	if order.Customization != nil {
		resp.Customization = order.Customization
	}
	return resp
}
