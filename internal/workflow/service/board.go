package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"familyhub_backend/internal/workflow/repository"
	"familyhub_backend/internal/workflow/transport"
	"familyhub_backend/platform/apperr"
)

const dayLayout = "2006-01-02"

// GetBoard returns every stage of the family's pipeline, hidden ones
// included, each carrying the work items that matched the query. The date
// range is day-granular and applied half-open in UTC: from-day inclusive,
// to-day inclusive (its midnight-next-day exclusive bound).
func (s *Service) GetBoard(ctx context.Context, familyID uuid.UUID, query transport.BoardQuery) (transport.BoardResponse, error) {
	filters, err := buildFilters(query)
	if err != nil {
		return transport.BoardResponse{}, err
	}

	stages, err := s.stagesWithLazySeed(ctx, familyID)
	if err != nil {
		return transport.BoardResponse{}, err
	}

	items, err := s.repo.BoardItems(ctx, familyID, filters)
	if err != nil {
		return transport.BoardResponse{}, err
	}

	byStage := make(map[uuid.UUID][]transport.BoardItemResponse, len(stages))
	for _, item := range items {
		byStage[item.Item.StageID] = append(byStage[item.Item.StageID], toBoardItemResponse(item))
	}

	columns := make([]transport.BoardColumnResponse, len(stages))
	for i, stage := range stages {
		columns[i] = transport.BoardColumnResponse{
			Stage: toStageResponse(stage),
			Items: byStage[stage.ID],
		}
		if columns[i].Items == nil {
			columns[i].Items = []transport.BoardItemResponse{}
		}
	}

	return transport.BoardResponse{Columns: columns}, nil
}

// GetFilterOptions returns the distinct customization values available for
// filtering the family's board.
func (s *Service) GetFilterOptions(ctx context.Context, familyID uuid.UUID) (transport.FilterOptionsResponse, error) {
	options, err := s.repo.FilterOptions(ctx, familyID)
	if err != nil {
		return transport.FilterOptionsResponse{}, err
	}

	return transport.FilterOptionsResponse{
		Styles: emptyIfNil(options.Styles),
		Fonts:  emptyIfNil(options.Fonts),
		Colors: emptyIfNil(options.Colors),
	}, nil
}

// History returns an order's transition ledger, newest first.
func (s *Service) History(ctx context.Context, familyID, orderID uuid.UUID) ([]transport.TransitionResponse, error) {
	records, err := s.repo.History(ctx, familyID, orderID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.TransitionResponse, len(records))
	for i, record := range records {
		responses[i] = transport.TransitionResponse{
			ID:            record.ID,
			FromStageID:   record.FromStageID,
			ToStageID:     record.ToStageID,
			FromStageName: record.FromStageName,
			ToStageName:   record.ToStageName,
			ActorType:     string(record.Actor.Type),
			ActorID:       record.Actor.ID,
			Note:          record.Note,
			CreatedAt:     record.CreatedAt,
		}
	}
	return responses, nil
}

func buildFilters(query transport.BoardQuery) (repository.BoardFilters, error) {
	filters := repository.BoardFilters{
		Style: query.Style,
		Font:  query.Font,
		Color: query.Color,
	}

	if query.From != "" {
		from, err := time.ParseInLocation(dayLayout, query.From, time.UTC)
		if err != nil {
			return repository.BoardFilters{}, apperr.Validation("from must be a date in YYYY-MM-DD format")
		}
		filters.CreatedFrom = &from
	}
	if query.To != "" {
		to, err := time.ParseInLocation(dayLayout, query.To, time.UTC)
		if err != nil {
			return repository.BoardFilters{}, apperr.Validation("to must be a date in YYYY-MM-DD format")
		}
		end := to.AddDate(0, 0, 1)
		filters.CreatedTo = &end
	}
	if filters.CreatedFrom != nil && filters.CreatedTo != nil && !filters.CreatedFrom.Before(*filters.CreatedTo) {
		return repository.BoardFilters{}, apperr.Validation("from must not be after to")
	}

	return filters, nil
}

func toBoardItemResponse(item repository.BoardItem) transport.BoardItemResponse {
	return transport.BoardItemResponse{
		ID:            item.Item.ID,
		OrderID:       item.Item.OrderID,
		StageID:       item.Item.StageID,
		AssigneeID:    item.Item.AssigneeID,
		Priority:      item.Item.Priority,
		Notes:         item.Item.Notes,
		OrderNumber:   item.OrderNumber,
		OrderStatus:   item.OrderStatus,
		CustomerName:  item.CustomerName,
		TotalCents:    item.TotalCents,
		Currency:      item.Currency,
		Customization: item.Customization,
		OrderedAt:     item.OrderedAt,
		UpdatedAt:     item.Item.UpdatedAt,
	}
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
