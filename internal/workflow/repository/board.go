package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"familyhub_backend/internal/orders/customization"
)

// BoardItems returns the work items matching the filters, joined with their
// order snapshots. Ordering is stage position, then priority (high first),
// then most recently updated. Items whose stage was removed by a pipeline
// replace are omitted until reconciliation reassigns them.
func (r *Repo) BoardItems(ctx context.Context, familyID uuid.UUID, filters BoardFilters) ([]BoardItem, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT wi.id, wi.order_id, wi.stage_id, wi.assignee_id, wi.priority, wi.notes, wi.updated_at,
			o.number, o.status, o.customer_name, o.total_cents, o.currency, o.customization, o.created_at
		FROM fh_work_items wi
		JOIN fh_orders o ON o.id = wi.order_id
		JOIN fh_pipeline_stages s ON s.id = wi.stage_id
		WHERE o.family_id = $1`)

	args := []interface{}{familyID}
	addFilter := func(clause string, value interface{}) {
		args = append(args, value)
		sb.WriteString(" AND " + clause + "$" + strconv.Itoa(len(args)))
	}

	if filters.Style != nil {
		addFilter(`o.customization->>'style' = `, *filters.Style)
	}
	if filters.Font != nil {
		addFilter(`o.customization->>'font' = `, *filters.Font)
	}
	if filters.Color != nil {
		addFilter(`o.customization->>'color' = `, *filters.Color)
	}
	if filters.CreatedFrom != nil {
		addFilter(`o.created_at >= `, *filters.CreatedFrom)
	}
	if filters.CreatedTo != nil {
		addFilter(`o.created_at < `, *filters.CreatedTo)
	}

	sb.WriteString(` ORDER BY s.position, wi.priority DESC, wi.updated_at DESC`)

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query board items: %w", err)
	}
	defer rows.Close()

	var items []BoardItem
	for rows.Next() {
		var item BoardItem
		var customizationBytes []byte
		if err := rows.Scan(
			&item.Item.ID, &item.Item.OrderID, &item.Item.StageID, &item.Item.AssigneeID,
			&item.Item.Priority, &item.Item.Notes, &item.Item.UpdatedAt,
			&item.OrderNumber, &item.OrderStatus, &item.CustomerName,
			&item.TotalCents, &item.Currency, &customizationBytes, &item.OrderedAt,
		); err != nil {
			return nil, fmt.Errorf("scan board item: %w", err)
		}

		// A malformed cached record renders as "no customization" rather
		// than failing the whole board.
		if len(customizationBytes) > 0 {
			var record customization.Record
			if err := json.Unmarshal(customizationBytes, &record); err == nil {
				item.Customization = &record
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate board items: %w", err)
	}
	return items, nil
}

// FilterOptions returns the distinct customization values present on the
// family's cached orders, sorted, for filter dropdowns.
func (r *Repo) FilterOptions(ctx context.Context, familyID uuid.UUID) (FilterOptions, error) {
	styles, err := r.distinctCustomizationValues(ctx, familyID, "style")
	if err != nil {
		return FilterOptions{}, err
	}
	fonts, err := r.distinctCustomizationValues(ctx, familyID, "font")
	if err != nil {
		return FilterOptions{}, err
	}
	colors, err := r.distinctCustomizationValues(ctx, familyID, "color")
	if err != nil {
		return FilterOptions{}, err
	}

	return FilterOptions{Styles: styles, Fonts: fonts, Colors: colors}, nil
}

func (r *Repo) distinctCustomizationValues(ctx context.Context, familyID uuid.UUID, field string) ([]string, error) {
	query := `
		SELECT DISTINCT customization->>$2
		FROM fh_orders
		WHERE family_id = $1 AND customization->>$2 IS NOT NULL
		ORDER BY 1`

	rows, err := r.pool.Query(ctx, query, familyID, field)
	if err != nil {
		return nil, fmt.Errorf("distinct %s values: %w", field, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan %s value: %w", field, err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s values: %w", field, err)
	}
	return values, nil
}
