package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"familyhub_backend/internal/orders/customization"
	"familyhub_backend/platform/apperr"
)

const orderNotFoundMessage = "order not found"

const orderColumns = `id, family_id, external_id, number, status, customer_name,
	total_cents, currency, raw_metadata, customization, created_at, imported_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new order cache repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a cached order by its internal ID.
func (r *Repo) GetByID(ctx context.Context, familyID, id uuid.UUID) (Order, error) {
	query := `SELECT ` + orderColumns + ` FROM fh_orders WHERE id = $1 AND family_id = $2`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id, familyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, apperr.NotFound(orderNotFoundMessage)
		}
		return Order{}, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// GetByExternalID retrieves a cached order by the external store's order ID.
func (r *Repo) GetByExternalID(ctx context.Context, familyID uuid.UUID, externalID int64) (Order, error) {
	query := `SELECT ` + orderColumns + ` FROM fh_orders WHERE family_id = $1 AND external_id = $2`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, familyID, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, apperr.NotFound(orderNotFoundMessage)
		}
		return Order{}, fmt.Errorf("get order by external id: %w", err)
	}
	return order, nil
}

// List retrieves cached orders for a family, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM fh_orders WHERE family_id = $1`, params.FamilyID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM fh_orders
		WHERE family_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, params.FamilyID, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, total, nil
}

// Upsert inserts or refreshes a snapshot keyed on (family, external id).
func (r *Repo) Upsert(ctx context.Context, params UpsertParams) (Order, bool, error) {
	rawJSON, err := json.Marshal(params.RawMetadata)
	if err != nil {
		return Order{}, false, fmt.Errorf("marshal raw metadata: %w", err)
	}

	customizationJSON, err := marshalCustomization(params.Customization)
	if err != nil {
		return Order{}, false, err
	}

	query := `
		INSERT INTO fh_orders (family_id, external_id, number, status, customer_name,
			total_cents, currency, raw_metadata, customization, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (family_id, external_id) DO UPDATE SET
			number = EXCLUDED.number,
			status = EXCLUDED.status,
			customer_name = EXCLUDED.customer_name,
			total_cents = EXCLUDED.total_cents,
			currency = EXCLUDED.currency,
			raw_metadata = EXCLUDED.raw_metadata,
			customization = EXCLUDED.customization,
			imported_at = now()
		RETURNING ` + orderColumns + `, (xmax = 0) AS inserted`

	row := r.pool.QueryRow(ctx, query,
		params.FamilyID, params.ExternalID, params.Number, params.Status, params.CustomerName,
		params.TotalCents, params.Currency, rawJSON, customizationJSON, params.CreatedAt,
	)

	var order Order
	var rawBytes, customizationBytes []byte
	var inserted bool
	if err := row.Scan(
		&order.ID, &order.FamilyID, &order.ExternalID, &order.Number, &order.Status,
		&order.CustomerName, &order.TotalCents, &order.Currency, &rawBytes, &customizationBytes,
		&order.CreatedAt, &order.ImportedAt, &inserted,
	); err != nil {
		return Order{}, false, fmt.Errorf("upsert order: %w", err)
	}

	if err := unmarshalOrderJSON(&order, rawBytes, customizationBytes); err != nil {
		return Order{}, false, err
	}
	return order, inserted, nil
}

// SetCustomization replaces the cached customization record for an order.
func (r *Repo) SetCustomization(ctx context.Context, familyID, id uuid.UUID, record *customization.Record) error {
	customizationJSON, err := marshalCustomization(record)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx,
		`UPDATE fh_orders SET customization = $3 WHERE id = $1 AND family_id = $2`,
		id, familyID, customizationJSON,
	)
	if err != nil {
		return fmt.Errorf("set order customization: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(orderNotFoundMessage)
	}
	return nil
}

func marshalCustomization(record *customization.Record) ([]byte, error) {
	if record == nil {
		return nil, nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal customization: %w", err)
	}
	return data, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var order Order
	var rawBytes, customizationBytes []byte

	if err := row.Scan(
		&order.ID, &order.FamilyID, &order.ExternalID, &order.Number, &order.Status,
		&order.CustomerName, &order.TotalCents, &order.Currency, &rawBytes, &customizationBytes,
		&order.CreatedAt, &order.ImportedAt,
	); err != nil {
		return Order{}, err
	}

	if err := unmarshalOrderJSON(&order, rawBytes, customizationBytes); err != nil {
		return Order{}, err
	}
	return order, nil
}

func unmarshalOrderJSON(order *Order, rawBytes, customizationBytes []byte) error {
	if len(rawBytes) > 0 {
		if err := json.Unmarshal(rawBytes, &order.RawMetadata); err != nil {
			return fmt.Errorf("unmarshal raw metadata: %w", err)
		}
	}

	// A malformed cached record degrades to "no customization" rather than
	// failing the read; it can always be recomputed from raw metadata.
	if len(customizationBytes) > 0 {
		var record customization.Record
		if err := json.Unmarshal(customizationBytes, &record); err == nil {
			order.Customization = &record
		}
	}
	return nil
}
