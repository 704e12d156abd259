package adapters

import (
	"context"

	"github.com/google/uuid"

	ordersrepo "familyhub_backend/internal/orders/repository"
	ordersservice "familyhub_backend/internal/orders/service"
	"familyhub_backend/internal/woo"
)

// statusClient is the slice of the store client the pusher needs.
type statusClient interface {
	PushStatus(ctx context.Context, creds woo.Credentials, externalID int64, status string) error
}

// StorePusher implements the workflow engine's StatusPusher: it resolves the
// order's external id and the family's store credentials, then writes the
// status to the store.
type StorePusher struct {
	orders ordersrepo.OrderReader
	client statusClient
	creds  ordersservice.CredentialsProvider
}

// NewStorePusher creates a store-backed status pusher.
func NewStorePusher(orders ordersrepo.OrderReader, client statusClient, creds ordersservice.CredentialsProvider) *StorePusher {
	return &StorePusher{orders: orders, client: client, creds: creds}
}

// PushStatus writes an order's new status to the external store.
func (p *StorePusher) PushStatus(ctx context.Context, familyID, orderID uuid.UUID, externalStatus string) error {
	order, err := p.orders.GetByID(ctx, familyID, orderID)
	if err != nil {
		return err
	}

	creds, err := p.creds.Credentials(ctx, familyID)
	if err != nil {
		return err
	}

	return p.client.PushStatus(ctx, creds, order.ExternalID, externalStatus)
}
