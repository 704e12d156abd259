// Package adapters connects the modules without letting them depend on each
// other directly: the import pipeline reaches the workflow engine, the engine
// pushes statuses through the store client, and store credentials come from
// configuration.
package adapters

import (
	"context"

	"github.com/google/uuid"

	"familyhub_backend/internal/woo"
	"familyhub_backend/platform/apperr"
	"familyhub_backend/platform/config"
)

// ConfigCredentials resolves store credentials from application config. The
// deployment connects one store, owned by one family; other families have no
// store connection.
type ConfigCredentials struct {
	cfg config.StoreConfig
}

// NewConfigCredentials creates a config-backed credentials provider.
func NewConfigCredentials(cfg config.StoreConfig) *ConfigCredentials {
	return &ConfigCredentials{cfg: cfg}
}

// Credentials returns the family's store connection, or a configuration
// error when none is set up.
func (p *ConfigCredentials) Credentials(_ context.Context, familyID uuid.UUID) (woo.Credentials, error) {
	if !p.cfg.IsStoreEnabled() {
		return woo.Credentials{}, apperr.Configuration("store connection not configured")
	}

	if tenant := p.cfg.GetStoreTenantID(); tenant != "" && tenant != familyID.String() {
		return woo.Credentials{}, apperr.Configuration("no store connection for this family")
	}

	return woo.Credentials{
		BaseURL:        p.cfg.GetStoreBaseURL(),
		ConsumerKey:    p.cfg.GetStoreConsumerKey(),
		ConsumerSecret: p.cfg.GetStoreConsumerSecret(),
	}, nil
}
