// Package store persists tenants and API keys. Jobs never touch Postgres.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/qwatch/pkg/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("api key already exists")
)

// KeyLookup resolves presented API keys during authentication.
type KeyLookup interface {
	FindAPIKeysByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	TouchAPIKey(ctx context.Context, id uuid.UUID) error
}

// KeyManager backs the admin key endpoints. Every call is scoped to a tenant.
type KeyManager interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id, tenantID uuid.UUID) error
}

// Store is everything the server needs from Postgres.
type Store interface {
	KeyLookup
	KeyManager

	Ping(ctx context.Context) error
	DefaultTenant(ctx context.Context) (*models.Tenant, error)
}
