package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/qwatch/pkg/models"
)

const defaultTenantName = "default"

const apiKeyColumns = `id, tenant_id, name, key_hash, key_prefix, scopes,
	last_used_at, deleted_at, created_at, updated_at`

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// DefaultTenant returns the tenant seeded by the initial migration. Keys
// created through the bootstrap path belong to it.
func (s *PostgresStore) DefaultTenant(ctx context.Context) (*models.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants WHERE name = $1`, defaultTenantName)
	if err != nil {
		return nil, fmt.Errorf("query default tenant: %w", err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (*models.Tenant, error) {
		var t models.Tenant
		err := row.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
		return &t, err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan default tenant: %w", err)
	}
	return t, nil
}

// FindAPIKeysByPrefix returns live keys sharing a prefix. Callers still
// have to compare hashes; prefixes are not unique.
func (s *PostgresStore) FindAPIKeysByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		 WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("find api keys by prefix: %w", err)
	}
	return collectAPIKeys(rows)
}

func (s *PostgresStore) TouchAPIKey(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch api key %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, tenant_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES (@id, @tenant_id, @name, @key_hash, @key_prefix, @scopes, @created_at, @updated_at)`,
		pgx.NamedArgs{
			"id":         key.ID,
			"tenant_id":  key.TenantID,
			"name":       key.Name,
			"key_hash":   key.KeyHash,
			"key_prefix": key.KeyPrefix,
			"scopes":     key.Scopes,
			"created_at": key.CreatedAt,
			"updated_at": key.UpdatedAt,
		})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

// ListAPIKeys returns a tenant's live keys, newest first.
func (s *PostgresStore) ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		 WHERE tenant_id = $1 AND deleted_at IS NULL
		 ORDER BY created_at DESC, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return collectAPIKeys(rows)
}

// RevokeAPIKey soft-deletes a key. Revoking an unknown or already revoked
// key, or one owned by another tenant, is ErrNotFound.
func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id, tenantID uuid.UUID) error {
	var revoked uuid.UUID
	err := s.pool.QueryRow(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		 RETURNING id`, id, tenantID).Scan(&revoked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("revoke api key %s: %w", id, err)
	}
	return nil
}

func collectAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	keys, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.APIKey, error) {
		var k models.APIKey
		err := row.Scan(&k.ID, &k.TenantID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt)
		return &k, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan api keys: %w", err)
	}
	if keys == nil {
		keys = []*models.APIKey{}
	}
	return keys, nil
}

var _ Store = (*PostgresStore)(nil)
