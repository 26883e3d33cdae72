// Package apikey issues and verifies the bearer keys that gate the API.
package apikey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiranshivaraju/qwatch/internal/store"
	"github.com/kiranshivaraju/qwatch/pkg/models"
)

// PrefixLen is the number of leading characters stored in clear for lookup.
const PrefixLen = 8

const rawKeyPrefix = "qw_"

var ErrInvalidKey = errors.New("invalid api key")

// Generate returns a new random raw key.
func Generate() string {
	return rawKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Prefix returns the lookup prefix of raw, or ErrInvalidKey if raw is too short.
func Prefix(raw string) (string, error) {
	if len(raw) < PrefixLen {
		return "", ErrInvalidKey
	}
	return raw[:PrefixLen], nil
}

// New builds an APIKey record for raw. Only the bcrypt hash of raw is kept.
func New(tenantID uuid.UUID, name, raw string, scopes []string) (*models.APIKey, error) {
	prefix, err := Prefix(raw)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash api key: %w", err)
	}
	if scopes == nil {
		scopes = []string{}
	}

	now := time.Now().UTC()
	return &models.APIKey{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: prefix,
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Matches reports whether raw is the key behind k.
func Matches(k *models.APIKey, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(k.KeyHash), []byte(raw)) == nil
}

// Bootstrap makes sure raw exists as an admin key of the default tenant.
// It is a no-op if the key is already registered.
func Bootstrap(ctx context.Context, s store.Store, raw string) error {
	prefix, err := Prefix(raw)
	if err != nil {
		return fmt.Errorf("bootstrap key: %w", err)
	}

	existing, err := s.FindAPIKeysByPrefix(ctx, prefix)
	if err != nil {
		return fmt.Errorf("bootstrap key lookup: %w", err)
	}
	for _, k := range existing {
		if Matches(k, raw) {
			return nil
		}
	}

	tenant, err := s.DefaultTenant(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap key tenant: %w", err)
	}

	key, err := New(tenant.ID, "bootstrap", raw, []string{models.ScopeRead, models.ScopeAdmin})
	if err != nil {
		return err
	}
	if err := s.CreateAPIKey(ctx, key); err != nil {
		return fmt.Errorf("bootstrap key create: %w", err)
	}

	slog.Info("bootstrap admin key created", "key_prefix", key.KeyPrefix)
	return nil
}
