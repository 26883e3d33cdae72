package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/qwatch/internal/api/response"
	"github.com/kiranshivaraju/qwatch/internal/apikey"
	"github.com/kiranshivaraju/qwatch/internal/store"
)

// Auth provides authentication and scope-checking middleware.
type Auth struct {
	keys store.KeyLookup
}

// NewAuth creates a new Auth middleware.
func NewAuth(keys store.KeyLookup) *Auth {
	return &Auth{keys: keys}
}

// Authenticate validates the Bearer token against stored key hashes and
// attaches the matching Principal to the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		prefix, err := apikey.Prefix(rawKey)
		if err != nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key format", nil)
			return
		}

		keys, err := a.keys.FindAPIKeysByPrefix(r.Context(), prefix)
		if err != nil {
			slog.Error("api key lookup failed", "error", err, "key_prefix", prefix)
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to validate API key", nil)
			return
		}

		// Find matching key by bcrypt comparison
		var matched bool
		for _, key := range keys {
			if apikey.Matches(key, rawKey) {
				r = r.WithContext(WithPrincipal(r.Context(), Principal{
					KeyID:     key.ID,
					TenantID:  key.TenantID,
					KeyPrefix: prefix,
					Scopes:    key.Scopes,
				}))
				matched = true

				// Update last_used_at async
				go func(id uuid.UUID) {
					if err := a.keys.TouchAPIKey(context.Background(), id); err != nil {
						slog.Warn("touch api key", "error", err, "key_id", id)
					}
				}(key.ID)
				break
			}
		}

		if !matched {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireScope returns middleware that checks whether the authenticated
// API key has the specified scope.
func (a *Auth) RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := PrincipalFrom(r.Context()); ok && p.HasScope(scope) {
				next.ServeHTTP(w, r)
				return
			}
			response.Error(w, http.StatusForbidden,
				"FORBIDDEN", "Insufficient permissions", nil)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
