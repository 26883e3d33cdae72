package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/kiranshivaraju/qwatch/internal/api/middleware"
	"github.com/kiranshivaraju/qwatch/internal/apikey"
	"github.com/kiranshivaraju/qwatch/internal/store"
	"github.com/kiranshivaraju/qwatch/pkg/models"
)

// --- mock store ---

type keyStore struct {
	keys      []*models.APIKey
	createErr error
	listErr   error
	revokeErr error
	revoked   []uuid.UUID
}

func (m *keyStore) CreateAPIKey(_ context.Context, k *models.APIKey) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.keys = append(m.keys, k)
	return nil
}
func (m *keyStore) ListAPIKeys(_ context.Context, _ uuid.UUID) ([]*models.APIKey, error) {
	return m.keys, m.listErr
}
func (m *keyStore) RevokeAPIKey(_ context.Context, id uuid.UUID, _ uuid.UUID) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.revoked = append(m.revoked, id)
	return nil
}

var _ store.KeyManager = (*keyStore)(nil)

// --- helpers ---

func adminReq(t *testing.T, method, path string, body any, tenantID uuid.UUID) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	return r.WithContext(mw.WithPrincipal(r.Context(), mw.Principal{TenantID: tenantID, Scopes: []string{models.ScopeAdmin}}))
}

// --- create ---

func TestCreateKey_Success(t *testing.T) {
	s := &keyStore{}
	tenantID := uuid.New()
	h := NewCreateKeyHandler(s)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, adminReq(t, http.MethodPost, "/api/v1/admin/keys",
		map[string]any{"name": "dashboard", "scopes": []string{"read"}}, tenantID))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env struct {
		Data CreatedKey `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, strings.HasPrefix(env.Data.Key, "qw_"))
	assert.Equal(t, env.Data.Key[:apikey.PrefixLen], env.Data.KeyPrefix)
	assert.Equal(t, []string{"read"}, env.Data.Scopes)

	require.Len(t, s.keys, 1)
	assert.Equal(t, tenantID, s.keys[0].TenantID)
	assert.True(t, apikey.Matches(s.keys[0], env.Data.Key))
}

func TestCreateKey_DefaultsToReadScope(t *testing.T) {
	s := &keyStore{}
	h := NewCreateKeyHandler(s)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, adminReq(t, http.MethodPost, "/api/v1/admin/keys",
		map[string]any{"name": "viewer"}, uuid.New()))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, s.keys, 1)
	assert.Equal(t, []string{models.ScopeRead}, s.keys[0].Scopes)
}

func TestCreateKey_Validation(t *testing.T) {
	cases := map[string]any{
		"missing name":  map[string]any{"scopes": []string{"read"}},
		"blank name":    map[string]any{"name": "   "},
		"unknown scope": map[string]any{"name": "x", "scopes": []string{"ingest"}},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			s := &keyStore{}
			rec := httptest.NewRecorder()
			NewCreateKeyHandler(s).ServeHTTP(rec, adminReq(t, http.MethodPost, "/api/v1/admin/keys", body, uuid.New()))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_REQUEST", decodeErrCode(t, rec))
			assert.Empty(t, s.keys)
		})
	}
}

func TestCreateKey_InvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys", strings.NewReader("{"))
	r = r.WithContext(mw.WithPrincipal(r.Context(), mw.Principal{TenantID: uuid.New()}))
	rec := httptest.NewRecorder()
	NewCreateKeyHandler(&keyStore{}).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateKey_MissingTenant(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCreateKeyHandler(&keyStore{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys", strings.NewReader(`{"name":"x"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateKey_Duplicate(t *testing.T) {
	s := &keyStore{createErr: store.ErrDuplicateKey}
	rec := httptest.NewRecorder()
	NewCreateKeyHandler(s).ServeHTTP(rec, adminReq(t, http.MethodPost, "/api/v1/admin/keys",
		map[string]any{"name": "dup"}, uuid.New()))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_KEY", decodeErrCode(t, rec))
}

func TestCreateKey_StoreError(t *testing.T) {
	s := &keyStore{createErr: errors.New("db down")}
	rec := httptest.NewRecorder()
	NewCreateKeyHandler(s).ServeHTTP(rec, adminReq(t, http.MethodPost, "/api/v1/admin/keys",
		map[string]any{"name": "x"}, uuid.New()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// --- list ---

func TestListKeys_HidesHash(t *testing.T) {
	k, err := apikey.New(uuid.New(), "dash", apikey.Generate(), []string{models.ScopeRead})
	require.NoError(t, err)
	s := &keyStore{keys: []*models.APIKey{k}}

	rec := httptest.NewRecorder()
	NewListKeysHandler(s).ServeHTTP(rec, adminReq(t, http.MethodGet, "/api/v1/admin/keys", nil, k.TenantID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), k.KeyHash)
	assert.NotContains(t, rec.Body.String(), "key_hash")

	var env struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, k.KeyPrefix, env.Data[0]["key_prefix"])
}

func TestListKeys_EmptyIsArray(t *testing.T) {
	rec := httptest.NewRecorder()
	NewListKeysHandler(&keyStore{}).ServeHTTP(rec, adminReq(t, http.MethodGet, "/api/v1/admin/keys", nil, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestListKeys_StoreError(t *testing.T) {
	rec := httptest.NewRecorder()
	NewListKeysHandler(&keyStore{listErr: errors.New("db down")}).ServeHTTP(rec,
		adminReq(t, http.MethodGet, "/api/v1/admin/keys", nil, uuid.New()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// --- revoke ---

func TestRevokeKey_Success(t *testing.T) {
	s := &keyStore{}
	id := uuid.New()

	req := withURLParam(adminReq(t, http.MethodDelete, "/api/v1/admin/keys/"+id.String(), nil, uuid.New()), "keyID", id.String())
	rec := httptest.NewRecorder()
	NewRevokeKeyHandler(s).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uuid.UUID{id}, s.revoked)
}

func TestRevokeKey_BadID(t *testing.T) {
	req := withURLParam(adminReq(t, http.MethodDelete, "/api/v1/admin/keys/nope", nil, uuid.New()), "keyID", "nope")
	rec := httptest.NewRecorder()
	NewRevokeKeyHandler(&keyStore{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevokeKey_NotFound(t *testing.T) {
	id := uuid.New()
	req := withURLParam(adminReq(t, http.MethodDelete, "/api/v1/admin/keys/"+id.String(), nil, uuid.New()), "keyID", id.String())
	rec := httptest.NewRecorder()
	NewRevokeKeyHandler(&keyStore{revokeErr: store.ErrNotFound}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "KEY_NOT_FOUND", decodeErrCode(t, rec))
}
