package auth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSetMembership(t *testing.T) {
	set := NewTokenSet("token1", "token2")

	assert.True(t, set.IsValid("token1"))
	assert.True(t, set.IsValid("token2"))
	assert.False(t, set.IsValid("token3"))
	assert.False(t, set.IsValid(""))
	assert.Equal(t, 2, set.Len())
}

func TestTokenSetAddRemove(t *testing.T) {
	set := NewTokenSet()

	set.Add("secret")
	assert.True(t, set.IsValid("secret"))

	set.Remove("secret")
	assert.False(t, set.IsValid("secret"))
	assert.Zero(t, set.Len())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tokens:\n  - alpha\n  - beta\n"), 0o600))

	set, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, set.IsValid("alpha"))
	assert.True(t, set.IsValid("beta"))
	assert.False(t, set.IsValid("gamma"))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	_, err := ExtractBearerToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Basic dXNlcg==")
	_, err = ExtractBearerToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Bearer secret")
	token, err := ExtractBearerToken(r)
	require.NoError(t, err)
	assert.Equal(t, "secret", token)
}

func TestMiddleware(t *testing.T) {
	set := NewTokenSet("secret")
	handler := set.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid or missing bearer token"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
