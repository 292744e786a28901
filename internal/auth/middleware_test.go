package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungnd/chunkstore/internal/config"
)

func protected(m *Middleware) http.Handler {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthenticate_APIKey(t *testing.T) {
	m := NewMiddleware(config.AuthConfig{APIKey: "secret", APIKeyHeader: "X-API-Key"})
	h := protected(m)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_WrongAPIKey(t *testing.T) {
	m := NewMiddleware(config.AuthConfig{APIKey: "secret", APIKeyHeader: "X-API-Key"})
	h := protected(m)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	m := NewMiddleware(config.AuthConfig{APIKey: "secret", APIKeyHeader: "X-API-Key"})
	h := protected(m)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ValidJWT(t *testing.T) {
	secret := "jwt-secret"
	m := NewMiddleware(config.AuthConfig{JWTSecret: secret})
	h := protected(m)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Sub: "ingest-pipeline",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_ExpiredJWT(t *testing.T) {
	secret := "jwt-secret"
	m := NewMiddleware(config.AuthConfig{JWTSecret: secret})
	h := protected(m)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Sub: "ingest-pipeline",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_WrongSigningKey(t *testing.T) {
	m := NewMiddleware(config.AuthConfig{JWTSecret: "right"})
	h := protected(m)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Sub: "x"})
	signed, err := token.SignedString([]byte("wrong"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
