// ABOUTME: Tests for JWT generation, verification, and the HTTP auth middleware
// ABOUTME: Covers round-trips, wrong secrets, expiry, and bearer extraction failures

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, "client-1", time.Hour)
	require.NoError(t, err)

	v, err := NewJWTVerifier(secret)
	require.NoError(t, err)

	subject, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "client-1", subject)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("secret-a"), "client-1", time.Hour)
	require.NoError(t, err)

	v, err := NewJWTVerifier([]byte("secret-b"))
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken(secret, "client-1", -time.Minute)
	require.NoError(t, err)

	v, err := NewJWTVerifier(secret)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_Garbage(t *testing.T) {
	v, err := NewJWTVerifier([]byte("test-secret"))
	require.NoError(t, err)

	_, err = v.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTVerifier_EmptySecret(t *testing.T) {
	_, err := NewJWTVerifier(nil)
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = GenerateToken(nil, "x", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestHTTPMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	v, err := NewJWTVerifier(secret)
	require.NoError(t, err)

	var gotSubject string
	handler := HTTPMiddleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateToken(secret, "client-1", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "client-1", gotSubject)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing authorization header")
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid token")
	})
}
